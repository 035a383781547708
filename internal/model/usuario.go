package model

// Roles.
const (
	RoleMaster   = "MASTER"
	RoleOperador = "OPERADOR"
)

// Account statuses.
const (
	UsuarioAtivo   = "ACTIVE"
	UsuarioInativo = "INACTIVE"
)

// Usuario table usuarios.
type Usuario struct {
	ID           string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Username     string `gorm:"type:varchar(50);not null;uniqueIndex"          json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Nome         string `gorm:"type:varchar(100);not null"                     json:"nome"`
	Sobrenome    string `gorm:"type:varchar(100);not null;default:''"          json:"sobrenome"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	Role         string `gorm:"type:varchar(20);not null;default:'OPERADOR'"   json:"role"`
	Status       string `gorm:"type:varchar(20);not null;default:'ACTIVE'"     json:"status"`
	BaseModel
}

func (Usuario) TableName() string { return "usuarios" }

// IsActive reports whether the account may log in.
func (u *Usuario) IsActive() bool { return u.Status == UsuarioAtivo }
