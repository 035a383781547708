package model

// Equipe table equipes. Names are unique within an obra.
type Equipe struct {
	ID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Nome   string `gorm:"type:varchar(100);not null;uniqueIndex:uq_equipes_obra_nome" json:"nome"`
	ObraID string `gorm:"type:uuid;not null;uniqueIndex:uq_equipes_obra_nome"         json:"obra_id"`
	BaseModel

	Obra        *Obra        `gorm:"foreignKey:ObraID"   json:"obra,omitempty"`
	Integrantes []Integrante `gorm:"foreignKey:EquipeID" json:"integrantes,omitempty"`
}

func (Equipe) TableName() string { return "equipes" }

// Integrante table integrantes. EquipeID is optional: a worker may exist
// without a crew and be picked directly on an activity.
type Integrante struct {
	ID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Nome     string  `gorm:"type:varchar(100);not null"                     json:"nome"`
	CPF      string  `gorm:"column:cpf;type:char(11);not null;uniqueIndex"  json:"cpf"`
	EquipeID *string `gorm:"type:uuid;index"                                json:"equipe_id,omitempty"`
	BaseModel

	Equipe *Equipe `gorm:"foreignKey:EquipeID" json:"equipe,omitempty"`
}

func (Integrante) TableName() string { return "integrantes" }
