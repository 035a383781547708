package dto

// ── auth ──

// LoginRequest credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=50"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse issued session.
type TokenResponse struct {
	AccessToken string          `json:"access_token"`
	ExpiresIn   int             `json:"expires_in"` // seconds
	User        UsuarioResponse `json:"user"`
}

// ── usuarios ──

// UsuarioResponse user without secrets.
type UsuarioResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Nome      string `json:"nome"`
	Sobrenome string `json:"sobrenome"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateUsuarioRequest new account (MASTER only).
type CreateUsuarioRequest struct {
	Username  string `json:"username"  binding:"required,min=3,max=50,alphanum"`
	Password  string `json:"password"  binding:"required,min=8,max=72"`
	Nome      string `json:"nome"      binding:"required,min=2,max=100,nome"`
	Sobrenome string `json:"sobrenome" binding:"omitempty,max=100,nome"`
	Email     string `json:"email"     binding:"required,email"`
	Role      string `json:"role"      binding:"required,oneof=MASTER OPERADOR"`
}

// UpdateUsuarioStatusRequest activate / deactivate an account.
type UpdateUsuarioStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE INACTIVE"`
}

// UsuarioListRequest filters.
type UsuarioListRequest struct {
	PaginationRequest
	Role   string `form:"role"   binding:"omitempty,oneof=MASTER OPERADOR"`
	Status string `form:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
}
