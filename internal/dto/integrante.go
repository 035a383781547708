package dto

// ── integrantes ──

// CreateIntegranteRequest new worker.
type CreateIntegranteRequest struct {
	Nome     string  `json:"nome"      binding:"required,min=2,max=100,nome"`
	CPF      string  `json:"cpf"       binding:"required,cpf"`
	EquipeID *string `json:"equipe_id" binding:"omitempty,uuid"`
}

// UpdateIntegranteRequest partial update.
type UpdateIntegranteRequest struct {
	Nome *string `json:"nome" binding:"omitempty,min=2,max=100,nome"`
	CPF  *string `json:"cpf"  binding:"omitempty,cpf"`
}

// IntegranteListRequest filters.
type IntegranteListRequest struct {
	PaginationRequest
	EquipeID  string `form:"equipe_id"  binding:"omitempty,uuid"`
	SemEquipe bool   `form:"sem_equipe"`
	Search    string `form:"search"     binding:"omitempty,max=100"`
}

// IntegranteResponse worker.
type IntegranteResponse struct {
	ID         string `json:"id"`
	Nome       string `json:"nome"`
	CPF        string `json:"cpf"`
	EquipeID   string `json:"equipe_id,omitempty"`
	EquipeNome string `json:"equipe_nome,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// IntegranteDetailResponse worker with recent activities.
type IntegranteDetailResponse struct {
	IntegranteResponse
	AtividadesRecentes []AtividadeResponse `json:"atividades_recentes"`
}
