package dto

// ── equipes ──

// CreateEquipeRequest new crew within an obra.
type CreateEquipeRequest struct {
	Nome   string `json:"nome"    binding:"required,min=2,max=100,nome"`
	ObraID string `json:"obra_id" binding:"required,uuid"`
}

// UpdateEquipeRequest rename.
type UpdateEquipeRequest struct {
	Nome *string `json:"nome" binding:"omitempty,min=2,max=100,nome"`
}

// EquipeListRequest filters.
type EquipeListRequest struct {
	PaginationRequest
	ObraID string `form:"obra_id" binding:"omitempty,uuid"`
}

// EquipeIntegranteRequest add or remove a worker.
type EquipeIntegranteRequest struct {
	IntegranteID string `json:"integrante_id" binding:"required,uuid"`
}

// MoveIntegranteRequest moves a worker to another crew.
type MoveIntegranteRequest struct {
	IntegranteID    string `json:"integrante_id"     binding:"required,uuid"`
	DestinoEquipeID string `json:"destino_equipe_id" binding:"required,uuid"`
}

// EquipeResponse crew with members.
type EquipeResponse struct {
	ID             string               `json:"id"`
	Nome           string               `json:"nome"`
	ObraID         string               `json:"obra_id"`
	ObraNome       string               `json:"obra_nome,omitempty"`
	QtdIntegrantes int                  `json:"qtd_integrantes"`
	Integrantes    []IntegranteResponse `json:"integrantes"`
	CreatedAt      string               `json:"created_at"`
}
