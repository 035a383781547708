package dto

import "github.com/shopspring/decimal"

// ── atividades ──

// CreateAtividadeRequest daily work-log entry. Which numeric fields are
// allowed depends on Status.
type CreateAtividadeRequest struct {
	Status           string           `json:"status"            binding:"required,oneof=EXECUCAO PREPARACAO_1 PREPARACAO_2 PREPARACAO_3 MANUTENCAO SEM_ATIVIDADE"`
	ObraID           string           `json:"obra_id"           binding:"required,uuid"`
	PavimentoID      string           `json:"pavimento_id"      binding:"required,uuid"`
	DataExecucao     string           `json:"data_execucao"     binding:"required,datetime=2006-01-02"`
	AreaExecutadaM2  *decimal.Decimal `json:"area_executada_m2"`
	AreaPreparadaM2  *decimal.Decimal `json:"area_preparada_m2"`
	AditivoM3        *decimal.Decimal `json:"aditivo_m3"`
	AditivoL         *decimal.Decimal `json:"aditivo_l"`
	InicioExpediente string           `json:"inicio_expediente" binding:"omitempty,hhmm"`
	InicioAlmoco     string           `json:"inicio_almoco"     binding:"omitempty,hhmm"`
	FimAlmoco        string           `json:"fim_almoco"        binding:"omitempty,hhmm"`
	FimExpediente    string           `json:"fim_expediente"    binding:"omitempty,hhmm"`
	ObsExecucao      string           `json:"obs_execucao"      binding:"omitempty,max=500"`
	ObsPonto         string           `json:"obs_ponto"         binding:"omitempty,max=500"`
	ObsQtdBetoneira  string           `json:"obs_qtd_betoneira" binding:"omitempty,max=500"`
	ObsHOI           string           `json:"obs_hoi"           binding:"omitempty,max=500"`
	IntegranteIDs    []string         `json:"integrante_ids"    binding:"required,min=1,dive,uuid"`
}

// UpdateAtividadeRequest editable fields. Status, obra, pavimento and the
// executed area are fixed once recorded.
type UpdateAtividadeRequest struct {
	DataExecucao     *string          `json:"data_execucao"     binding:"omitempty,datetime=2006-01-02"`
	AditivoM3        *decimal.Decimal `json:"aditivo_m3"`
	AditivoL         *decimal.Decimal `json:"aditivo_l"`
	InicioExpediente *string          `json:"inicio_expediente" binding:"omitempty,hhmm"`
	InicioAlmoco     *string          `json:"inicio_almoco"     binding:"omitempty,hhmm"`
	FimAlmoco        *string          `json:"fim_almoco"        binding:"omitempty,hhmm"`
	FimExpediente    *string          `json:"fim_expediente"    binding:"omitempty,hhmm"`
	ObsExecucao      *string          `json:"obs_execucao"      binding:"omitempty,max=500"`
	ObsPonto         *string          `json:"obs_ponto"         binding:"omitempty,max=500"`
	ObsQtdBetoneira  *string          `json:"obs_qtd_betoneira" binding:"omitempty,max=500"`
	ObsHOI           *string          `json:"obs_hoi"           binding:"omitempty,max=500"`
	IntegranteIDs    []string         `json:"integrante_ids"    binding:"omitempty,min=1,dive,uuid"`
}

// AtividadeListRequest filters.
type AtividadeListRequest struct {
	PaginationRequest
	ObraID       string `form:"obra_id"       binding:"omitempty,uuid"`
	PavimentoID  string `form:"pavimento_id"  binding:"omitempty,uuid"`
	IntegranteID string `form:"integrante_id" binding:"omitempty,uuid"`
	Status       string `form:"status"        binding:"omitempty,oneof=EXECUCAO PREPARACAO_1 PREPARACAO_2 PREPARACAO_3 MANUTENCAO SEM_ATIVIDADE"`
	De           string `form:"de"            binding:"omitempty,datetime=2006-01-02"`
	Ate          string `form:"ate"           binding:"omitempty,datetime=2006-01-02"`
}

// AtividadeIntegranteResponse worker on an activity with their share.
type AtividadeIntegranteResponse struct {
	ID         string          `json:"id"`
	Nome       string          `json:"nome"`
	ProducaoM2 decimal.Decimal `json:"producao_m2"`
}

// AtividadeResponse activity with resolved names.
type AtividadeResponse struct {
	ID                  string                        `json:"id"`
	Status              string                        `json:"status"`
	ObraID              string                        `json:"obra_id"`
	ObraNome            string                        `json:"obra_nome,omitempty"`
	PavimentoID         string                        `json:"pavimento_id"`
	PavimentoNome       string                        `json:"pavimento_identificador,omitempty"`
	TorreNome           string                        `json:"torre_nome,omitempty"`
	UsuarioID           string                        `json:"usuario_id"`
	UsuarioNome         string                        `json:"usuario_nome,omitempty"`
	DataExecucao        string                        `json:"data_execucao"`
	AreaExecutadaM2     decimal.NullDecimal           `json:"area_executada_m2"`
	AreaPreparadaM2     decimal.NullDecimal           `json:"area_preparada_m2"`
	AditivoM3           decimal.NullDecimal           `json:"aditivo_m3"`
	AditivoL            decimal.NullDecimal           `json:"aditivo_l"`
	InicioExpediente    string                        `json:"inicio_expediente,omitempty"`
	InicioAlmoco        string                        `json:"inicio_almoco,omitempty"`
	FimAlmoco           string                        `json:"fim_almoco,omitempty"`
	FimExpediente       string                        `json:"fim_expediente,omitempty"`
	ObsExecucao         string                        `json:"obs_execucao,omitempty"`
	ObsPonto            string                        `json:"obs_ponto,omitempty"`
	ObsQtdBetoneira     string                        `json:"obs_qtd_betoneira,omitempty"`
	ObsHOI              string                        `json:"obs_hoi,omitempty"`
	SaldoAcumuladoM2    decimal.Decimal               `json:"saldo_acumulado_m2"`
	PercentualExecutado decimal.NullDecimal           `json:"percentual_executado"`
	Integrantes         []AtividadeIntegranteResponse `json:"integrantes"`
	CreatedAt           string                        `json:"created_at"`
}
