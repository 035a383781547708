package dto

import "github.com/shopspring/decimal"

// ── obras ──

// EnderecoRequest address of a new obra.
type EnderecoRequest struct {
	CEP         string `json:"cep"         binding:"required,min=8,max=9"`
	Logradouro  string `json:"logradouro"  binding:"required,max=255"`
	Numero      string `json:"numero"      binding:"omitempty,max=20"`
	Complemento string `json:"complemento" binding:"omitempty,max=100"`
	Bairro      string `json:"bairro"      binding:"required,max=100"`
	Cidade      string `json:"cidade"      binding:"required,max=100"`
	Estado      string `json:"estado"      binding:"required,len=2,alpha"`
}

// ContatoRequest site contact.
type ContatoRequest struct {
	Nome     string `json:"nome"     binding:"required,max=100"`
	Funcao   string `json:"funcao"   binding:"required,max=100"`
	Email    string `json:"email"    binding:"omitempty,email"`
	Telefone string `json:"telefone" binding:"omitempty,max=20"`
}

// PavimentoRequest floor declared at obra creation.
type PavimentoRequest struct {
	Identificador string          `json:"identificador" binding:"required,max=100"`
	AreaM2        decimal.Decimal `json:"area_m2"`
	ArgamassaM3   decimal.Decimal `json:"argamassa_m3"`
	Obs           string          `json:"obs"           binding:"omitempty,max=500"`
}

// TorreRequest tower with its floors.
type TorreRequest struct {
	Nome       string             `json:"nome"       binding:"required,max=100"`
	Pavimentos []PavimentoRequest `json:"pavimentos" binding:"required,min=1,dive"`
}

// CreateObraRequest nested creation payload.
type CreateObraRequest struct {
	Nome        string           `json:"nome"        binding:"required,min=2,max=150"`
	CEI         string           `json:"cei"         binding:"required,cei"`
	Construtora string           `json:"construtora" binding:"omitempty,max=150"`
	ValorM2     decimal.Decimal  `json:"valor_m2"`
	DataInicio  string           `json:"data_inicio" binding:"required,datetime=2006-01-02"`
	DataFim     string           `json:"data_fim"    binding:"required,datetime=2006-01-02"`
	Endereco    EnderecoRequest  `json:"endereco"    binding:"required"`
	Contatos    []ContatoRequest `json:"contatos"    binding:"omitempty,dive"`
	Torres      []TorreRequest   `json:"torres"      binding:"required,min=1,dive"`
}

// ObraListRequest filters.
type ObraListRequest struct {
	PaginationRequest
	Search string `form:"search" binding:"omitempty,max=100"`
}

// EnderecoResponse address.
type EnderecoResponse struct {
	CEP         string `json:"cep"`
	Logradouro  string `json:"logradouro"`
	Numero      string `json:"numero"`
	Complemento string `json:"complemento"`
	Bairro      string `json:"bairro"`
	Cidade      string `json:"cidade"`
	Estado      string `json:"estado"`
}

// PavimentoResponse floor with progress.
type PavimentoResponse struct {
	ID                  string              `json:"id"`
	Identificador       string              `json:"identificador"`
	AreaM2              decimal.Decimal     `json:"area_m2"`
	ArgamassaM3         decimal.Decimal     `json:"argamassa_m3"`
	AreaExecutadaM2     decimal.NullDecimal `json:"area_executada_m2"`
	PercentualExecutado decimal.NullDecimal `json:"percentual_executado"`
	EspessuraCM         decimal.NullDecimal `json:"espessura_cm"`
	DataExecucao        string              `json:"data_execucao,omitempty"`
	Obs                 string              `json:"obs,omitempty"`
	TorreID             string              `json:"torre_id"`
	TorreNome           string              `json:"torre_nome,omitempty"`
}

// TorreResponse tower with floors.
type TorreResponse struct {
	ID         string              `json:"id"`
	Nome       string              `json:"nome"`
	Pavimentos []PavimentoResponse `json:"pavimentos"`
}

// ContatoResponse site contact.
type ContatoResponse struct {
	Nome     string `json:"nome"`
	Funcao   string `json:"funcao"`
	Email    string `json:"email,omitempty"`
	Telefone string `json:"telefone,omitempty"`
}

// ObraResponse obra summary used by lists.
type ObraResponse struct {
	ID             string          `json:"id"`
	Nome           string          `json:"nome"`
	CEI            string          `json:"cei"`
	Construtora    string          `json:"construtora"`
	ValorM2        decimal.Decimal `json:"valor_m2"`
	DataInicio     string          `json:"data_inicio"`
	DataFim        string          `json:"data_fim"`
	TotalGeral     decimal.Decimal `json:"total_geral"`
	TotalExecutado decimal.Decimal `json:"total_executado"`
	TotalPendente  decimal.Decimal `json:"total_pendente"`
	CreatedAt      string          `json:"created_at"`
}

// ObraDetailResponse obra with address, contacts and structure.
type ObraDetailResponse struct {
	ObraResponse
	Endereco *EnderecoResponse `json:"endereco,omitempty"`
	Contatos []ContatoResponse `json:"contatos"`
	Torres   []TorreResponse   `json:"torres"`
}

// ObraOption id/name pair for select inputs.
type ObraOption struct {
	ID   string `json:"id"`
	Nome string `json:"nome"`
	CEI  string `json:"cei"`
}

// ObraTotalsResponse result of a totals recomputation.
type ObraTotalsResponse struct {
	ObraID         string          `json:"obra_id"`
	TotalGeral     decimal.Decimal `json:"total_geral"`
	TotalExecutado decimal.Decimal `json:"total_executado"`
	TotalPendente  decimal.Decimal `json:"total_pendente"`
}
