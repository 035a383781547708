package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Endereco table enderecos.
type Endereco struct {
	ID          string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CEP         string `gorm:"column:cep;type:varchar(9);not null"            json:"cep"`
	Logradouro  string `gorm:"type:varchar(255);not null"                     json:"logradouro"`
	Numero      string `gorm:"type:varchar(20);not null;default:''"           json:"numero"`
	Complemento string `gorm:"type:varchar(100);not null;default:''"          json:"complemento"`
	Bairro      string `gorm:"type:varchar(100);not null"                     json:"bairro"`
	Cidade      string `gorm:"type:varchar(100);not null"                     json:"cidade"`
	Estado      string `gorm:"type:char(2);not null"                          json:"estado"`
	BaseModel
}

func (Endereco) TableName() string { return "enderecos" }

// Contato a site contact person, stored inline as JSONB on the obra.
type Contato struct {
	Nome     string `json:"nome"`
	Funcao   string `json:"funcao"`
	Email    string `json:"email,omitempty"`
	Telefone string `json:"telefone,omitempty"`
}

// Obra table obras. Totals are denormalized and refreshed by the totals job.
type Obra struct {
	ID             string                       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Nome           string                       `gorm:"type:varchar(150);not null"                     json:"nome"`
	CEI            string                       `gorm:"column:cei;type:varchar(17);not null;uniqueIndex" json:"cei"`
	Construtora    string                       `gorm:"type:varchar(150);not null;default:''"          json:"construtora"`
	EnderecoID     string                       `gorm:"type:uuid;not null"                             json:"endereco_id"`
	ValorM2        decimal.Decimal              `gorm:"column:valor_m2;type:numeric(14,2);not null"    json:"valor_m2"`
	DataInicio     time.Time                    `gorm:"type:date;not null"                             json:"data_inicio"`
	DataFim        time.Time                    `gorm:"type:date;not null"                             json:"data_fim"`
	TotalGeral     decimal.Decimal              `gorm:"type:numeric(14,4);not null;default:0"          json:"total_geral"`
	TotalExecutado decimal.Decimal              `gorm:"type:numeric(14,4);not null;default:0"          json:"total_executado"`
	TotalPendente  decimal.Decimal              `gorm:"type:numeric(14,4);not null;default:0"          json:"total_pendente"`
	Contatos       datatypes.JSONSlice[Contato] `gorm:"type:jsonb;not null;default:'[]'"               json:"contatos"`
	CriadoPorID    *string                      `gorm:"type:uuid"                                      json:"criado_por_id,omitempty"`
	BaseModel

	Endereco *Endereco `gorm:"foreignKey:EnderecoID" json:"endereco,omitempty"`
	Torres   []Torre   `gorm:"foreignKey:ObraID"     json:"torres,omitempty"`
}

func (Obra) TableName() string { return "obras" }

// Torre table torres.
type Torre struct {
	ID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Nome   string `gorm:"type:varchar(100);not null"                     json:"nome"`
	ObraID string `gorm:"type:uuid;not null;index"                       json:"obra_id"`
	BaseModel

	Pavimentos []Pavimento `gorm:"foreignKey:TorreID" json:"pavimentos,omitempty"`
}

func (Torre) TableName() string { return "torres" }
