package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Activity statuses. Only EXECUCAO moves floor progress.
const (
	StatusExecucao     = "EXECUCAO"
	StatusPreparacao1  = "PREPARACAO_1"
	StatusPreparacao2  = "PREPARACAO_2"
	StatusPreparacao3  = "PREPARACAO_3"
	StatusManutencao   = "MANUTENCAO"
	StatusSemAtividade = "SEM_ATIVIDADE"
)

// IsPreparacao reports whether status is one of the preparation phases.
func IsPreparacao(status string) bool {
	return status == StatusPreparacao1 || status == StatusPreparacao2 || status == StatusPreparacao3
}

// Atividade table atividades: one daily work-log entry on a floor.
type Atividade struct {
	ID               string              `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Status           string              `gorm:"type:varchar(20);not null"                      json:"status"`
	ObraID           string              `gorm:"type:uuid;not null;index"                       json:"obra_id"`
	PavimentoID      string              `gorm:"type:uuid;not null;index"                       json:"pavimento_id"`
	UsuarioID        string              `gorm:"type:uuid;not null"                             json:"usuario_id"`
	DataExecucao     time.Time           `gorm:"type:date;not null"                             json:"data_execucao"`
	AreaExecutadaM2  decimal.NullDecimal `gorm:"column:area_executada_m2;type:numeric(14,4)"    json:"area_executada_m2"`
	AreaPreparadaM2  decimal.NullDecimal `gorm:"column:area_preparada_m2;type:numeric(14,4)"    json:"area_preparada_m2"`
	AditivoM3        decimal.NullDecimal `gorm:"column:aditivo_m3;type:numeric(14,4)"           json:"aditivo_m3"`
	AditivoL         decimal.NullDecimal `gorm:"column:aditivo_l;type:numeric(14,4)"            json:"aditivo_l"`
	InicioExpediente string              `gorm:"type:varchar(5);not null;default:''"            json:"inicio_expediente"`
	InicioAlmoco     string              `gorm:"type:varchar(5);not null;default:''"            json:"inicio_almoco"`
	FimAlmoco        string              `gorm:"type:varchar(5);not null;default:''"            json:"fim_almoco"`
	FimExpediente    string              `gorm:"type:varchar(5);not null;default:''"            json:"fim_expediente"`
	ObsExecucao      string              `gorm:"type:varchar(500);not null;default:''"          json:"obs_execucao"`
	ObsPonto         string              `gorm:"type:varchar(500);not null;default:''"          json:"obs_ponto"`
	ObsQtdBetoneira  string              `gorm:"type:varchar(500);not null;default:''"          json:"obs_qtd_betoneira"`
	ObsHOI           string              `gorm:"column:obs_hoi;type:varchar(500);not null;default:''" json:"obs_hoi"`
	SaldoAcumuladoM2 decimal.Decimal     `gorm:"column:saldo_acumulado_m2;type:numeric(14,4);not null;default:0" json:"saldo_acumulado_m2"`
	BaseModel

	Obra        *Obra                 `gorm:"foreignKey:ObraID"      json:"obra,omitempty"`
	Pavimento   *Pavimento            `gorm:"foreignKey:PavimentoID" json:"pavimento,omitempty"`
	Usuario     *Usuario              `gorm:"foreignKey:UsuarioID"   json:"usuario,omitempty"`
	Integrantes []AtividadeIntegrante `gorm:"foreignKey:AtividadeID" json:"integrantes,omitempty"`
}

func (Atividade) TableName() string { return "atividades" }

// AtividadeIntegrante join row carrying each worker's share of the executed area.
type AtividadeIntegrante struct {
	AtividadeID  string          `gorm:"type:uuid;primaryKey"                             json:"atividade_id"`
	IntegranteID string          `gorm:"type:uuid;primaryKey"                             json:"integrante_id"`
	ProducaoM2   decimal.Decimal `gorm:"column:producao_m2;type:numeric(14,4);not null;default:0" json:"producao_m2"`

	Integrante *Integrante `gorm:"foreignKey:IntegranteID" json:"integrante,omitempty"`
}

func (AtividadeIntegrante) TableName() string { return "atividade_integrantes" }
