package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pavimento table pavimentos. The execution columns stay NULL until the first
// EXECUCAO activity and are overwritten by each later one.
type Pavimento struct {
	ID                  string              `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Identificador       string              `gorm:"type:varchar(100);not null"                     json:"identificador"`
	AreaM2              decimal.Decimal     `gorm:"column:area_m2;type:numeric(14,4);not null"     json:"area_m2"`
	ArgamassaM3         decimal.Decimal     `gorm:"column:argamassa_m3;type:numeric(14,4);not null" json:"argamassa_m3"`
	AreaExecutadaM2     decimal.NullDecimal `gorm:"column:area_executada_m2;type:numeric(14,4)"    json:"area_executada_m2"`
	PercentualExecutado decimal.NullDecimal `gorm:"type:numeric(9,4)"                              json:"percentual_executado"`
	EspessuraCM         decimal.NullDecimal `gorm:"column:espessura_cm;type:numeric(14,4)"         json:"espessura_cm"`
	DataExecucao        *time.Time          `json:"data_execucao,omitempty"`
	Obs                 string              `gorm:"type:text;not null;default:''"                  json:"obs"`
	TorreID             string              `gorm:"type:uuid;not null;index"                       json:"torre_id"`
	BaseModel

	Torre *Torre `gorm:"foreignKey:TorreID" json:"torre,omitempty"`
}

func (Pavimento) TableName() string { return "pavimentos" }
