package dto

import "github.com/shopspring/decimal"

// DashboardMetrics headline numbers of the home screen.
type DashboardMetrics struct {
	ObrasAtivas              int64           `json:"obras_ativas"`
	TotalM2Executado         decimal.Decimal `json:"total_m2_executado"`
	PercentualMedioExecutado decimal.Decimal `json:"percentual_medio_executado"`
	TotalAditivoM3           decimal.Decimal `json:"total_aditivo_m3"`
	TotalAditivoL            decimal.Decimal `json:"total_aditivo_l"`
	TotalAtividades          int64           `json:"total_atividades"`
}
