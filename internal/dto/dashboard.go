package dto

import "ordem-servico/pkg/types"

type DashboardStatsDTO struct {
	KPIs          *types.DashboardKPIs          `json:"kpis"`
	CountByStatus []types.DashboardCountByGroup `json:"countByStatus"`
	LastActivity  []types.DashboardActivityItem `json:"lastActivity"`
	GeneratedAt   string                        `json:"generatedAt"`
}
