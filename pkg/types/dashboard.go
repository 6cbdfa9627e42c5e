package types

type DashboardKPIs struct {
	OpenOrders         int64   `json:"openOrders"`
	AwaitingApproval   int64   `json:"awaitingApproval"`
	ReadyForPickup     int64   `json:"readyForPickup"`
	DeliveredThisMonth int64   `json:"deliveredThisMonth"`
	LowStockProducts   int64   `json:"lowStockProducts"`
	MonthIncome        float64 `json:"monthIncome"`
	MonthExpense       float64 `json:"monthExpense"`
}

type DashboardCountByGroup struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type DashboardActivityItem struct {
	OrderID   uint64 `json:"orderId"`
	Protocol  string `json:"protocol"`
	Action    string `json:"action"`
	Comments  string `json:"comments,omitempty"`
	UserName  string `json:"userName,omitempty"`
	CreatedAt string `json:"createdAt"`
}
