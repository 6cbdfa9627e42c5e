package constants

// Сами статусы заявок и граф переходов живут в internal/statusflow.

const (
	PriorityLow    = "baixa"
	PriorityNormal = "normal"
	PriorityHigh   = "alta"
	PriorityUrgent = "urgente"
)

var Priorities = []string{PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent}

// Тип записи в истории заявки.
const (
	HistoryStatusChange = "STATUS_CHANGE"
	HistoryComment      = "COMMENT"
	HistorySystem       = "SYSTEM"
	HistoryPhoto        = "PHOTO"
	HistoryIntegration  = "INTEGRATION"
)

const (
	PhotoEntry  = "ENTRADA"
	PhotoDefect = "DEFEITO"
	PhotoRepair = "REPARO"
	PhotoExit   = "SAIDA"
	PhotoOther  = "OUTROS"
)

// Тип сообщения клиенту при «поделиться» заявкой.
const (
	ShareEntry  = "entry"
	ShareExit   = "exit"
	ShareUpdate = "update"
)
