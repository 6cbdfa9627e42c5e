package websocket

import "time"

const MessageOrderStatusChanged = "order.status_changed"

// Envelope — тип сообщения подсказывает фронтенду, что делать с payload.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}
