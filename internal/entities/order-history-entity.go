package entities

import "time"

type OrderHistory struct {
	ID             uint64    `json:"id"`
	OrderID        uint64    `json:"orderId"`
	PreviousStatus *string   `json:"previousStatus,omitempty"`
	NewStatus      *string   `json:"newStatus,omitempty"`
	ActionType     string    `json:"actionType"`
	Comments       *string   `json:"comments,omitempty"`
	WaMsgSent      bool      `json:"waMsgSent"`
	WaMsgContent   *string   `json:"waMsgContent,omitempty"`
	UserID         *uint64   `json:"userId,omitempty"`
	UserName       string    `json:"userName,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}
