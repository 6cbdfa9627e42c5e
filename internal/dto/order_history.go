package dto

type CreateHistoryDTO struct {
	OrderID        uint64
	PreviousStatus *string
	NewStatus      *string
	ActionType     string
	Comments       *string
	WaMsgSent      bool
	WaMsgContent   *string
	UserID         *uint64
}
