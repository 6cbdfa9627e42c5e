package dto

import (
	"ordem-servico/internal/entities"

	"github.com/aarondl/null/v8"
)

type CreateOrderEquipmentDTO struct {
	IsMain              bool            `json:"isMain"`
	Type                string          `json:"type" validate:"required"`
	Brand               string          `json:"brand" validate:"required"`
	Model               string          `json:"model" validate:"required"`
	SerialNumber        *string         `json:"serialNumber"`
	ReportedDefect      string          `json:"reportedDefect" validate:"required"`
	Accessories         *string         `json:"accessories"`
	Condition           *string         `json:"condition"`
	FunctionalChecklist map[string]bool `json:"functionalChecklist"`
}

type CreateOrderDTO struct {
	ClientID       uint64                    `json:"clientId" validate:"required"`
	TechnicianID   *uint64                   `json:"technicianId"`
	Priority       string                    `json:"priority" validate:"omitempty,oneof=baixa normal alta urgente"`
	EstimatedValue *float64                  `json:"estimatedValue" validate:"omitempty,min=0"`
	ReportedDefect string                    `json:"reportedDefect"`
	Equipments     []CreateOrderEquipmentDTO `json:"equipments" validate:"required,min=1,dive"`
}

type UpdateOrderDTO struct {
	Diagnosis       null.String  `json:"diagnosis"`
	TechnicalReport null.String  `json:"technicalReport"`
	EstimatedValue  null.Float64 `json:"estimatedValue" validate:"omitempty,min=0"`
	FinalValue      null.Float64 `json:"finalValue" validate:"omitempty,min=0"`
	Priority        null.String  `json:"priority" validate:"omitempty,oneof=baixa normal alta urgente"`
	TechnicianID    null.Uint64  `json:"technicianId"`
}

type ChangeStatusDTO struct {
	Status   string `json:"status" validate:"required,order_status"`
	Comments string `json:"comments" validate:"required"`
}

type AddPartDTO struct {
	ProductID uint64   `json:"productId" validate:"required"`
	Quantity  int      `json:"quantity" validate:"required,min=1"`
	UnitPrice *float64 `json:"unitPrice" validate:"omitempty,min=0"`
	UnitCost  *float64 `json:"unitCost" validate:"omitempty,min=0"`
}

type AddCommentDTO struct {
	Comments string `json:"comments" validate:"required"`
}

type ShareOrderDTO struct {
	Type         string `json:"type" validate:"required,oneof=entry exit update"`
	Origin       string `json:"origin"`
	Message      string `json:"message"`
	CustomNumber string `json:"customNumber" validate:"omitempty,contact_number"`
}

type ShareResultDTO struct {
	Success bool   `json:"success"`
	Number  string `json:"number,omitempty"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// PublicOrderDTO — то, что видит клиент по ссылке; никаких персональных данных.
type PublicOrderDTO struct {
	ID          uint64                    `json:"id"`
	Protocol    string                    `json:"protocol"`
	Status      string                    `json:"status"`
	StatusLabel string                    `json:"statusLabel"`
	UpdatedAt   string                    `json:"updatedAt"`
	Equipments  []PublicOrderEquipmentDTO `json:"equipments"`
	Total       *float64                  `json:"total"`
	Diagnosis   *string                   `json:"diagnosis"`
}

type PublicOrderEquipmentDTO struct {
	Type           string `json:"type"`
	Brand          string `json:"brand"`
	Model          string `json:"model"`
	ReportedDefect string `json:"reportedDefect"`
}

type MonitorOrderDTO struct {
	ID          uint64 `json:"id"`
	Protocol    string `json:"protocol"`
	Status      string `json:"status"`
	StatusLabel string `json:"statusLabel"`
	Equipment   string `json:"equipment"`
	EntryDate   string `json:"entryDate"`
	Priority    string `json:"priority"`
}

// OrderStatusChangedDTO уходит на экраны мастерской через websocket.
type OrderStatusChangedDTO struct {
	OrderID     uint64 `json:"orderId"`
	Protocol    string `json:"protocol"`
	From        string `json:"from"`
	To          string `json:"to"`
	StatusLabel string `json:"statusLabel"`
	Equipment   string `json:"equipment"`
	ChangedAt   string `json:"changedAt"`
}

func NewPublicOrderDTO(o *entities.Order, label string) PublicOrderDTO {
	out := PublicOrderDTO{
		ID:          o.ID,
		Protocol:    o.Protocol,
		Status:      o.Status.String(),
		StatusLabel: label,
		UpdatedAt:   o.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Equipments:  make([]PublicOrderEquipmentDTO, 0, len(o.Equipments)),
		Total:       o.FinalValue,
		Diagnosis:   o.Diagnosis,
	}
	for _, eq := range o.Equipments {
		out.Equipments = append(out.Equipments, PublicOrderEquipmentDTO{
			Type: eq.Type, Brand: eq.Brand, Model: eq.Model, ReportedDefect: eq.ReportedDefect,
		})
	}
	return out
}
