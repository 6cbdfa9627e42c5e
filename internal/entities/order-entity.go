package entities

import (
	"strings"
	"time"

	"ordem-servico/internal/statusflow"
	"ordem-servico/pkg/types"
)

type Order struct {
	ID              uint64            `json:"id"`
	Protocol        string            `json:"protocol"`
	Status          statusflow.Status `json:"status"`
	Priority        string            `json:"priority"`
	EstimatedValue  *float64          `json:"estimatedValue,omitempty"`
	FinalValue      *float64          `json:"finalValue,omitempty"`
	ReportedDefect  string            `json:"reportedDefect"`
	Diagnosis       *string           `json:"diagnosis,omitempty"`
	TechnicalReport *string           `json:"technicalReport,omitempty"`
	ClientID        uint64            `json:"clientId"`
	TechnicianID    *uint64           `json:"technicianId,omitempty"`
	EntryDate       time.Time         `json:"entryDate"`
	ExitDate        *time.Time        `json:"exitDate,omitempty"`

	// Поля из JOIN, не хранятся в order_services
	ClientName     string `json:"clientName,omitempty"`
	TechnicianName string `json:"technicianName,omitempty"`

	Equipments []OrderEquipment `json:"equipments"`
	Parts      []OrderPart      `json:"parts,omitempty"`
	History    []OrderHistory   `json:"history,omitempty"`
	Photos     []OrderPhoto     `json:"photos,omitempty"`

	types.BaseEntity
	types.SoftDelete
}

// MainEquipment — аппарат с is_main, иначе первый из списка.
func (o *Order) MainEquipment() *OrderEquipment {
	for i := range o.Equipments {
		if o.Equipments[i].IsMain {
			return &o.Equipments[i]
		}
	}
	if len(o.Equipments) > 0 {
		return &o.Equipments[0]
	}
	return nil
}

func (o *Order) EquipmentSummary() string {
	if eq := o.MainEquipment(); eq != nil {
		return eq.Description()
	}
	return "equipamento"
}

func (o *Order) PartsTotal() float64 {
	var total float64
	for _, p := range o.Parts {
		total += p.UnitPrice * float64(p.Quantity)
	}
	return total
}

type OrderEquipment struct {
	ID                  uint64          `json:"id"`
	OrderID             uint64          `json:"orderId"`
	IsMain              bool            `json:"isMain"`
	Type                string          `json:"type"`
	Brand               string          `json:"brand"`
	Model               string          `json:"model"`
	SerialNumber        *string         `json:"serialNumber,omitempty"`
	ReportedDefect      string          `json:"reportedDefect"`
	Accessories         *string         `json:"accessories,omitempty"`
	Condition           *string         `json:"condition,omitempty"`
	FunctionalChecklist map[string]bool `json:"functionalChecklist,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
}

// Description: "Celular Samsung Galaxy A52"
func (e OrderEquipment) Description() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{e.Type, e.Brand, e.Model} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "equipamento"
	}
	return strings.Join(parts, " ")
}

type OrderPart struct {
	ID          uint64    `json:"id"`
	OrderID     uint64    `json:"orderId"`
	ProductID   uint64    `json:"productId"`
	ProductName string    `json:"productName,omitempty"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	UnitCost    float64   `json:"unitCost"`
	CreatedAt   time.Time `json:"createdAt"`
}

type OrderPhoto struct {
	ID          uint64    `json:"id"`
	OrderID     uint64    `json:"orderId"`
	EquipmentID *uint64   `json:"equipmentId,omitempty"`
	URL         string    `json:"url"`
	Category    string    `json:"category"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
