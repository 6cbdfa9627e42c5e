package entities

import (
	"time"

	"ordem-servico/pkg/types"
)

type Product struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	SKU         *string  `json:"sku,omitempty"`
	Barcode     *string  `json:"barcode,omitempty"`
	Description *string  `json:"description,omitempty"`
	Quantity    int      `json:"quantity"`
	MinQuantity int      `json:"minQuantity"`
	PriceCost   float64  `json:"priceCost"`
	PriceSell   float64  `json:"priceSell"`
	types.BaseEntity
}

func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.MinQuantity
}

type StockMovement struct {
	ID            uint64    `json:"id"`
	ProductID     uint64    `json:"productId"`
	OrderID       *uint64   `json:"orderId,omitempty"`
	OrderPartID   *uint64   `json:"orderPartId,omitempty"`
	Type          string    `json:"type"`
	Quantity      int       `json:"quantity"`
	BalanceBefore int       `json:"balanceBefore"`
	BalanceAfter  int       `json:"balanceAfter"`
	Reason        *string   `json:"reason,omitempty"`
	UserID        *uint64   `json:"userId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
