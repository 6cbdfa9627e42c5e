package dto

import "github.com/aarondl/null/v8"

type CreateProductDTO struct {
	Name        string  `json:"name" validate:"required"`
	SKU         *string `json:"sku"`
	Barcode     *string `json:"barcode"`
	Description *string `json:"description"`
	Quantity    int     `json:"quantity" validate:"min=0"`
	MinQuantity int     `json:"minQuantity" validate:"min=0"`
	PriceCost   float64 `json:"priceCost" validate:"min=0"`
	PriceSell   float64 `json:"priceSell" validate:"min=0"`
}

// Количество меняется только движениями склада.
type UpdateProductDTO struct {
	Name        null.String  `json:"name" validate:"omitempty,min=1"`
	SKU         null.String  `json:"sku"`
	Barcode     null.String  `json:"barcode"`
	Description null.String  `json:"description"`
	MinQuantity null.Int     `json:"minQuantity"`
	PriceCost   null.Float64 `json:"priceCost" validate:"omitempty,min=0"`
	PriceSell   null.Float64 `json:"priceSell" validate:"omitempty,min=0"`
}

type StockMovementDTO struct {
	ProductID   uint64
	OrderID     *uint64
	OrderPartID *uint64
	Type        string
	Quantity    int
	Reason      *string
	UserID      *uint64
}
