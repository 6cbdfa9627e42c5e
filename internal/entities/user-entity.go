package entities

import (
	"time"

	"ordem-servico/pkg/types"
)

type User struct {
	ID                 uint64     `json:"id"`
	Email              string     `json:"email"`
	Password           string     `json:"-"`
	Name               string     `json:"name"`
	Role               string     `json:"role"`
	IsActive           bool       `json:"isActive"`
	MustChangePassword bool       `json:"mustChangePassword"`
	LastLogin          *time.Time `json:"lastLogin,omitempty"`
	RefreshTokenHash   *string    `json:"-"`
	types.BaseEntity
}
