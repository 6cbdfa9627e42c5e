package dto

import "github.com/aarondl/null/v8"

type CreateUserDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=admin technician attendant"`
	IsActive *bool  `json:"isActive"`
}

type UpdateUserDTO struct {
	Email    null.String `json:"email" validate:"omitempty,email"`
	Name     null.String `json:"name" validate:"omitempty,min=3"`
	Password null.String `json:"password" validate:"omitempty,min=8"`
	Role     null.String `json:"role" validate:"omitempty,oneof=admin technician attendant"`
	IsActive null.Bool   `json:"isActive"`
}
