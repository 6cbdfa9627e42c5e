package types

import "time"

type BaseEntity struct {
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type SoftDelete struct {
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`
}

func (s SoftDelete) IsDeleted() bool { return s.DeletedAt != nil }
