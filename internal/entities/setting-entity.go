package entities

import "ordem-servico/pkg/types"

const (
	SettingTypeString  = "string"
	SettingTypeNumber  = "number"
	SettingTypeBoolean = "boolean"
	SettingTypeJSON    = "json"
)

type Setting struct {
	ID          uint64  `json:"id"`
	Key         string  `json:"key"`
	Value       string  `json:"value"`
	Type        string  `json:"type"`
	Description *string `json:"description,omitempty"`
	IsPublic    bool    `json:"isPublic"`
	types.BaseEntity
}
