package dto

type UpsertSettingDTO struct {
	Value       string  `json:"value"`
	Type        string  `json:"type" validate:"omitempty,oneof=string number boolean json"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"isPublic"`
}
