package entities

import "time"

type AuditLog struct {
	ID         uint64                 `json:"id"`
	UserID     *uint64                `json:"userId,omitempty"`
	UserName   string                 `json:"userName,omitempty"`
	Action     string                 `json:"action"`
	Resource   *string                `json:"resource,omitempty"`
	ResourceID *string                `json:"resourceId,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	IPAddress  *string                `json:"ipAddress,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
}
