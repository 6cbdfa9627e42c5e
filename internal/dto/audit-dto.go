package dto

type CreateAuditLogDTO struct {
	UserID     *uint64
	Action     string
	Resource   *string
	ResourceID *string
	Details    map[string]interface{}
	IPAddress  *string
}
