package contextkeys

type contextKey string

const (
	UserIDKey             contextKey = "UserID"
	UserRoleKey           contextKey = "UserRole"
	UserPermissionsMapKey contextKey = "userPermissionsMap"
	ClientIPKey           contextKey = "ClientIP"
)
