package entity

// Role names carried in JWT claims. Identity itself is owned by an external
// authentication service; the engine only records the opaque user id.
const (
	RoleCitizen = "citizen"
	RoleStaff   = "staff"
	RoleAdmin   = "admin"
)
