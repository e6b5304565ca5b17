// Package rbac holds the authorization matrix for the admin area.
package rbac

type Role string
type Action string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
)

// Can reports whether a role may perform an action. Only the admin
// role may mutate content or trigger uploads; reads are open to any
// authenticated role (the public viewer bypasses rbac entirely at the
// handler level).
func Can(role Role, action Action) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleUser:
		return action == ActionRead
	default:
		return false
	}
}

func Normalize(role string) Role {
	switch Role(role) {
	case RoleUser, RoleAdmin:
		return Role(role)
	default:
		return RoleUser
	}
}
