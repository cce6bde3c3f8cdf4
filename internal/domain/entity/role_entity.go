package entity

// Role is the authorization tier carried by a user and by the tokens issued to it.
// There is no hierarchy: admin does not imply user and vice versa.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

func (r Role) String() string { return string(r) }
