package auth

// Role names known to the application.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User is the authenticated identity attached to a session.
type User struct {
	ID           int64
	Username     string
	Role         string
	PasswordHash string
}

// IsAdmin reports whether the user may perform privileged operations.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
