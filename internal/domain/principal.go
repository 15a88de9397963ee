package domain

import "fmt"

// Principal identifies the caller of an engine operation. It is passed
// explicitly into every call.
type Principal struct {
	UserID   int64
	UserName string
	Role     Role
}

func (p Principal) Validate() error {
	if p.UserID <= 0 {
		return fmt.Errorf("principal user id must be > 0")
	}
	role, err := ParseRole(string(p.Role))
	if err != nil {
		return err
	}
	if role != p.Role {
		return fmt.Errorf("role %q must be given as %q", p.Role, role)
	}
	return nil
}

func (p Principal) String() string {
	if p.UserName != "" {
		return fmt.Sprintf("%s(%d,%s)", p.UserName, p.UserID, p.Role)
	}
	return fmt.Sprintf("user %d (%s)", p.UserID, p.Role)
}
