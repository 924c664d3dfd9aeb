package auth

import "fmt"

// Role identifies which directory a token subject is resolved against.
// It is a closed set; anything else is rejected at the edge.
type Role int

const (
	RoleAdmin Role = iota
	RoleDoctor
	RolePatient
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleDoctor:
		return "doctor"
	case RolePatient:
		return "patient"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole converts a path or query value into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "admin":
		return RoleAdmin, nil
	case "doctor":
		return RoleDoctor, nil
	case "patient":
		return RolePatient, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}
