// Package role defines the two participants of a lesson.
package role

import "fmt"

// Role identifies who is driving a client replica.
type Role string

const (
	None    Role = ""
	Student Role = "student"
	Coach   Role = "coach"
)

// Parse converts a string to a Role. The empty string maps to None.
func Parse(s string) (Role, error) {
	switch Role(s) {
	case None, Student, Coach:
		return Role(s), nil
	default:
		return None, fmt.Errorf("unknown role %q", s)
	}
}

// Valid reports whether r is a known role other than None.
func (r Role) Valid() bool {
	return r == Student || r == Coach
}

func (r Role) String() string {
	if r == None {
		return "none"
	}
	return string(r)
}
