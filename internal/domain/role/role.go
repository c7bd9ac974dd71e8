// Package role holds the closed set of user roles and the role boost table.
package role

import (
	"encoding/json"
	"fmt"
)

// Role is a user permission level. The zero value is Employee.
type Role uint8

// Known roles.
const (
	Employee Role = iota
	Manager
	Executive
	Admin
)

// All lists every role in ascending privilege order.
var All = []Role{Employee, Manager, Executive, Admin}

// Parse converts a role identifier into a Role.
func Parse(s string) (Role, error) {
	switch s {
	case "employee":
		return Employee, nil
	case "manager":
		return Manager, nil
	case "executive":
		return Executive, nil
	case "admin":
		return Admin, nil
	default:
		return Employee, fmt.Errorf("unknown role %q", s)
	}
}

// String returns the wire identifier of the role.
func (r Role) String() string {
	switch r {
	case Employee:
		return "employee"
	case Manager:
		return "manager"
	case Executive:
		return "executive"
	case Admin:
		return "admin"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// IsAdmin reports whether r may perform administrative actions.
func (r Role) IsAdmin() bool { return r == Admin }

// AtLeastManager reports whether r is a manager or above.
func (r Role) AtLeastManager() bool {
	switch r {
	case Admin, Executive, Manager:
		return true
	case Employee:
		return false
	default:
		return false
	}
}

// MarshalJSON encodes the role as its identifier.
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a role identifier.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("role must be a string: %w", err)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// MarshalYAML encodes the role as its identifier.
func (r Role) MarshalYAML() (any, error) { return r.String(), nil }

// UnmarshalYAML decodes a role identifier.
func (r *Role) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Boost is the ranking weight attached to a role.
type Boost struct {
	Priority        float64 `json:"priority"`
	DepartmentBoost float64 `json:"department_boost"`
}

// BoostsFor returns the boost configuration for r.
// Roles outside the known set get the employee entry.
func BoostsFor(r Role) Boost {
	switch r {
	case Admin:
		return Boost{Priority: 1.5, DepartmentBoost: 1.2}
	case Executive:
		return Boost{Priority: 2.0, DepartmentBoost: 1.5}
	case Manager:
		return Boost{Priority: 1.3, DepartmentBoost: 1.3}
	case Employee:
		return employeeBoost
	default:
		return employeeBoost
	}
}

var employeeBoost = Boost{Priority: 1.0, DepartmentBoost: 1.1}
