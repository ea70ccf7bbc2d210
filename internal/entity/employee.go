package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

var (
	ErrUnknownField  = errors.New("unknown employee field")
	ErrMissingFields = errors.New("please fill in all required fields")
)

type OnboardingStatus string

const (
	StatusPending    OnboardingStatus = "pending"
	StatusInProgress OnboardingStatus = "in-progress"
	StatusCompleted  OnboardingStatus = "completed"
)

// FlexString decodes either a JSON string or a JSON number. The collaborator stores
// phone numbers and manager ids as integers for some records and strings for others.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("flex string: %w", err)
	}
	*f = FlexString(n.String())

	return nil
}

type EmployeeRecord struct {
	ID               string           `json:"_id"`
	EmployeeID       FlexString       `json:"ID,omitempty"`
	Email            string           `json:"email"`
	Name             string           `json:"name"`
	Role             Role             `json:"role"`
	IsActive         bool             `json:"isActive"`
	Status           OnboardingStatus `json:"status,omitempty"`
	Department       string           `json:"department,omitempty"`
	Position         string           `json:"position,omitempty"`
	Phone            FlexString       `json:"phone,omitempty"`
	Address          string           `json:"address,omitempty"`
	ManagerID        FlexString       `json:"manager_id,omitempty"`
	StartDate        string           `json:"start_date,omitempty"`
	EmploymentType   string           `json:"employment_type,omitempty"`
	EmergencyContact FlexString       `json:"emergency_contact,omitempty"`
	CreatedAt        string           `json:"created_at,omitempty"`
	UpdatedAt        string           `json:"updated_at,omitempty"`
}

type UserList struct {
	Users []EmployeeRecord `json:"users"`
	Total int              `json:"total"`
}

// NewUser is the create-user form. Name, email, password and role are required.
type NewUser struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       Role   `json:"role"`
	Position   string `json:"position,omitempty"`
	Department string `json:"department,omitempty"`
}

func (u NewUser) Validate() error {
	if u.Name == "" || u.Email == "" || u.Password == "" || u.Role == "" {
		return ErrMissingFields
	}

	if !u.Role.Valid() {
		return ErrInvalidRole
	}

	return nil
}

type CreateUserResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// EditableFields are the record fields the directory lets HR edit in place.
var EditableFields = []string{
	"name",
	"email",
	"phone",
	"department",
	"address",
	"position",
	"manager_id",
	"employment_type",
	"start_date",
	"emergency_contact",
}

func ValidateField(field string) error {
	if !slices.Contains(EditableFields, field) {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	return nil
}

// FieldPatch holds only the changed fields of one record.
type FieldPatch map[string]string
