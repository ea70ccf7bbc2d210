package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      Role
		expectErr bool
	}{
		{name: "employee", input: "employee", want: RoleEmployee},
		{name: "manager", input: "manager", want: RoleManager},
		{name: "hr upper case", input: " HR ", want: RoleHR},
		{name: "admin is not a role here", input: "admin", expectErr: true},
		{name: "empty", input: "", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := ParseRole(tt.input)
			if tt.expectErr {
				assert.ErrorIs(t, err, ErrInvalidRole)
				assert.Equal(t, Role(""), role)
				assert.False(t, role.Valid())
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, role)
			assert.True(t, role.Valid())
		})
	}
}

func TestNewPrincipal(t *testing.T) {
	tests := []struct {
		name          string
		user          LoginUser
		userID        string
		wantID        string
		wantFirstName string
		wantLastName  string
		wantRole      Role
	}{
		{
			name:          "two part name with token user id",
			user:          LoginUser{Email: "jane@corp.io", Name: "Jane Smith", Role: "hr"},
			userID:        "64f0c1",
			wantID:        "64f0c1",
			wantFirstName: "Jane",
			wantLastName:  "Smith",
			wantRole:      RoleHR,
		},
		{
			name:          "single name falls back to email id",
			user:          LoginUser{Email: "cher@corp.io", Name: "Cher", Role: "manager"},
			wantID:        "cher@corp.io",
			wantFirstName: "Cher",
			wantRole:      RoleManager,
		},
		{
			name:          "third token is dropped",
			user:          LoginUser{Email: "a@corp.io", Name: "Ana Maria Lopez", Role: "employee"},
			wantID:        "a@corp.io",
			wantFirstName: "Ana",
			wantLastName:  "Maria",
			wantRole:      RoleEmployee,
		},
		{
			name:     "unknown role becomes zero role",
			user:     LoginUser{Email: "x@corp.io", Name: "", Role: "root"},
			wantID:   "x@corp.io",
			wantRole: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPrincipal(tt.user, tt.userID)

			assert.Equal(t, tt.wantID, p.ID)
			assert.Equal(t, tt.user.Email, p.Email)
			assert.Equal(t, tt.wantFirstName, p.FirstName)
			assert.Equal(t, tt.wantLastName, p.LastName)
			assert.Equal(t, tt.wantRole, p.Role)
		})
	}
}

func TestSession_Complete(t *testing.T) {
	var nilSession *Session

	assert.False(t, nilSession.Complete())
	assert.False(t, (&Session{Token: "tok"}).Complete())
	assert.False(t, (&Session{User: &Principal{Email: "a@b.c"}}).Complete())
	assert.True(t, (&Session{Token: "tok", User: &Principal{Email: "a@b.c"}}).Complete())
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()

	assert.False(t, (&Session{}).Expired(now))
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Minute)}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: now.Add(-time.Minute)}).Expired(now))
}

func TestEmployeeRecord_FlexFields(t *testing.T) {
	raw := `{"_id":"u1","email":"a@corp.io","name":"A B","role":"employee","isActive":true,
		"phone":966501234567,"manager_id":"m7","emergency_contact":null}`

	var rec EmployeeRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))

	assert.Equal(t, FlexString("966501234567"), rec.Phone)
	assert.Equal(t, FlexString("m7"), rec.ManagerID)
	assert.Equal(t, FlexString(""), rec.EmergencyContact)
	assert.Equal(t, RoleEmployee, rec.Role)
}

func TestValidateField(t *testing.T) {
	for _, field := range EditableFields {
		assert.NoError(t, ValidateField(field))
	}

	assert.ErrorIs(t, ValidateField("role"), ErrUnknownField)
	assert.ErrorIs(t, ValidateField("isActive"), ErrUnknownField)
}

func TestNewUser_Validate(t *testing.T) {
	valid := NewUser{Name: "A", Email: "a@corp.io", Password: "secret", Role: RoleEmployee}
	assert.NoError(t, valid.Validate())

	missing := valid
	missing.Password = ""
	assert.ErrorIs(t, missing.Validate(), ErrMissingFields)

	badRole := valid
	badRole.Role = "admin"
	assert.ErrorIs(t, badRole.Validate(), ErrInvalidRole)
}
