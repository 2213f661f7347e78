package user_test

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/campuscopilot/core"
	"github.com/trezcool/campuscopilot/core/user"
	testutil "github.com/trezcool/campuscopilot/tests"
)

func failedTags(t *testing.T, err error) map[string]string {
	t.Helper()
	var vErrs validator.ValidationErrors
	require.True(t, errors.As(err, &vErrs), "want validator.ValidationErrors, got %v", err)
	tags := make(map[string]string, len(vErrs))
	for _, fe := range vErrs {
		tags[fe.Field()] = fe.Tag()
	}
	return tags
}

func TestNewUser_Validate(t *testing.T) {
	validate, _ := testutil.NewValidator()

	t.Run("cleans and defaults", func(t *testing.T) {
		nu := testutil.NewUserForm("  Jane Roe ", " Jane@Example.COM ", "s3cr3t!x")
		nu.Role = ""
		require.NoError(t, nu.Validate(validate))
		assert.Equal(t, "Jane Roe", nu.Name)
		assert.Equal(t, "jane@example.com", nu.Email)
		assert.Equal(t, user.RoleStudent, nu.Role)

		profile := nu.Profile()
		assert.Empty(t, profile.ID)
		assert.Equal(t, "Tech University", profile.Institution)
		assert.Equal(t, "Mathematics", profile.Department)
	})

	tests := []struct {
		name     string
		modify   func(nu *user.NewUser)
		wantTags map[string]string
	}{
		{
			name:     "password too short",
			modify:   func(nu *user.NewUser) { nu.Password, nu.PasswordConfirm = "abc12", "abc12" },
			wantTags: map[string]string{"password": "pwdminlen"},
		},
		{
			name:     "password with whitespace",
			modify:   func(nu *user.NewUser) { nu.Password, nu.PasswordConfirm = "abc 12345", "abc 12345" },
			wantTags: map[string]string{"password": "pwdnospace"},
		},
		{
			name:     "password similar to name",
			modify:   func(nu *user.NewUser) { nu.Password, nu.PasswordConfirm = "JaneRoe1", "JaneRoe1" },
			wantTags: map[string]string{"password": "pwdtoosim"},
		},
		{
			name:     "passwords differ",
			modify:   func(nu *user.NewUser) { nu.PasswordConfirm = "other-pwd" },
			wantTags: map[string]string{"passwordConfirm": "eqfield"},
		},
		{
			name:     "student without department",
			modify:   func(nu *user.NewUser) { nu.Department = " " },
			wantTags: map[string]string{"department": "department"},
		},
		{
			name:     "admin without department",
			modify:   func(nu *user.NewUser) { nu.Department, nu.Role = "", user.RoleAdmin },
			wantTags: nil,
		},
		{
			name:     "bad role",
			modify:   func(nu *user.NewUser) { nu.Role = "dean" },
			wantTags: map[string]string{"role": "userrole"},
		},
		{
			name: "bad email year and student id",
			modify: func(nu *user.NewUser) {
				nu.Email, nu.Year, nu.StudentID = "nope", 11, "CS 01"
			},
			wantTags: map[string]string{"email": "email", "year": "max", "studentId": "code"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			nu := testutil.NewUserForm("Jane Roe", "jane@example.com", "s3cr3t!x")
			tc.modify(&nu)
			err := nu.Validate(validate)
			if tc.wantTags == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tc.wantTags, failedTags(t, err))
		})
	}
}

func TestPasswordPolicyMessages(t *testing.T) {
	validate, translator := testutil.NewValidator()
	nu := testutil.NewUserForm("Jane Roe", "jane@example.com", "abc")
	verr, ok := core.TranslateFieldErrors(nu.Validate(validate), translator).(*core.ValidationError)
	require.True(t, ok)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, core.FieldError{Field: "password", Error: "password must contain at least 6 characters"}, verr.Fields[0])
}

func TestCredentials_Validate(t *testing.T) {
	validate, _ := testutil.NewValidator()

	creds := user.Credentials{Email: " Admin@College.edu ", Password: "admin123", Role: "ADMIN"}
	require.NoError(t, creds.Validate(validate))
	assert.Equal(t, "admin@college.edu", creds.Email)
	assert.Equal(t, user.RoleAdmin, creds.Role)

	creds = user.Credentials{Email: "a@b.c", Password: "x", Role: "dean"}
	assert.Equal(t, map[string]string{"role": "userrole"}, failedTags(t, creds.Validate(validate)))
}

func TestUpdateUser(t *testing.T) {
	validate, _ := testutil.NewValidator()

	empty := "  "
	uu := user.UpdateUser{Name: &empty}
	err := uu.Validate(validate)
	var verr *core.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "name", verr.Fields[0].Field)

	name, year := " Johnny Doe ", 4
	uu = user.UpdateUser{Name: &name, Year: &year}
	require.NoError(t, uu.Validate(validate))
	demo := user.DemoAccounts()[1].User
	updated := uu.Apply(demo)
	assert.Equal(t, "Johnny Doe", updated.Name)
	assert.Equal(t, 4, updated.Year)
	assert.Equal(t, demo.Email, updated.Email)
	assert.Equal(t, demo.StudentID, updated.StudentID)
}

func TestAccount_Password(t *testing.T) {
	var acc user.Account
	require.NoError(t, acc.SetPassword("student123"))
	assert.NotEqual(t, "student123", string(acc.PasswordHash))
	assert.NoError(t, acc.CheckPassword("student123"))
	assert.Error(t, acc.CheckPassword("student124"))
}

func TestDemoCredentials(t *testing.T) {
	creds := user.DemoCredentials()
	assert.Equal(t, user.Credentials{Email: "admin@college.edu", Password: "admin123", Role: user.RoleAdmin}, creds[user.RoleAdmin])
	assert.Equal(t, user.Credentials{Email: "student@college.edu", Password: "student123", Role: user.RoleStudent}, creds[user.RoleStudent])
}
