package user

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/campuscopilot/core"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

var AllRoles = []string{RoleAdmin, RoleStudent}

type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Institution string `json:"college"`
	Year        int    `json:"year"`
	Role        string `json:"role"`
	Department  string `json:"department,omitempty"`
	StudentID   string `json:"studentId,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) IsStudent() bool {
	return u.Role == RoleStudent
}

// Identity is the result of a successful registration.
type Identity struct {
	UID  string `json:"uid"`
	Role string `json:"role"`
}

// Account is a User with its password hash, as kept by identity stores.
type Account struct {
	User
	PasswordHash []byte `json:"-"`
}

func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
	College         string `json:"college" validate:"required"`
	Year            int    `json:"year" validate:"min=0,max=10"`
	Role            string `json:"role" validate:"userrole"`
	Department      string `json:"department"`
	StudentID       string `json:"studentId" validate:"omitempty,code"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.College = core.CleanString(nu.College)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	nu.Department = core.CleanString(nu.Department)
	nu.StudentID = core.CleanString(nu.StudentID)
	if nu.Role == "" {
		nu.Role = RoleStudent
	}
	return validate.Struct(nu)
}

// Profile returns the User described by the form, without ID.
func (nu NewUser) Profile() User {
	return User{
		Name:        nu.Name,
		Email:       nu.Email,
		Institution: nu.College,
		Year:        nu.Year,
		Role:        nu.Role,
		Department:  nu.Department,
		StudentID:   nu.StudentID,
	}
}

// Credentials are the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,userrole"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	c.Role = core.CleanString(c.Role, true /* lower */)
	return validate.Struct(c)
}

// UpdateUser defines what information may be provided to modify the signed-in User.
// Email and role are not editable.
type UpdateUser struct {
	Name       *string `json:"name"`
	College    *string `json:"college"`
	Year       *int    `json:"year" validate:"omitempty,min=0,max=10"`
	Department *string `json:"department"`
	StudentID  *string `json:"studentId" validate:"omitempty,code"`
	Avatar     *string `json:"avatar"`
}

func (uu *UpdateUser) Validate(validate *validator.Validate) error {
	for _, fld := range []*string{uu.Name, uu.College, uu.Department, uu.StudentID, uu.Avatar} {
		if fld != nil {
			*fld = core.CleanString(*fld)
		}
	}
	var flds []core.FieldError
	if uu.Name != nil && *uu.Name == "" {
		flds = append(flds, core.FieldError{Field: "name", Error: "this field is required"})
	}
	if uu.College != nil && *uu.College == "" {
		flds = append(flds, core.FieldError{Field: "college", Error: "this field is required"})
	}
	if len(flds) > 0 {
		return core.NewValidationError(errors.New("invalid profile"), flds...)
	}
	return validate.Struct(uu)
}

// Apply returns usr with the provided fields changed.
func (uu UpdateUser) Apply(usr User) User {
	if uu.Name != nil {
		usr.Name = *uu.Name
	}
	if uu.College != nil {
		usr.Institution = *uu.College
	}
	if uu.Year != nil {
		usr.Year = *uu.Year
	}
	if uu.Department != nil {
		usr.Department = *uu.Department
	}
	if uu.StudentID != nil {
		usr.StudentID = *uu.StudentID
	}
	if uu.Avatar != nil {
		usr.Avatar = *uu.Avatar
	}
	return usr
}
