package domain

import "strings"

// NormalizeEmail returns the stored form of an email address. Emails are
// compared case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// User is a registered account.
type User struct {
	ID             int64   `json:"id"`
	Email          string  `json:"email"`
	HashedPassword string  `json:"-"` // Never expose password hash in JSON
	FullName       *string `json:"full_name"`
	IsActive       bool    `json:"is_active"`
	IsSuperuser    bool    `json:"is_superuser"`
}

// UserCreate carries everything needed to register a user. The plaintext
// password is hashed by the service layer and never reaches storage.
type UserCreate struct {
	Email       string  `json:"email"        validate:"required,email"`
	Password    string  `json:"password"     validate:"required,min=8,max=72"`
	FullName    *string `json:"full_name"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
}

// Validate checks the struct tags.
func (u UserCreate) Validate() error {
	return validateStruct(u)
}

// Fields returns the storable fields. Password is excluded; unset flags are
// left to the storage defaults.
func (u UserCreate) Fields() Fields {
	f := Fields{
		"email":     NormalizeEmail(u.Email),
		"full_name": u.FullName,
	}
	if u.IsActive != nil {
		f["is_active"] = *u.IsActive
	}
	if u.IsSuperuser != nil {
		f["is_superuser"] = *u.IsSuperuser
	}
	return f
}

// UserUpdate is a sparse user update.
type UserUpdate struct {
	Email       Field[string]  `json:"email"`
	Password    Field[string]  `json:"password"`
	FullName    Field[*string] `json:"full_name"`
	IsActive    Field[bool]    `json:"is_active"`
	IsSuperuser Field[bool]    `json:"is_superuser"`
}

// Validate checks the present fields only.
func (u UserUpdate) Validate() error {
	if u.Email.Set {
		if err := validateEmail(u.Email.Value); err != nil {
			return err
		}
	}
	if u.Password.Set {
		if err := validatePassword(u.Password.Value); err != nil {
			return err
		}
	}
	return nil
}

// Fields returns the present storable fields. A present password is not
// included; callers hash it into hashed_password.
func (u UserUpdate) Fields() Fields {
	f := Fields{}
	if u.Email.Set {
		f["email"] = NormalizeEmail(u.Email.Value)
	}
	if u.FullName.Set {
		f["full_name"] = u.FullName.Value
	}
	if u.IsActive.Set {
		f["is_active"] = u.IsActive.Value
	}
	if u.IsSuperuser.Set {
		f["is_superuser"] = u.IsSuperuser.Value
	}
	return f
}
