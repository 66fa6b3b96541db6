package api

import "github.com/phrazzld/scaffold-api/internal/domain"

// Token is the successful response of the login endpoint.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// NewPasswordRequest redeems a password reset token.
type NewPasswordRequest struct {
	Token       string `json:"token"        validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// UserRegisterRequest is the payload of anonymous sign-up. Privilege
// flags cannot be chosen here.
type UserRegisterRequest struct {
	Email    string  `json:"email"     validate:"required"`
	Password string  `json:"password"  validate:"required"`
	FullName *string `json:"full_name"`
}

// UserCreate converts the request into a regular, active account.
func (req UserRegisterRequest) UserCreate() domain.UserCreate {
	return domain.UserCreate{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	}
}

// UpdateMeRequest is the sparse payload of PUT /users/me. Users cannot
// change their own flags.
type UpdateMeRequest struct {
	Email    domain.Field[string]  `json:"email"`
	Password domain.Field[string]  `json:"password"`
	FullName domain.Field[*string] `json:"full_name"`
}

// UserUpdate converts the request into a domain update.
func (req UpdateMeRequest) UserUpdate() domain.UserUpdate {
	return domain.UserUpdate{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	}
}

// TestCeleryRequest carries the word echoed by the test task.
type TestCeleryRequest struct {
	Msg string `json:"msg" validate:"required"`
}

// HealthResponse reports the state of the backing services.
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
}
