package entity

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginUser struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
}

type LoginResponse struct {
	Message      string    `json:"message,omitempty"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	User         LoginUser `json:"user"`
}

// Ack is the `{message}` body returned by mutation endpoints.
type Ack struct {
	Message string `json:"message"`
}
