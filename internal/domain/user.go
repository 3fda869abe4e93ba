package domain

// User roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User represents a registered account. The password hash never leaves the
// store layer in serialized form.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	Role         string `json:"role"`
	IsActive     bool   `json:"is_active"`
	CreatedAt    string `json:"created_at"`
	PasswordHash string `json:"-"`
}

// RegisterInput is the request body for account registration.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// Token is the OAuth2 password-flow token response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// APIKey represents an API key owned by a user. Secret is only populated on
// creation; afterwards callers only ever see the prefix.
type APIKey struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Prefix    string `json:"prefix"`
	Secret    string `json:"secret,omitempty"`
	CreatedAt string `json:"created_at"`
}
