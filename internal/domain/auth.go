package domain

// Permission names recognised by the HTTP layer.
const (
	PermissionUsersCreate = "users.create"
	PermissionUsersGet    = "users.get"
	PermissionUsersUpdate = "users.update"
	PermissionUsersDelete = "users.delete"
)

// TokenClaims is the identity payload embedded in access and refresh tokens.
type TokenClaims struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Permissions []string `json:"permissions"`
}

// ClaimsFromUser projects token claims from a credential record. The password
// hash never leaves the record.
func ClaimsFromUser(user *User) TokenClaims {
	perms := make([]string, len(user.Permissions))
	copy(perms, user.Permissions)
	return TokenClaims{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Permissions: perms,
	}
}

// SessionEntry is the single refresh token on record for a user.
type SessionEntry struct {
	UserID       string
	RefreshToken string
}

// TokenPair is returned by a successful login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AccessToken is returned by a successful refresh.
type AccessToken struct {
	AccessToken string
}
