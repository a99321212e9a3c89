package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims are the JWT claims minted by the identity layer after the
// external provider sign-in completes. The API only needs the user id,
// email and role.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the claims carry the admin role.
func (c *UserClaims) IsAdmin() bool {
	return c.Role == "admin"
}
