// File: internal/common/context_keys.go
package common

// Header names and gin context keys set by the auth middleware. Handlers read
// these through the middleware accessors rather than directly.
const (
	AuthorizationHeader     = "Authorization"
	AuthorizationTypeBearer = "Bearer"

	UserIDKey    = "userID"
	UserEmailKey = "userEmail"
	UserRoleKey  = "userRole"
	// UserClaimsKey holds the full verified claims object.
	UserClaimsKey = "userClaims"
)
