package models

// JWTClaims is the validated claim set pulled out of an access token.
// Sub carries the user ID; Exp and Iat are unix seconds.
type JWTClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Exp   int64  `json:"exp"`
	Iat   int64  `json:"iat"`
	Iss   string `json:"iss"`
}
