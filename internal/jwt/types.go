package jwt

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   int64  `json:"expiresAt"`
}

// Staff is the identity carried by a staff access token.
type Staff struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
