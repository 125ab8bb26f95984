package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

const DefaultTokenTTL = 12 * time.Hour

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration, now func() time.Time) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: now}
}

func (i *Issuer) CreateToken(staff Staff) (TokenResponse, error) {
	validUntil := i.now().Add(i.ttl).Unix()

	claims := jwt.MapClaims{
		"id":    staff.ID,
		"email": staff.Email,
		"name":  staff.Name,
		"exp":   validUntil,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{AccessToken: tokenString, ExpiresAt: validUntil}, nil
}

func (i *Issuer) ParseToken(tokenString string) (Staff, error) {
	if len(tokenString) == 0 {
		return Staff{}, fmt.Errorf("token string is empty")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil {
		return Staff{}, fmt.Errorf("unauthorized: %v", err)
	}
	if !token.Valid {
		return Staff{}, fmt.Errorf("token is not valid - unauthorized")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Staff{}, fmt.Errorf("claims of unauthorized type")
	}

	staff := Staff{
		ID:    stringClaim(claims, "id"),
		Email: stringClaim(claims, "email"),
		Name:  stringClaim(claims, "name"),
	}
	if staff.Name == "" {
		return Staff{}, fmt.Errorf("token carries no staff name")
	}
	return staff, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}
