package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/puoklam/meetup-app-backend/env"
)

// HS256 for symmetric signature, sign and verify in server
func genAccessToken(aud, sub string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
		IssuedAt:  time.Now().Unix(),
		Issuer:    "https://meetapp.test.com",
		Audience:  aud,
		Subject:   sub,
	})
	return token.SignedString(env.HS256_SECRET)
}
