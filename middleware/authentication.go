package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/puoklam/meetup-app-backend/api"
	"github.com/puoklam/meetup-app-backend/env"
)

// Authenticator verifies the bearer token on the request and injects the
// authenticated user id into the request context under "userID".
func Authenticator(logger *log.Logger) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				api.WriteErr(w, http.StatusUnauthorized, "Token not provided")
				return
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 {
				api.WriteErr(w, http.StatusUnauthorized, "Token invalid")
				return
			}
			t, err := jwt.Parse(parts[1], func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return env.HS256_SECRET, nil
			})
			if err != nil || !t.Valid {
				if err != nil {
					logger.Println(err)
				}
				api.WriteErr(w, http.StatusUnauthorized, "Token invalid")
				return
			}
			claims, ok := t.Claims.(jwt.MapClaims)
			if !ok {
				api.WriteErr(w, http.StatusUnauthorized, "Token invalid")
				return
			}
			sub, _ := claims["sub"].(string)
			uid, err := strconv.ParseUint(sub, 10, 64)
			if err != nil {
				api.WriteErr(w, http.StatusUnauthorized, "Token invalid")
				return
			}
			ctx := context.WithValue(r.Context(), "userID", uint(uid))
			h.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}
