package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/puoklam/meetup-app-backend/db"
	"github.com/puoklam/meetup-app-backend/db/model"
	"github.com/puoklam/meetup-app-backend/env"
	"github.com/puoklam/meetup-app-backend/middleware"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbSeq int64

func setupTest(t *testing.T) *chi.Mux {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	if err := db.Init(sqlite.Open(dsn)); err != nil {
		t.Fatal(err)
	}
	r := chi.NewRouter()
	r.Use(middleware.WithDeviceInfo)
	NewHandlers(log.New(io.Discard, "", 0)).SetupRoutes(r)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	r := httptest.NewRequest(method, path, rd)
	for k, v := range header {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func register(t *testing.T, r http.Handler, email, name, pass string) *httptest.ResponseRecorder {
	t.Helper()
	return doJSON(t, r, http.MethodPost, "/auth/register", map[string]string{
		"email":    email,
		"name":     name,
		"password": pass,
	}, nil)
}

func signin(t *testing.T, r http.Handler, email, pass string) *httptest.ResponseRecorder {
	t.Helper()
	return doJSON(t, r, http.MethodPost, "/auth/signin", map[string]string{
		"email":    email,
		"password": pass,
	}, map[string]string{"X-Expo-Push-Token": "ExponentPushToken[test]"})
}

func TestRegisterValidation(t *testing.T) {
	r := setupTest(t)
	if w := register(t, r, "", "Ana", "secret"); w.Code != http.StatusBadRequest {
		t.Fatalf("missing email: status = %d, want 400", w.Code)
	}
	if w := register(t, r, "not-an-email", "Ana", "secret"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad email: status = %d, want 400", w.Code)
	}
}

func TestRegisterConflict(t *testing.T) {
	r := setupTest(t)
	if w := register(t, r, "ana@example.com", "Ana", "secret"); w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", w.Code, w.Body.String())
	}
	if w := register(t, r, "ana@example.com", "Ana Again", "secret"); w.Code != http.StatusConflict {
		t.Fatalf("duplicate: status = %d, want 409", w.Code)
	}
}

func TestSigninIssuesVerifiableToken(t *testing.T) {
	r := setupTest(t)
	w := register(t, r, "ana@example.com", "Ana", "secret")
	if w.Code != http.StatusOK {
		t.Fatalf("register status = %d", w.Code)
	}
	var u OutUser
	if err := json.Unmarshal(w.Body.Bytes(), &u); err != nil {
		t.Fatal(err)
	}

	if w := signin(t, r, "ana@example.com", "wrong"); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status = %d, want 401", w.Code)
	}
	if w := signin(t, r, "nobody@example.com", "secret"); w.Code != http.StatusNotFound {
		t.Fatalf("unknown email: status = %d, want 404", w.Code)
	}

	w = signin(t, r, "ana@example.com", "secret")
	if w.Code != http.StatusOK {
		t.Fatalf("signin status = %d, body = %q", w.Code, w.Body.String())
	}
	var out OutSignin
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.AccessToken == "" {
		t.Fatal("no access token issued")
	}

	tk, err := jwt.Parse(out.AccessToken, func(tk *jwt.Token) (any, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return env.HS256_SECRET, nil
	})
	if err != nil || !tk.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	claims := tk.Claims.(jwt.MapClaims)
	if claims["sub"] != strconv.FormatUint(uint64(u.ID), 10) {
		t.Fatalf("sub = %v, want %d", claims["sub"], u.ID)
	}

	// signin records the device session with its push token
	var s model.Session
	if err := db.GetDB(context.Background()).Where(&model.Session{UserID: u.ID}).First(&s).Error; err != nil {
		t.Fatal(err)
	}
	if s.ExpoPushToken != "ExponentPushToken[test]" {
		t.Fatalf("push token = %q", s.ExpoPushToken)
	}
}

func TestSigninRequiresPushToken(t *testing.T) {
	r := setupTest(t)
	register(t, r, "ana@example.com", "Ana", "secret")
	w := doJSON(t, r, http.MethodPost, "/auth/signin", map[string]string{
		"email":    "ana@example.com",
		"password": "secret",
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSignoutDeletesSession(t *testing.T) {
	r := setupTest(t)
	register(t, r, "ana@example.com", "Ana", "secret")
	w := signin(t, r, "ana@example.com", "secret")
	var out OutSignin
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}

	w = doJSON(t, r, http.MethodPost, "/auth/signout", nil, map[string]string{
		"Authorization": "Bearer " + out.AccessToken,
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("signout status = %d, want 204", w.Code)
	}

	var s model.Session
	err := db.GetDB(context.Background()).Where(&model.Session{UserID: out.User.ID}).First(&s).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("session still visible after signout: %v", err)
	}
}

func TestUserEndpoint(t *testing.T) {
	r := setupTest(t)
	register(t, r, "ana@example.com", "Ana", "secret")
	w := signin(t, r, "ana@example.com", "secret")
	var out OutSignin
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}

	w = doJSON(t, r, http.MethodGet, "/auth/user", nil, map[string]string{
		"Authorization": "Bearer " + out.AccessToken,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", w.Code, w.Body.String())
	}
	var u OutUser
	if err := json.Unmarshal(w.Body.Bytes(), &u); err != nil {
		t.Fatal(err)
	}
	if u.Email != "ana@example.com" || u.Name != "Ana" {
		t.Fatalf("user = %+v", u)
	}
}
