package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/mail"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/puoklam/meetup-app-backend/api"
	"github.com/puoklam/meetup-app-backend/db"
	"github.com/puoklam/meetup-app-backend/db/model"
	"github.com/puoklam/meetup-app-backend/middleware"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Handlers struct {
	logger *log.Logger
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var body InRegister
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Println(err)
		api.WriteErr(w, http.StatusBadRequest, "invalid input")
		return
	}
	if body.Email == "" || body.Name == "" || body.Password == "" {
		api.WriteErr(w, http.StatusBadRequest, "invalid input")
		return
	}
	addr, err := mail.ParseAddress(body.Email)
	if err != nil {
		api.WriteErr(w, http.StatusBadRequest, "invalid email")
		return
	}
	body.Email = addr.Address

	if exists, err := isUserExist(r.Context(), body.Email); err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	} else if exists {
		api.WriteErr(w, http.StatusConflict, "email exists")
		return
	}

	passBytes, err := bcrypt.GenerateFromPassword([]byte(body.Password), 14)
	if err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	u := &model.User{
		Email: body.Email,
		Name:  body.Name,
		Pass:  string(passBytes),
	}
	if err := db.GetDB(r.Context()).Create(u).Error; err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	api.WriteJSON(w, http.StatusOK, &OutUser{u.Base, u.Email, u.Name})
}

func (h *Handlers) signin(w http.ResponseWriter, r *http.Request) {
	var body InSignin
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Println(err)
		api.WriteErr(w, http.StatusBadRequest, "invalid input")
		return
	}
	if len(body.Email) < 1 || len(body.Password) < 1 {
		api.WriteErr(w, http.StatusBadRequest, "invalid input")
		return
	}

	c := r.Context()
	u, err := getUserFromEmail(c, body.Email)
	if err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if u == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Pass), []byte(body.Password)) != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	ip := c.Value("deviceIP").(string)
	s := &model.Session{}
	if err := db.GetDB(c).Where(&model.Session{UserID: u.ID, IP: ip}).First(s).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			h.logger.Println(err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if s, err = insertSession(c, u.ID, ip, c.Value("expoPushToken").(string)); err != nil {
			h.logger.Println(err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}

	accessToken, err := genAccessToken(ip, strconv.FormatUint(uint64(u.ID), 10))
	if err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	api.WriteJSON(w, http.StatusOK, &OutSignin{
		AccessToken: accessToken,
		User:        &OutUser{u.Base, u.Email, u.Name},
	})
}

func (h *Handlers) signout(w http.ResponseWriter, r *http.Request) {
	uid := r.Context().Value("userID").(uint)
	ip := r.Context().Value("deviceIP").(string)
	if err := db.GetDB(r.Context()).Delete(&model.Session{UserID: uid, IP: ip}).Error; err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) user(w http.ResponseWriter, r *http.Request) {
	uid := r.Context().Value("userID").(uint)
	var u model.User
	if err := db.GetDB(r.Context()).First(&u, uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			w.WriteHeader(http.StatusForbidden)
		} else {
			h.logger.Println(err)
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}
	api.WriteJSON(w, http.StatusOK, &OutUser{u.Base, u.Email, u.Name})
}

func (h *Handlers) SetupRoutes(r *chi.Mux) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.With(middleware.WithExpoPushToken).Post("/signin", h.signin)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticator(h.logger))
			r.With(middleware.NoCache).Get("/user", h.user)
			r.Post("/signout", h.signout)
		})
	})
}

func isUserExist(ctx context.Context, email string) (bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var exists bool
	err := db.GetDB(ctx).Raw("SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)", email).Scan(&exists).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = nil
	}
	return exists, err
}

func getUserFromEmail(ctx context.Context, email string) (user *model.User, err error) {
	user = &model.User{}
	if ctx == nil {
		ctx = context.Background()
	}
	if err = db.GetDB(ctx).First(user, "email = ?", email).Error; err != nil {
		user = nil
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = nil
		}
	}
	return
}

func insertSession(ctx context.Context, userID uint, ip string, token string) (session *model.Session, err error) {
	k := fmt.Sprintf("%s:%s", strconv.FormatUint(uint64(userID), 10), ip)

	hs := sha256.New()
	hs.Write([]byte(k))
	ch := hex.EncodeToString(hs.Sum(nil))

	session = &model.Session{
		UserID:        userID,
		IP:            ip,
		Ch:            ch,
		ExpoPushToken: token,
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err = db.GetDB(ctx).Create(session).Error; err != nil {
		session = nil
	}
	return
}

func NewHandlers(logger *log.Logger) *Handlers {
	return &Handlers{logger}
}
