package meetup

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/puoklam/meetup-app-backend/api"
	"github.com/puoklam/meetup-app-backend/db"
	"github.com/puoklam/meetup-app-backend/db/model"
	"github.com/puoklam/meetup-app-backend/middleware"
	"github.com/puoklam/meetup-app-backend/mq"
	"gorm.io/gorm"
)

const pageSize = 20

// cancelWindow is how long before the scheduled date cancellation closes.
const cancelWindow = 3 * 24 * time.Hour

var validate = validator.New()

type Handlers struct {
	logger *log.Logger
}

func (h *Handlers) store(w http.ResponseWriter, r *http.Request) {
	uid := r.Context().Value("userID").(uint)

	var body InStoreMeetup
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteErr(w, http.StatusBadRequest, "Validations fails")
		return
	}
	if err := validate.Struct(&body); err != nil {
		api.WriteErr(w, http.StatusBadRequest, "Validations fails")
		return
	}

	gdb := db.GetDB(r.Context())
	var banner model.File
	if err := gdb.First(&banner, *body.BannerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.WriteErr(w, http.StatusBadRequest, "File not found")
		} else {
			h.logger.Println(err)
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	m := &model.Meetup{
		UserID:      uid,
		BannerID:    *body.BannerID,
		Title:       *body.Title,
		Description: *body.Description,
		Adress:      *body.Adress,
		Date:        *body.Date,
	}
	if err := gdb.Create(m).Error; err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := mq.Publish(mq.Topic, mq.NewEvent(mq.EventMeetupCreated, m)); err != nil {
		h.logger.Println(err)
	}

	api.WriteJSON(w, http.StatusOK, OutMessage{"The meetup was created"})
}

func (h *Handlers) update(w http.ResponseWriter, r *http.Request) {
	uid := r.Context().Value("userID").(uint)

	var body InUpdateMeetup
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteErr(w, http.StatusBadRequest, "Validations fails")
		return
	}

	gdb := db.GetDB(r.Context())
	id, err := strconv.ParseUint(chi.URLParam(r, "meetupID"), 10, 64)
	if err != nil {
		api.WriteErr(w, http.StatusBadRequest, "Meetup does not exist")
		return
	}
	var m model.Meetup
	if err := gdb.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.WriteErr(w, http.StatusBadRequest, "Meetup does not exist")
		} else {
			h.logger.Println(err)
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}
	if m.UserID != uid {
		api.WriteErr(w, http.StatusUnauthorized, "User does not autorised")
		return
	}

	if body.BannerID == nil {
		api.WriteErr(w, http.StatusBadRequest, "Banner does not exist")
		return
	}
	var banner model.File
	if err := gdb.First(&banner, *body.BannerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.WriteErr(w, http.StatusBadRequest, "Banner does not exist")
		} else {
			h.logger.Println(err)
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	// full replace, guarded by ownership so a racing write cannot land on
	// someone else's record
	cols := map[string]any{
		"banner_id":   body.BannerID,
		"title":       body.Title,
		"description": body.Description,
		"adress":      body.Adress,
		"date":        body.Date,
	}
	res := gdb.Model(&model.Meetup{}).
		Where("id = ? AND user_id = ?", m.ID, uid).
		Updates(cols)
	if res.Error != nil {
		h.logger.Println(res.Error)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if res.RowsAffected == 0 {
		api.WriteErr(w, http.StatusBadRequest, "Meetup does not exist")
		return
	}

	api.WriteJSON(w, http.StatusOK, OutMessage{"The meetup has been updated"})
}

func (h *Handlers) index(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	day, err := parseDay(r.URL.Query().Get("date"))
	if err != nil {
		api.WriteErr(w, http.StatusBadRequest, "Validations fails")
		return
	}
	start := day
	end := day.AddDate(0, 0, 1).Add(-time.Nanosecond)

	meetups := make([]model.Meetup, 0)
	err = db.GetDB(r.Context()).
		Where("canceled_at IS NULL").
		Where("date BETWEEN ? AND ?", start, end).
		Order("date").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Preload("Banner").
		Preload("Owner").
		Find(&meetups).Error
	if err != nil {
		h.logger.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	out := make([]*OutListMeetup, 0, len(meetups))
	for i := range meetups {
		out = append(out, newOutListMeetup(&meetups[i]))
	}
	api.WriteJSON(w, http.StatusOK, out)
}

func (h *Handlers) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "meetupID"), 10, 64)
	if err != nil {
		// a missing meetup answers an empty body, not an error
		api.WriteJSON(w, http.StatusOK, (*model.Meetup)(nil))
		return
	}
	var m model.Meetup
	err = db.GetDB(r.Context()).Preload("Banner").Preload("Owner").First(&m, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.WriteJSON(w, http.StatusOK, (*model.Meetup)(nil))
		} else {
			h.logger.Println(err)
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}
	api.WriteJSON(w, http.StatusOK, &m)
}

func (h *Handlers) delete(w http.ResponseWriter, r *http.Request) {
	uid := r.Context().Value("userID").(uint)

	gdb := db.GetDB(r.Context())
	id, err := strconv.ParseUint(chi.URLParam(r, "meetupID"), 10, 64)
	if err != nil {
		api.WriteErr(w, http.StatusBadRequest, "Meetup does not exist")
		return
	}
	var m model.Meetup
	if err := gdb.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.WriteErr(w, http.StatusBadRequest, "Meetup does not exist")
		} else {
			h.logger.Println(err)
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}
	if m.Canceled() {
		api.WriteErr(w, http.StatusBadRequest, "This meetapp was already canceled!")
		return
	}
	if m.UserID != uid {
		api.WriteErr(w, http.StatusUnauthorized, "User does not autorised")
		return
	}
	if !time.Now().Before(m.Date.Add(-cancelWindow)) {
		api.WriteErr(w, http.StatusUnauthorized, "You can only cancel appointments 3 days in advance.")
		return
	}

	// conditional write: the canceled_at guard makes two racing cancels
	// resolve to exactly one winner
	now := time.Now()
	res := gdb.Model(&model.Meetup{}).
		Where("id = ? AND user_id = ? AND canceled_at IS NULL", m.ID, uid).
		Update("canceled_at", now)
	if res.Error != nil {
		h.logger.Println(res.Error)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if res.RowsAffected == 0 {
		api.WriteErr(w, http.StatusBadRequest, "This meetapp was already canceled!")
		return
	}
	m.CanceledAt = &now

	if err := mq.Publish(mq.Topic, mq.NewEvent(mq.EventMeetupCanceled, &m)); err != nil {
		h.logger.Println(err)
	}

	api.WriteJSON(w, http.StatusOK, &m)
}

// parseDay accepts a date or a full timestamp and floors it to the start
// of that day in local time.
func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("missing date")
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, s); err != nil {
			return time.Time{}, err
		}
		t = t.Local()
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local), nil
}

func (h *Handlers) SetupRoutes(r *chi.Mux) {
	r.Route("/meetups", func(r chi.Router) {
		r.Use(middleware.Authenticator(h.logger))
		r.With(middleware.NoCache).Get("/", h.index)
		r.Post("/", h.store)
		r.With(middleware.NoCache).Get("/{meetupID}", h.show)
		r.Put("/{meetupID}", h.update)
		r.Delete("/{meetupID}", h.delete)
	})
}

func NewHandlers(l *log.Logger) *Handlers {
	return &Handlers{l}
}
