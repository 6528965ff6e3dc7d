package meetup

import (
	"time"

	"github.com/puoklam/meetup-app-backend/db/model"
)

type InStoreMeetup struct {
	BannerID    *uint      `json:"banner_id" validate:"required"`
	Title       *string    `json:"title" validate:"required"`
	Description *string    `json:"description" validate:"required"`
	Adress      *string    `json:"adress" validate:"required"`
	Date        *time.Time `json:"date" validate:"required"`
}

// InUpdateMeetup carries no validation tags on purpose: an update is a
// full replace of whatever the caller sent, nulls included.
type InUpdateMeetup struct {
	BannerID    *uint      `json:"banner_id"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Adress      *string    `json:"adress"`
	Date        *time.Time `json:"date"`
}

type OutMessage struct {
	Message string `json:"message"`
}

type OutBanner struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

type OutOwner struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type OutListMeetup struct {
	ID          uint       `json:"id"`
	Date        time.Time  `json:"date"`
	Description string     `json:"description"`
	Adress      string     `json:"adress"`
	Banner      *OutBanner `json:"banner"`
	Owner       *OutOwner  `json:"owner"`
}

func newOutListMeetup(m *model.Meetup) *OutListMeetup {
	out := &OutListMeetup{
		ID:          m.ID,
		Date:        m.Date,
		Description: m.Description,
		Adress:      m.Adress,
	}
	if m.Banner != nil {
		out.Banner = &OutBanner{URL: m.Banner.URL, Name: m.Banner.Name}
	}
	if m.Owner != nil {
		out.Owner = &OutOwner{ID: m.Owner.ID, Name: m.Owner.Name}
	}
	return out
}
