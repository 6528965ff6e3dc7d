package mq

import (
	"time"

	"github.com/puoklam/meetup-app-backend/db/model"
)

// Topic carries meetup lifecycle events.
const Topic = "meetups"

const (
	EventMeetupCreated  = "meetup.created"
	EventMeetupCanceled = "meetup.canceled"
)

type Event struct {
	Type     string    `json:"type"`
	MeetupID uint      `json:"meetup_id"`
	OwnerID  uint      `json:"owner_id"`
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
}

func NewEvent(typ string, m *model.Meetup) *Event {
	return &Event{
		Type:     typ,
		MeetupID: m.ID,
		OwnerID:  m.UserID,
		Title:    m.Title,
		Date:     m.Date,
	}
}
