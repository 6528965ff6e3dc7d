package model

import "time"

type Meetup struct {
	Base
	UserID      uint       `json:"user_id"`
	BannerID    uint       `json:"banner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Adress      string     `json:"adress"`
	Date        time.Time  `json:"date" gorm:"index"`
	CanceledAt  *time.Time `json:"canceled_at"`
	Banner      *File      `json:"banner" gorm:"foreignKey:BannerID"`
	Owner       *User      `json:"owner" gorm:"foreignKey:UserID"`
}

// Canceled reports whether the meetup has been soft canceled. Canceling
// is terminal, there is no way to reactivate a meetup.
func (m *Meetup) Canceled() bool {
	return m.CanceledAt != nil
}
