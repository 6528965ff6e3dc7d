package model

type User struct {
	Base
	Email    string    `gorm:"unique" json:"email"`
	Name     string    `json:"name"`
	Pass     string    `json:"-"`
	Sessions []Session `json:"-"`
}
