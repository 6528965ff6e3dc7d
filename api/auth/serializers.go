package auth

import "github.com/puoklam/meetup-app-backend/db/model"

type InRegister struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type InSignin struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type OutUser struct {
	model.Base
	Email string `json:"email"`
	Name  string `json:"name"`
}

type OutSignin struct {
	AccessToken string   `json:"access_token"`
	User        *OutUser `json:"user"`
}
