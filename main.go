package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/puoklam/meetup-app-backend/api/auth"
	"github.com/puoklam/meetup-app-backend/api/meetup"
	"github.com/puoklam/meetup-app-backend/db"
	"github.com/puoklam/meetup-app-backend/env"
	"github.com/puoklam/meetup-app-backend/mq"
	"github.com/puoklam/meetup-app-backend/notification"
	"github.com/puoklam/meetup-app-backend/server"
	"gorm.io/driver/postgres"
)

func cleanup(n *notification.Notifier) {
	mq.StopProducers()
	n.Stop()
}

func main() {
	logger := log.New(os.Stdout, "meetapp-backend ", log.LstdFlags|log.Lshortfile)

	if err := db.Init(postgres.Open(env.DB_CONN)); err != nil {
		logger.Fatalln(err)
	}

	notifier, err := notification.New(logger)
	if err != nil {
		logger.Fatalln(err)
	}
	if err := notifier.Start(); err != nil {
		logger.Fatalln(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cleanup(notifier)
		fmt.Println("quit")
		os.Exit(0)
	}()

	r := chi.NewRouter()
	server.SetupMiddlewares(r)

	authHandlers := auth.NewHandlers(logger)
	authHandlers.SetupRoutes(r)

	meetupHandlers := meetup.NewHandlers(logger)
	meetupHandlers.SetupRoutes(r)

	srv := server.New(r)
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatalln(err)
	}
}
