package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/nsqio/go-nsq"
	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	"github.com/puoklam/meetup-app-backend/db"
	"github.com/puoklam/meetup-app-backend/db/model"
	"github.com/puoklam/meetup-app-backend/env"
	"github.com/puoklam/meetup-app-backend/mq"
)

// Notifier consumes meetup lifecycle events and pushes a confirmation to
// every device the owner has signed in from. Delivery is best effort.
type Notifier struct {
	logger   *log.Logger
	consumer *nsq.Consumer
	client   *expo.PushClient
}

func New(logger *log.Logger) (*Notifier, error) {
	consumer, err := nsq.NewConsumer(mq.Topic, env.SERVER_ID, nsq.NewConfig())
	if err != nil {
		return nil, err
	}
	n := &Notifier{
		logger:   logger,
		consumer: consumer,
		client:   expo.NewPushClient(nil),
	}
	consumer.AddHandler(nsq.HandlerFunc(n.handle))
	return n, nil
}

func (n *Notifier) Start() error {
	return n.consumer.ConnectToNSQLookupd(env.NSQLOOKUPD_ADDR)
}

func (n *Notifier) Stop() {
	n.consumer.Stop()
}

func (n *Notifier) handle(message *nsq.Message) error {
	var ev mq.Event
	if err := json.Unmarshal(message.Body, &ev); err != nil {
		n.logger.Println(err)
		return nil
	}
	var title, body string
	switch ev.Type {
	case mq.EventMeetupCreated:
		title = "Meetup created"
		body = fmt.Sprintf("%s is scheduled for %s", ev.Title, ev.Date.Format("Jan 2, 15:04"))
	case mq.EventMeetupCanceled:
		title = "Meetup canceled"
		body = fmt.Sprintf("%s has been canceled", ev.Title)
	default:
		return nil
	}

	sessions := make([]model.Session, 0)
	if err := db.GetDB(context.Background()).Where(&model.Session{UserID: ev.OwnerID}).Find(&sessions).Error; err != nil {
		n.logger.Println(err)
		return err
	}
	for _, s := range sessions {
		if s.ExpoPushToken == "" {
			continue
		}
		token, err := expo.NewExponentPushToken(s.ExpoPushToken)
		if err != nil {
			n.logger.Println(err)
			continue
		}
		if _, err := n.client.Publish(&expo.PushMessage{
			To:    []expo.ExponentPushToken{token},
			Title: title,
			Body:  body,
			Sound: "default",
		}); err != nil {
			n.logger.Println(err)
		}
	}
	return nil
}
