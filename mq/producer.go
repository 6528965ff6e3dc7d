package mq

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/nsqio/go-nsq"
	"github.com/puoklam/meetup-app-backend/env"
)

var producer *nsq.Producer
var once sync.Once

func GetProducer() *nsq.Producer {
	once.Do(func() {
		cfg := nsq.NewConfig()
		p, err := nsq.NewProducer(env.NSQD_TCP_ADDR, cfg)
		if err != nil {
			return
		}
		producer = p
	})
	return producer
}

func Publish(topic string, v any) error {
	p := GetProducer()
	if p == nil {
		return errors.New("mq: producer unavailable")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.Publish(topic, b)
}

func StopProducers() {
	if producer != nil {
		producer.Stop()
	}
}
