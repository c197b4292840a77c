package tracking

import (
	"context"
	"fmt"

	"github.com/matst80/slask-facets/pkg/messaging"
	"github.com/matst80/slask-facets/pkg/types"
	amqp "github.com/rabbitmq/amqp091-go"
)

const trackingPrefix = "global"

type connection interface {
	messaging.Connection
	Close() error
}

var dial = func(url string) (connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

type RabbitTracking struct {
	country    string
	connection connection
}

func NewRabbitTracking(url, country string) (*RabbitTracking, error) {
	ret := RabbitTracking{
		connection: nil,
		country:    country,
	}
	err := ret.connect(url)
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

// connect keeps the connection only when the topic could be declared on it.
func (t *RabbitTracking) connect(url string) (err error) {
	conn, err := dial(url)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			conn.Close()
			return
		}
		t.connection = conn
	}()
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()
	return messaging.DefineTopic(ch, trackingPrefix, messaging.SearchTopic)
}

func (t *RabbitTracking) Close() error {
	return t.connection.Close()
}

func (t *RabbitTracking) TrackSearch(ctx context.Context, q *types.Query, results *types.QueryResults) error {
	ev := NewSearchEvent(BaseEvent{Country: t.country, Context: "b2c"}, q, results)
	return messaging.SendChange(ctx, t.connection, trackingPrefix, messaging.SearchTopic, ev)
}
