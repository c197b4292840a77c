package messaging

import (
	"context"
	"fmt"

	"github.com/matst80/slask-facets/pkg/common/jsoncompat"
	amqp "github.com/rabbitmq/amqp091-go"
)

type ChangeTopic string

const (
	SearchTopic ChangeTopic = "facet_search"
)

func DefineTopic(ch *amqp.Channel, prefix string, topic ChangeTopic) error {
	name := getName(prefix, topic)
	if err := ch.ExchangeDeclare(
		name,    // name
		"topic", // type
		true,    // durable
		false,   // auto-delete
		false,   // internal
		false,   // noWait
		nil,     // arguments
	); err != nil {
		return fmt.Errorf("declare exchange %s: %w", name, err)
	}
	if _, err := ch.QueueDeclare(
		name,  // name of the queue
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // noWait
		nil,   // arguments
	); err != nil {
		return fmt.Errorf("declare queue %s: %w", name, err)
	}
	if err := ch.QueueBind(name, name, name, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", name, err)
	}
	return nil
}

func getName(prefix string, topic ChangeTopic) string {
	return fmt.Sprintf("%s_%s", prefix, topic)
}

// Publishing encodes data as a persistent json message.
func Publishing[V any](data V) (amqp.Publishing, error) {
	bytes, err := jsoncompat.Marshal(data)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         bytes,
	}, nil
}

// Connection is the part of an amqp connection needed to publish.
type Connection interface {
	Channel() (*amqp.Channel, error)
}

func SendChange[V any](ctx context.Context, c Connection, prefix string, topic ChangeTopic, data V) error {
	msg, err := Publishing(data)
	if err != nil {
		return err
	}
	ch, err := c.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	name := getName(prefix, topic)
	return ch.PublishWithContext(ctx,
		name,
		name,
		false,
		false,
		msg,
	)
}
