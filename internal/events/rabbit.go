package events

import (
	"context"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// Exchange is the topic exchange all storefront events flow through.
	Exchange = "storefront.events"

	cartChangedPrefix = "cart.changed."
)

type rabbitFeed struct {
	conn   *amqp.Connection
	pubCh  *amqp.Channel
	logger *log.Logger
}

// DialRabbit connects to RabbitMQ and declares the events exchange.
func DialRabbit(url string, logger *log.Logger) (Feed, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	pubCh, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := declareExchange(pubCh); err != nil {
		conn.Close()
		return nil, err
	}

	return &rabbitFeed{conn: conn, pubCh: pubCh, logger: logger}, nil
}

func declareExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
}

func (f *rabbitFeed) Publish(ctx context.Context, userID string) error {
	return f.pubCh.PublishWithContext(ctx,
		Exchange,
		cartChangedPrefix+userID,
		false, // mandatory
		false, // immediate
		amqp.Publishing{ContentType: "application/octet-stream"},
	)
}

func (f *rabbitFeed) Subscribe(_ context.Context, userID string) (*Subscription, error) {
	ch, err := f.conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := declareExchange(ch); err != nil {
		ch.Close()
		return nil, err
	}

	// Exclusive auto-deleted queue: the subscription owns it and it
	// disappears with the channel.
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		ch.Close()
		return nil, err
	}
	if err := ch.QueueBind(q.Name, cartChangedPrefix+userID, Exchange, false, nil); err != nil {
		ch.Close()
		return nil, err
	}

	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, err
	}

	sub := newSubscription(func() {
		if err := ch.Close(); err != nil {
			f.logger.Printf("close feed channel for %s: %v", userID, err)
		}
	})

	go func() {
		for range deliveries {
			sub.notify()
		}
	}()

	return sub, nil
}

// Close shuts down the underlying connection, tearing down all channels.
func (f *rabbitFeed) Close() error {
	return f.conn.Close()
}
