package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends ticket events to RabbitMQ, dialing once per publish.
// Errors are returned so the caller can log them without failing the
// request.
type Publisher struct {
    URL string
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string) *Publisher { return &Publisher{URL: url} }

// TicketBooked publishes ev to the ticket.booked queue.
func (p *Publisher) TicketBooked(ctx context.Context, ev TicketBookedEvent) error {
    return p.publish(ctx, QueueTicketBooked, ev)
}

// TicketBoarded publishes ev to the ticket.boarded queue.
func (p *Publisher) TicketBoarded(ctx context.Context, ev TicketBoardedEvent) error {
    return p.publish(ctx, QueueTicketBoarded, ev)
}

func (p *Publisher) publish(ctx context.Context, queue string, event any) error {
    body, err := json.Marshal(event)
    if err != nil {
        return fmt.Errorf("marshal %s event: %w", queue, err)
    }

    conn, err := amqp.Dial(p.URL)
    if err != nil {
        return fmt.Errorf("rabbitmq dial: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("rabbitmq channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        queue, // name
        true,  // durable
        false, // autoDelete
        false, // exclusive
        false, // noWait
        nil,   // args
    ); err != nil {
        return fmt.Errorf("queue declare %s: %w", queue, err)
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Type:         queue,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
        return fmt.Errorf("publish %s: %w", queue, err)
    }
    return nil
}
