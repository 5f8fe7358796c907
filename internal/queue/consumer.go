package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log/slog"
    "os"
    "path/filepath"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// AuditConsumer listens to the ticket queues and appends one line per
// event to an audit log file.
type AuditConsumer struct {
    URL     string
    LogPath string

    mu sync.Mutex
}

// NewAuditConsumer returns a consumer writing to logs/tickets.log.
func NewAuditConsumer(url string) *AuditConsumer {
    return &AuditConsumer{URL: url, LogPath: filepath.Join("logs", "tickets.log")}
}

// Run connects to RabbitMQ, declares both ticket queues and consumes them
// until ctx is cancelled. Lost connections are retried with exponential
// backoff capped at 30s. Messages that cannot be handled are rejected
// without requeue so a bad payload cannot loop.
func (a *AuditConsumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(a.URL)
        if err != nil {
            slog.Warn("audit consumer: dial failed", "error", err, "retry_in", backoff.String())
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = a.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        slog.Warn("audit consumer: consume loop ended, reconnecting", "error", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (a *AuditConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        slog.Warn("audit consumer: set QoS failed", "error", err)
    }

    deliveries := make(chan amqp.Delivery)
    var wg sync.WaitGroup
    for _, q := range []string{QueueTicketBooked, QueueTicketBoarded} {
        if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", q, err)
        }
        msgs, err := ch.Consume(q, "", false, false, false, false, nil)
        if err != nil {
            return fmt.Errorf("queue consume %s: %w", q, err)
        }
        wg.Add(1)
        go func(msgs <-chan amqp.Delivery) {
            defer wg.Done()
            for d := range msgs {
                select {
                case deliveries <- d:
                case <-ctx.Done():
                    return
                }
            }
        }(msgs)
    }
    closed := make(chan struct{})
    go func() { wg.Wait(); close(closed) }()

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case <-closed:
            return errors.New("deliveries channel closed")
        case d := <-deliveries:
            if err := a.handleMessage(d.RoutingKey, d.Body); err != nil {
                slog.Error("audit consumer: handle message failed", "queue", d.RoutingKey, "error", err)
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// handleMessage decodes body according to queue and appends a single
// human readable line to the audit log.
func (a *AuditConsumer) handleMessage(queue string, body []byte) error {
    var line string
    switch queue {
    case QueueTicketBooked:
        var ev TicketBookedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return fmt.Errorf("unmarshal: %w", err)
        }
        line = fmt.Sprintf("[%s] Ticket booked | ticket_id=%d | ref=%s | user_id=%d | trip_id=%d | passenger=%q | from=%q | to=%q | fare=%.2f\n",
            ev.BookedAt, ev.TicketID, ev.BookingReference, ev.UserID, ev.TripID, ev.PassengerName, ev.FromStop, ev.ToStop, ev.Fare)
    case QueueTicketBoarded:
        var ev TicketBoardedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return fmt.Errorf("unmarshal: %w", err)
        }
        line = fmt.Sprintf("[%s] Ticket boarded | ticket_id=%d | ref=%s | trip_id=%d | passenger=%q | verified_by=%d\n",
            ev.BoardedAt, ev.TicketID, ev.BookingReference, ev.TripID, ev.PassengerName, ev.VerifiedBy)
    default:
        return fmt.Errorf("unknown queue %q", queue)
    }

    a.mu.Lock()
    defer a.mu.Unlock()
    if err := os.MkdirAll(filepath.Dir(a.LogPath), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(a.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// sleep waits for d or until ctx is done; it reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
