// Package notify delivers submitted-order notifications to a Telegram chat
// without blocking the request that submitted the order.
package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"food-truck/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

const defaultQueueSize = 64

var notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "foodtruck",
	Name:      "order_notifications_total",
	Help:      "Order notifications, by outcome (sent, failed, dropped)",
}, []string{"outcome"})

// Sender delivers one text message to a chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Recorder persists messages that were sent. services.SaveOutboundMessage fits.
type Recorder func(ctx context.Context, chatID int64, content string, meta map[string]any) error

// OrderSubmitted describes one submitted basket.
type OrderSubmitted struct {
	RestaurantID int64
	Username     string
	Entries      []services.BasketEntry
	Total        float64
}

// Text renders the notification body.
func (o OrderSubmitted) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "New order for restaurant #%d", o.RestaurantID)
	if o.Username != "" {
		fmt.Fprintf(&b, " from %s", o.Username)
	}
	b.WriteString("\n")
	for _, e := range o.Entries {
		fmt.Fprintf(&b, "\n%d x %s (%s)", e.Quantity, e.Title, e.Price)
	}
	fmt.Fprintf(&b, "\n\nTotal: %s", services.FormatMoney(o.Total))
	return b.String()
}

// Notifier queues notifications and sends them from a single worker goroutine.
type Notifier struct {
	sender Sender
	record Recorder
	chatID int64
	logger zerolog.Logger

	queue chan OrderSubmitted
	wg    sync.WaitGroup
	once  sync.Once
}

func New(sender Sender, chatID int64, record Recorder, logger zerolog.Logger) *Notifier {
	return &Notifier{
		sender: sender,
		record: record,
		chatID: chatID,
		logger: logger,
		queue:  make(chan OrderSubmitted, defaultQueueSize),
	}
}

// Start runs the worker until ctx is cancelled or Close is called.
func (n *Notifier) Start(ctx context.Context) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case o, ok := <-n.queue:
				if !ok {
					return
				}
				n.deliver(ctx, o)
			}
		}
	}()
}

// Enqueue hands o to the worker. It never blocks: a full queue drops o.
func (n *Notifier) Enqueue(o OrderSubmitted) bool {
	if n == nil {
		return false
	}
	select {
	case n.queue <- o:
		return true
	default:
		notificationsTotal.WithLabelValues("dropped").Inc()
		n.logger.Warn().Int64("restaurant_id", o.RestaurantID).Msg("notification queue full, dropping order notification")
		return false
	}
}

// Close stops accepting notifications, drains the queue and waits for the worker.
func (n *Notifier) Close() {
	n.once.Do(func() { close(n.queue) })
	n.wg.Wait()
}

func (n *Notifier) deliver(ctx context.Context, o OrderSubmitted) {
	text := o.Text()
	if err := n.sender.Send(ctx, n.chatID, text); err != nil {
		notificationsTotal.WithLabelValues("failed").Inc()
		n.logger.Error().Err(err).Int64("chat_id", n.chatID).Msg("send order notification")
		return
	}
	notificationsTotal.WithLabelValues("sent").Inc()
	if n.record != nil {
		meta := map[string]any{"sent_via": "order_submitted", "restaurant_id": o.RestaurantID}
		if err := n.record(ctx, n.chatID, text, meta); err != nil {
			n.logger.Warn().Err(err).Msg("record outbound message")
		}
	}
}

// TelegramSender sends messages through the Telegram Bot API.
type TelegramSender struct {
	api *tgbotapi.BotAPI
}

func NewTelegramSender(token string) (*TelegramSender, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &TelegramSender{api: api}, nil
}

func (s *TelegramSender) Send(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := s.api.Send(msg)
	return err
}
