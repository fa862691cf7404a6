package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/angelmondragon/storefront-gateway/pkg/config"
	"github.com/angelmondragon/storefront-gateway/pkg/logger"
)

// TopicOrderCompleted carries OrderCompleted payloads.
const TopicOrderCompleted = "storefront.order_completed"

// OrderCompleted announces that an order was placed and the stock of its products changed.
type OrderCompleted struct {
	OrderID    string    `json:"order_id"`
	SessionID  string    `json:"session_id"`
	ProductIDs []string  `json:"product_ids"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Touches reports whether the event names productID.
func (e OrderCompleted) Touches(productID string) bool {
	for _, id := range e.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// OrderCompletedHandler reacts to one event. Errors are logged; the event is never redelivered.
type OrderCompletedHandler func(ctx context.Context, evt OrderCompleted) error

// Bus is an in-process, non-persistent broadcast. Subscribers that are not registered when an
// event is published never see it.
type Bus struct {
	pubsub *gochannel.GoChannel
	logg   *logger.Logger
}

// NewBus starts the in-memory pub/sub.
func NewBus(cfg config.EventsConfig, logg *logger.Logger) *Bus {
	var adapter watermill.LoggerAdapter = watermill.NopLogger{}
	if logg != nil {
		adapter = NewLoggerAdapter(*logg.Zerolog())
	}
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            cfg.OutputBuffer,
		Persistent:                     false,
		BlockPublishUntilSubscriberAck: false,
	}, adapter)
	return &Bus{pubsub: pubsub, logg: logg}
}

// PublishOrderCompleted broadcasts evt and returns without waiting for listeners.
func (b *Bus) PublishOrderCompleted(ctx context.Context, evt OrderCompleted) {
	if b == nil || b.pubsub == nil {
		return
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		b.logError(ctx, "events.order_completed.encode_failed", err)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("order_id", evt.OrderID)
	if err := b.pubsub.Publish(TopicOrderCompleted, msg); err != nil {
		b.logError(ctx, "events.order_completed.publish_failed", err)
		return
	}

	if b.logg != nil {
		logCtx := b.logg.WithFields(ctx, map[string]any{
			"order_id":      evt.OrderID,
			"product_count": len(evt.ProductIDs),
		})
		b.logg.Debug(logCtx, "events.order_completed.published")
	}
}

// SubscribeOrderCompleted registers handler until the returned subscription is closed.
// The subscription is detached from ctx cancellation but keeps its values for logging.
func (b *Bus) SubscribeOrderCompleted(ctx context.Context, name string, handler OrderCompletedHandler) (*Subscription, error) {
	if b == nil || b.pubsub == nil {
		return nil, errors.New("event bus not initialized")
	}
	if handler == nil {
		return nil, errors.New("order completed handler is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	subCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	messages, err := b.pubsub.Subscribe(subCtx, TopicOrderCompleted)
	if err != nil {
		cancel()
		return nil, err
	}

	sub := &Subscription{
		name:   name,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go sub.run(subCtx, messages, handler, b.logg)
	return sub, nil
}

// Close stops delivery to every subscriber.
func (b *Bus) Close() error {
	if b == nil || b.pubsub == nil {
		return nil
	}
	return b.pubsub.Close()
}

func (b *Bus) logError(ctx context.Context, msg string, err error) {
	if b.logg == nil {
		return
	}
	b.logg.Error(ctx, msg, err)
}

// Subscription is one registered listener.
type Subscription struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Close unsubscribes. It is safe to call more than once and from inside the handler.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}

// Done is closed once the listener goroutine has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) run(ctx context.Context, messages <-chan *message.Message, handler OrderCompletedHandler, logg *logger.Logger) {
	defer close(s.done)
	for msg := range messages {
		if ctx.Err() != nil {
			msg.Ack()
			continue
		}
		var evt OrderCompleted
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			if logg != nil {
				logg.Warn(logg.WithField(ctx, "subscriber", s.name), "events.order_completed.decode_failed")
			}
			msg.Ack()
			continue
		}
		if err := handler(ctx, evt); err != nil && logg != nil {
			logCtx := logg.WithFields(ctx, map[string]any{
				"subscriber": s.name,
				"order_id":   evt.OrderID,
				"error":      err.Error(),
			})
			logg.Warn(logCtx, "events.order_completed.handler_failed")
		}
		msg.Ack()
	}
}
