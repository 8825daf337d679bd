package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// SubscriberConfig configures a Subscriber.
type SubscriberConfig struct {
	ProjectID    string
	Subscription string

	// MaxOutstanding bounds unacknowledged messages held at once.
	// Default: 10
	MaxOutstanding int

	Dispatcher *Dispatcher
	Logger     zerolog.Logger
}

// Subscriber feeds job messages from a Pub/Sub subscription to a
// Dispatcher. Successful and unknown jobs are acked; failed or malformed
// ones are nacked for redelivery.
type Subscriber struct {
	client       *pubsub.Client
	sub          *pubsub.Subscriber
	subscription string
	dispatcher   *Dispatcher
	logger       zerolog.Logger
}

// NewSubscriber connects to Pub/Sub.
func NewSubscriber(ctx context.Context, cfg SubscriberConfig) (*Subscriber, error) {
	if cfg.Dispatcher == nil {
		return nil, errors.New("subscriber needs a dispatcher")
	}
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	if cfg.MaxOutstanding <= 0 {
		cfg.MaxOutstanding = 10
	}
	sub := client.Subscriber(cfg.Subscription)
	sub.ReceiveSettings.MaxOutstandingMessages = cfg.MaxOutstanding
	sub.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &Subscriber{
		client:       client,
		sub:          sub,
		subscription: cfg.Subscription,
		dispatcher:   cfg.Dispatcher,
		logger:       cfg.Logger.With().Str("subscription", cfg.Subscription).Logger(),
	}, nil
}

// Run receives messages until ctx is done.
func (s *Subscriber) Run(ctx context.Context) error {
	s.logger.Info().Strs("job_types", s.dispatcher.JobTypes()).Msg("pubsub subscriber started")
	return s.sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if s.handle(ctx, msg.ID, msg.Data) {
			msg.Ack()
		} else {
			msg.Nack()
		}
	})
}

// Close releases the Pub/Sub client.
func (s *Subscriber) Close() error {
	return s.client.Close()
}

// handle reports whether the message should be acked.
func (s *Subscriber) handle(ctx context.Context, id string, data []byte) bool {
	log := s.logger.With().Str("message_id", id).Logger()

	err := s.dispatcher.Dispatch(ctx, data)
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrUnknownJob):
		// Redelivery cannot help a job type this build does not know.
		log.Warn().Err(err).Msg("dropping message")
		return true
	default:
		log.Error().Err(err).Msg("job failed")
		return false
	}
}
