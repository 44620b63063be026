package service

import (
	"context"

	"gov-token-booking/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

// TokenNotifier fans a committed token change out to every listener: the
// local LiveFeed, the cross-instance Redis bridge, and the optional AMQP
// event stream. Fan-out failures are logged, never surfaced - the booking
// or status change already committed.
type TokenNotifier struct {
	feed   *LiveFeed
	bridge *FeedBridge
	events *EventPublisher
	log    *logrus.Logger
}

func NewTokenNotifier(feed *LiveFeed, bridge *FeedBridge, events *EventPublisher, log *logrus.Logger) *TokenNotifier {
	return &TokenNotifier{
		feed:   feed,
		bridge: bridge,
		events: events,
		log:    log,
	}
}

// TokenChanged must be called after the transaction commits, with the final
// state of the token.
func (n *TokenNotifier) TokenChanged(ctx context.Context, token *entity.Token, routingKey string) {
	n.feed.Publish(token)

	if n.bridge != nil {
		if err := n.bridge.Publish(ctx, token); err != nil {
			n.log.Warnf("Failed to publish token %s to feed bridge: %+v", token.ID, err)
		}
	}

	if err := n.events.Publish(ctx, routingKey, token); err != nil {
		n.log.Warnf("Failed to publish token %s event %s: %+v", token.ID, routingKey, err)
	}
}
