package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wanty-app/wishfeed/internal/cache"
	"github.com/wanty-app/wishfeed/pkg/logger"
)

// Messenger is the narrow port to the chat platform. The chat layer decodes
// inbound intents into coordinator calls; the core only sends.
type Messenger interface {
	SendMessage(ctx context.Context, recipientID, text string, actions []string) error
	EditMessage(ctx context.Context, recipientID, messageID, text string, actions []string) error
}

// Notifier composes and delivers the aggregated like notification. Delivery
// failures never propagate: the ledger transaction that produced the events has
// already committed.
type Notifier struct {
	messenger Messenger
}

func NewNotifier(messenger Messenger) *Notifier { return &Notifier{messenger: messenger} }

// ShowWhoLikedAction is offered with every aggregated notification; tapping it
// maps to the reveal-contact intent.
const ShowWhoLikedAction = "show_who_liked"

// NotifyAggregated sends one message to the owner covering every pending
// event. Blocked recipients and transport errors are logged and swallowed.
func (n *Notifier) NotifyAggregated(ctx context.Context, ownerID string, events []cache.PendingEvent) {
	if len(events) == 0 {
		return
	}
	text := ComposeAggregated(events)
	err := n.messenger.SendMessage(ctx, ownerID, text, []string{ShowWhoLikedAction})
	switch {
	case err == nil:
	case errors.Is(err, ErrRecipientBlocked):
		logger.Warn("notification recipient blocked sender", zap.String("owner", ownerID))
	default:
		logger.Warn("aggregated notification delivery failed",
			zap.String("owner", ownerID), zap.Int("events", len(events)), zap.Error(err))
	}
}

// ComposeAggregated renders the batched message body: distinct actors, the
// wishes they liked.
func ComposeAggregated(events []cache.PendingEvent) string {
	actors := make([]string, 0, len(events))
	seenActor := map[string]bool{}
	wishes := make([]string, 0, len(events))
	seenWish := map[string]bool{}
	for _, ev := range events {
		if !seenActor[ev.ActorID] {
			seenActor[ev.ActorID] = true
			actors = append(actors, ev.ActorSummary)
		}
		if ev.WishName != "" && !seenWish[ev.WishID] {
			seenWish[ev.WishID] = true
			wishes = append(wishes, ev.WishName)
		}
	}
	var b strings.Builder
	if len(actors) == 1 {
		fmt.Fprintf(&b, "%s liked your wish", actors[0])
	} else {
		fmt.Fprintf(&b, "%d people liked your wishes: %s", len(actors), strings.Join(actors, ", "))
	}
	if len(wishes) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(wishes, ", "))
	}
	return b.String()
}
