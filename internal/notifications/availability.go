package notifications

import (
	"context"
	"fmt"

	"github.com/evenfouryou/Event-Four-You-2026-sub000/internal/shared/config"

	pubnub "github.com/pubnub/go/v7"
)

// AvailabilityBroadcaster pushes sector availability snapshots to PubNub so
// box-office screens and floor plans refresh without polling.
type AvailabilityBroadcaster struct {
	pubnub        *pubnub.PubNub
	channelPrefix string
}

func NewAvailabilityBroadcaster(cfg config.PubNubConfig) *AvailabilityBroadcaster {
	pnConfig := pubnub.NewConfigWithUserId(pubnub.UserId(cfg.UserID))
	pnConfig.PublishKey = cfg.PublishKey
	pnConfig.SubscribeKey = cfg.SubscribeKey
	pnConfig.SecretKey = cfg.SecretKey

	return &AvailabilityBroadcaster{
		pubnub:        pubnub.NewPubNub(pnConfig),
		channelPrefix: cfg.ChannelPrefix,
	}
}

func (b *AvailabilityBroadcaster) Channel(sectorID string) string {
	return fmt.Sprintf("%s-%s", b.channelPrefix, sectorID)
}

func (b *AvailabilityBroadcaster) PublishAvailability(ctx context.Context, sectorID string, payload interface{}) error {
	_, status, err := b.pubnub.Publish().
		Channel(b.Channel(sectorID)).
		Message(map[string]any{
			"type":      "sector_availability",
			"sector_id": sectorID,
			"data":      payload,
		}).
		Execute()
	if err != nil {
		return fmt.Errorf("pubnub publish failed (status %d): %w", status.StatusCode, err)
	}
	return nil
}
