package redis

import (
	"context"
	"encoding/json"
	"fmt"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskpulse/domain"
	"github.com/fastygo/taskpulse/usecase"
)

type notificationPublisher struct {
	client  *redislib.Client
	channel string
}

// NewNotificationPublisher fans notifications out over Redis pub/sub, one
// channel per recipient: "<channel>:<user_id>".
func NewNotificationPublisher(client *redislib.Client, channel string) usecase.NotificationPublisher {
	if channel == "" {
		channel = "notifications"
	}
	return &notificationPublisher{client: client, channel: channel}
}

func (p *notificationPublisher) Publish(ctx context.Context, notification *domain.Notification) error {
	if notification == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	return p.client.Publish(ctx, p.channel+":"+notification.UserID, payload).Err()
}
