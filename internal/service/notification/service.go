package notification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/telecare/scheduler/internal/model"
	"github.com/telecare/scheduler/pkg/logger"
	"github.com/telecare/scheduler/pkg/messaging"
)

const channelNotifications = "notifications"

// Service is the notification sink. Delivery is one-way and
// best-effort: a failed publish is logged, never propagated to the
// booking path.
type Service interface {
	Notify(ctx context.Context, notification *model.Notification)
}

type service struct {
	broker messaging.Broker
	logger *logger.Logger
}

func NewService(broker messaging.Broker, logger *logger.Logger) Service {
	return &service{broker: broker, logger: logger}
}

func (s *service) Notify(ctx context.Context, notification *model.Notification) {
	notification.ID = uuid.New()
	notification.CreatedAt = time.Now()

	err := s.broker.Publish(ctx, channelNotifications, messaging.Message{
		Type:    string(notification.Type),
		Payload: notification,
	})
	if err != nil {
		s.logger.Error(err, "failed to publish notification", "notification_id", notification.ID)
	}
}

// Noop returns a sink that drops notifications, for tests and the
// embedded mode without a broker.
func Noop() Service {
	return noopService{}
}

type noopService struct{}

func (noopService) Notify(context.Context, *model.Notification) {}
