package publisher

import (
	"context"

	"github.com/imec-int/monument-plwd-sub000/module/core/domain"
)

type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert *domain.WanderingAlert) error
}
