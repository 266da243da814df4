package entity

import (
	"time"

	"github.com/enrollkit/enrollkit/internal/pkg/valueobject"
)

type CreateDeliveryLog struct {
	ID        int64
	SessionID string
	Channel   Channel
	Recipient string
	Status    DeliveryStatus
}

type UpdateDeliveryLog struct {
	ID               int64
	Status           DeliveryStatus
	ProviderResponse valueobject.JSONMap
	NextRetryAt      *time.Time
}
