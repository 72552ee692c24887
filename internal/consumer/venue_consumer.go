package consumer

import (
	"context"
	"encoding/json"

	"github.com/fill11/match-service/internal/geo"
	"github.com/fill11/match-service/internal/models"
	"github.com/fill11/match-service/internal/repository"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// VenueConsumer keeps the local venue table in sync with the venue owner.
type VenueConsumer struct {
	repo repository.VenueRepository
	log  *zap.Logger
}

func NewVenueConsumer(repo repository.VenueRepository, log *zap.Logger) *VenueConsumer {
	return &VenueConsumer{repo: repo, log: log}
}

// Start listens for messages and upserts venues into the local DB.
func (vc *VenueConsumer) Start(ctx context.Context, msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			vc.handleMessage(ctx, msg)
		}
		vc.log.Info("venue consumer channel closed, stopping")
	}()
}

func (vc *VenueConsumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	var venue models.Venue
	if err := json.Unmarshal(msg.Body, &venue); err != nil {
		vc.log.Warn("failed to unmarshal venue", zap.Error(err))
		_ = msg.Nack(false, false)
		return
	}

	if venue.ID == uuid.Nil {
		vc.log.Warn("venue message without id", zap.String("routing_key", msg.RoutingKey))
		_ = msg.Nack(false, false)
		return
	}

	// Drop bad coordinates rather than poisoning check-in distance math.
	if lat, lon, ok := venue.Coordinates(); ok {
		if err := geo.ValidateCoordinate(lat, lon); err != nil {
			vc.log.Warn("venue has invalid coordinates, storing without them",
				zap.String("venue_id", venue.ID.String()), zap.Error(err))
			venue.GPSLat, venue.GPSLong = nil, nil
		}
	}

	if err := vc.repo.Upsert(ctx, &venue); err != nil {
		vc.log.Error("failed to upsert venue", zap.String("venue_id", venue.ID.String()), zap.Error(err))
		_ = msg.Nack(false, true) // requeue
		return
	}

	vc.log.Info("venue synced", zap.String("venue_id", venue.ID.String()), zap.String("name", venue.Name))
	_ = msg.Ack(false)
}
