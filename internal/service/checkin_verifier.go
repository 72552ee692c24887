package service

import (
	"context"

	"github.com/fill11/match-service/internal/geo"
	"github.com/fill11/match-service/internal/models"
	"github.com/fill11/match-service/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CheckinResult struct {
	Checkin         *models.GroundCheckin
	Success         bool
	DistanceMeters  float64
	ShortfallMeters float64 // 0 on success
	RadiusMeters    float64
	GroundSecured   bool // ground status moved to SECURED by this attempt
}

type CheckinVerifier interface {
	AttemptCheckin(ctx context.Context, matchID, userID uuid.UUID, lat, lon float64) (*CheckinResult, error)
}

type checkinVerifier struct {
	checkinRepo  repository.CheckinRepository
	matchRepo    repository.MatchRepository
	venueRepo    repository.VenueRepository
	radiusMeters float64
	uniqueOnly   bool
	log          *zap.Logger
}

// NewCheckinVerifier accepts attempts strictly closer than radiusMeters. When
// uniquePerUser is set a second attempt for the same match is rejected.
func NewCheckinVerifier(
	checkinRepo repository.CheckinRepository,
	matchRepo repository.MatchRepository,
	venueRepo repository.VenueRepository,
	radiusMeters float64,
	uniquePerUser bool,
	log *zap.Logger,
) CheckinVerifier {
	return &checkinVerifier{
		checkinRepo:  checkinRepo,
		matchRepo:    matchRepo,
		venueRepo:    venueRepo,
		radiusMeters: radiusMeters,
		uniqueOnly:   uniquePerUser,
		log:          log,
	}
}

func (v *checkinVerifier) AttemptCheckin(ctx context.Context, matchID, userID uuid.UUID, lat, lon float64) (*CheckinResult, error) {
	if err := geo.ValidateCoordinate(lat, lon); err != nil {
		return nil, err
	}

	var result *CheckinResult

	err := v.matchRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the match; ground status may change below
		match, err := v.matchRepo.FindByIDForUpdate(ctx, tx, matchID)
		if err != nil {
			return notFound(err, ErrMatchNotFound)
		}
		if match.IsCancelled {
			return ErrMatchAlreadyCancelled
		}

		// 2. Resolve venue coordinates
		venue, err := v.venueRepo.FindByID(ctx, tx, match.VenueID)
		if err != nil {
			return notFound(err, ErrVenueNotFound)
		}
		venueLat, venueLon, ok := venue.Coordinates()
		if !ok {
			return ErrVenueCoordinatesMissing
		}

		if v.uniqueOnly {
			n, err := v.checkinRepo.CountByMatchAndUser(ctx, tx, matchID, userID)
			if err != nil {
				return err
			}
			if n > 0 {
				return ErrDuplicateCheckin
			}
		}

		// 3. Measure
		distance, err := geo.DistanceMeters(lat, lon, venueLat, venueLon)
		if err != nil {
			return err
		}
		success := distance < v.radiusMeters

		// 4. Every attempt is recorded
		checkin := &models.GroundCheckin{
			MatchID:        matchID,
			UserID:         userID,
			UserLat:        lat,
			UserLong:       lon,
			DistanceMeters: distance,
			IsSuccessful:   success,
		}
		if err := v.checkinRepo.Create(ctx, tx, checkin); err != nil {
			return err
		}

		result = &CheckinResult{
			Checkin:        checkin,
			Success:        success,
			DistanceMeters: distance,
			RadiusMeters:   v.radiusMeters,
		}
		if !success {
			result.ShortfallMeters = distance - v.radiusMeters
			return nil
		}

		// 5. Secure the ground, never downgrading BOOKED
		if models.CanAdvanceGround(match.GroundStatus, models.GroundStatusSecured) {
			if err := v.matchRepo.Update(ctx, tx, matchID, map[string]any{
				"ground_status": models.GroundStatusSecured,
			}); err != nil {
				return err
			}
			result.GroundSecured = true
		}

		_, err = v.matchRepo.MarkPlayerCheckedIn(ctx, tx, matchID, userID, lat, lon)
		return err
	})
	if err != nil {
		return nil, err
	}

	v.log.Info("check-in attempt",
		zap.String("match_id", matchID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("distance_meters", result.DistanceMeters),
		zap.Bool("success", result.Success),
	)
	return result, nil
}
