package service

import (
	"context"
	"math"
	"sort"

	"github.com/fill11/match-service/internal/geo"
	"github.com/fill11/match-service/internal/models"
	"github.com/fill11/match-service/internal/repository"
)

const DefaultNearbyRadiusKm = 5.0

type NearbyVenue struct {
	models.Venue
	DistanceMeters float64 `json:"distance_meters"`
}

type VenueService interface {
	Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]NearbyVenue, error)
}

type venueService struct {
	repo repository.VenueRepository
}

func NewVenueService(repo repository.VenueRepository) VenueService {
	return &venueService{repo: repo}
}

// Nearby lists venues within radiusKm of the point, closest first.
func (s *venueService) Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]NearbyVenue, error) {
	if err := geo.ValidateCoordinate(lat, lon); err != nil {
		return nil, err
	}
	if radiusKm <= 0 || math.IsNaN(radiusKm) {
		return nil, invalidArgument("radius must be positive")
	}

	venues, err := s.repo.FindWithCoordinates(ctx)
	if err != nil {
		return nil, err
	}

	limit := radiusKm * 1000
	nearby := make([]NearbyVenue, 0)
	for _, v := range venues {
		vLat, vLon, ok := v.Coordinates()
		if !ok {
			continue
		}
		d, err := geo.DistanceMeters(lat, lon, vLat, vLon)
		if err != nil {
			// stored coordinates out of range; skip the venue
			continue
		}
		if d <= limit {
			nearby = append(nearby, NearbyVenue{Venue: v, DistanceMeters: math.Round(d*100) / 100})
		}
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceMeters < nearby[j].DistanceMeters
	})
	return nearby, nil
}
