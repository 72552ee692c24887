package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fill11/match-service/internal/events"
	"github.com/fill11/match-service/internal/models"
	"github.com/fill11/match-service/internal/repository"
	"github.com/fill11/match-service/pkg/database"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	venueLat = 17.4485
	venueLon = 78.3908
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection: concurrent transactions queue up like row locks
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	db          *gorm.DB
	matchRepo   repository.MatchRepository
	venueRepo   repository.VenueRepository
	vacancyRepo repository.VacancyRepository
	escrowRepo  repository.EscrowRepository
	checkinRepo repository.CheckinRepository
	statsRepo   repository.UserStatsRepository

	ledger   VacancyLedger
	escrow   EscrowEngine
	verifier CheckinVerifier
	pub      *recordingPublisher
	svc      *matchService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	log := zap.NewNop()

	f := &fixture{
		db:          db,
		matchRepo:   repository.NewMatchRepository(db),
		venueRepo:   repository.NewVenueRepository(db),
		vacancyRepo: repository.NewVacancyRepository(db),
		escrowRepo:  repository.NewEscrowRepository(db),
		checkinRepo: repository.NewCheckinRepository(db),
		statsRepo:   repository.NewUserStatsRepository(db),
		pub:         &recordingPublisher{},
	}
	f.ledger = NewVacancyLedger(f.vacancyRepo, f.matchRepo, log)
	f.escrow = NewEscrowEngine(f.escrowRepo, log)
	f.verifier = NewCheckinVerifier(f.checkinRepo, f.matchRepo, f.venueRepo, 50, false, log)
	f.svc = f.newService(MatchServiceDeps{OrderFallback: true})
	return f
}

// newService fills repository and component deps not set in deps.
func (f *fixture) newService(deps MatchServiceDeps) *matchService {
	deps.MatchRepo = f.matchRepo
	deps.VenueRepo = f.venueRepo
	deps.VacancyRepo = f.vacancyRepo
	deps.EscrowRepo = f.escrowRepo
	deps.CheckinRepo = f.checkinRepo
	deps.ScorecardRepo = repository.NewScorecardRepository(f.db)
	deps.StatsRepo = f.statsRepo
	if deps.Ledger == nil {
		deps.Ledger = f.ledger
	}
	if deps.Escrow == nil {
		deps.Escrow = f.escrow
	}
	if deps.Verifier == nil {
		deps.Verifier = f.verifier
	}
	if deps.Publisher == nil {
		deps.Publisher = f.pub
	}
	return NewMatchService(deps).(*matchService)
}

func (f *fixture) seedVenue(t *testing.T, withCoords bool) *models.Venue {
	t.Helper()
	v := &models.Venue{
		Name:           "Gachibowli Stadium",
		AvgCostPerHour: decimal.NewFromInt(1500),
		IsVerified:     true,
	}
	if withCoords {
		lat, lon := venueLat, venueLon
		v.GPSLat, v.GPSLong = &lat, &lon
	}
	require.NoError(t, f.db.Create(v).Error)
	return v
}

func (f *fixture) seedMatch(t *testing.T, captainID uuid.UUID, venue *models.Venue, maxJoin int) *models.Match {
	t.Helper()
	start := time.Now().Add(24 * time.Hour)
	m := &models.Match{
		CaptainID:      captainID,
		VenueID:        venue.ID,
		StartTime:      start,
		EndTime:        start.Add(3 * time.Hour),
		TotalSpots:     maxJoin,
		MaxJoinAllowed: maxJoin,
		PricePerPlayer: decimal.NewFromInt(200),
		Status:         models.MatchStatusPending,
		GroundStatus:   models.GroundStatusPending,
	}
	require.NoError(t, f.db.Omit("Venue", "Vacancies").Create(m).Error)
	return m
}

func (f *fixture) seedVacancy(t *testing.T, match *models.Match, countNeeded int, cost int64) *models.Vacancy {
	t.Helper()
	v := &models.Vacancy{
		MatchID:     match.ID,
		Role:        models.RoleAny,
		CountNeeded: countNeeded,
		CostPerHead: decimal.NewFromInt(cost),
		Status:      models.VacancyStatusOpen,
	}
	require.NoError(t, f.db.Create(v).Error)
	return v
}

func (f *fixture) reloadVacancy(t *testing.T, id uuid.UUID) models.Vacancy {
	t.Helper()
	var v models.Vacancy
	require.NoError(t, f.db.First(&v, "id = ?", id).Error)
	return v
}

func (f *fixture) reloadMatch(t *testing.T, id uuid.UUID) models.Match {
	t.Helper()
	var m models.Match
	require.NoError(t, f.db.First(&m, "id = ?", id).Error)
	return m
}

func (f *fixture) escrowsFor(t *testing.T, matchID uuid.UUID) []models.EscrowTransaction {
	t.Helper()
	var out []models.EscrowTransaction
	require.NoError(t, f.db.Where("match_id = ?", matchID).Find(&out).Error)
	return out
}

var errInjected = errors.New("injected failure")
