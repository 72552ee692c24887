package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fill11/match-service/internal/events"
	"github.com/fill11/match-service/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubOrders struct {
	id    string
	err   error
	calls int
}

func (s *stubOrders) CreateOrder(context.Context, decimal.Decimal, string) (string, error) {
	s.calls++
	return s.id, s.err
}

// failingExpiryLedger breaks cancellation after the refunds have been written.
type failingExpiryLedger struct {
	VacancyLedger
}

func (failingExpiryLedger) ExpireAllForMatch(context.Context, *gorm.DB, uuid.UUID) (int64, error) {
	return 0, errInjected
}

func TestJoin_ExampleScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	match := f.seedMatch(t, uuid.New(), f.seedVenue(t, true), 20)
	vacancy := f.seedVacancy(t, match, 1, 200)
	userA, userB := uuid.New(), uuid.New()

	res, err := f.svc.Join(ctx, match.ID, userA, vacancy.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Vacancy.FilledCount)
	assert.Equal(t, models.VacancyStatusFilled, res.Vacancy.Status)
	assert.Equal(t, 0, res.SlotsRemaining)
	assert.Equal(t, models.EscrowStatusHeld, res.Escrow.Status)
	assert.True(t, decimal.NewFromInt(200).Equal(res.Escrow.Amount))
	assert.True(t, strings.HasPrefix(res.OrderID, "local_"))

	_, err = f.svc.Join(ctx, match.ID, userB, vacancy.ID)
	assert.ErrorIs(t, err, ErrVacancyNotOpen)

	stored := f.reloadVacancy(t, vacancy.ID)
	assert.Equal(t, 1, stored.FilledCount)
	assert.Equal(t, models.VacancyStatusFilled, stored.Status)
	assert.Equal(t, 1, f.reloadMatch(t, match.ID).SpotsFilled)
	assert.Len(t, f.escrowsFor(t, match.ID), 1)
	assert.Equal(t, []string{events.EventMatchJoined}, f.pub.types())
}

func TestJoin_AlreadyJoinedRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	match := f.seedMatch(t, uuid.New(), f.seedVenue(t, true), 20)
	first := f.seedVacancy(t, match, 2, 200)
	second := f.seedVacancy(t, match, 2, 300)
	user := uuid.New()

	_, err := f.svc.Join(ctx, match.ID, user, first.ID)
	require.NoError(t, err)

	_, err = f.svc.Join(ctx, match.ID, user, second.ID)
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	// slot claim and spots_filled increment were undone
	assert.Equal(t, 0, f.reloadVacancy(t, second.ID).FilledCount)
	assert.Equal(t, 1, f.reloadMatch(t, match.ID).SpotsFilled)
	assert.Len(t, f.escrowsFor(t, match.ID), 1)
}

func TestJoin_OverbookingCeiling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	match := f.seedMatch(t, uuid.New(), f.seedVenue(t, true), 1)
	vacancy := f.seedVacancy(t, match, 3, 200)

	_, err := f.svc.Join(ctx, match.ID, uuid.New(), vacancy.ID)
	require.NoError(t, err)

	_, err = f.svc.Join(ctx, match.ID, uuid.New(), vacancy.ID)
	assert.ErrorIs(t, err, ErrMatchFull)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 1, f.reloadVacancy(t, vacancy.ID).FilledCount)
}

func TestJoin_ConcurrentPlayers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	match := f.seedMatch(t, uuid.New(), f.seedVenue(t, true), 50)
	vacancy := f.seedVacancy(t, match, 3, 200)

	const players = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < players; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Join(ctx, match.ID, uuid.New(), vacancy.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			assert.ErrorIs(t, err, ErrCapacityExceeded)
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, successes)
	assert.Equal(t, 3, f.reloadMatch(t, match.ID).SpotsFilled)
	assert.Len(t, f.escrowsFor(t, match.ID), 3)
}

func TestJoin_NotJoinable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	captain := uuid.New()
	match := f.seedMatch(t, captain, f.seedVenue(t, true), 20)
	vacancy := f.seedVacancy(t, match, 2, 200)
	_, err := f.svc.Start(ctx, match.ID, captain)
	require.NoError(t, err)

	_, err = f.svc.Join(ctx, match.ID, uuid.New(), vacancy.ID)

	assert.ErrorIs(t, err, ErrMatchNotJoinable)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestJoin_UnknownVacancy(t *testing.T) {
	f := newFixture(t)
	orders := &stubOrders{id: "order_1"}
	svc := f.newService(MatchServiceDeps{Orders: orders, OrderFallback: true})
	match := f.seedMatch(t, uuid.New(), f.seedVenue(t, true), 20)

	_, err := svc.Join(context.Background(), match.ID, uuid.New(), uuid.New())

	assert.ErrorIs(t, err, ErrVacancyNotFound)
	assert.Zero(t, orders.calls)
}

func TestJoin_PaymentOrderPolicy(t *testing.T) {
	gatewayDown := errors.New("gateway unreachable")

	t.Run("gateway order id is stored", func(t *testing.T) {
		f := newFixture(t)
		svc := f.newService(MatchServiceDeps{Orders: &stubOrders{id: "order_abc"}, OrderFallback: false})
		match := f.seedMatch(t, uuid.New(), f.seedVenue(t, true), 20)
		vacancy := f.seedVacancy(t, match, 2, 200)

		res, err := svc.Join(context.Background(), match.ID, uuid.New(), vacancy.ID)
		require.NoError(t, err)
		assert.Equal(t, "order_abc", res.OrderID)
		assert.Equal(t, "order_abc", res.Escrow.GatewayOrderID)
	})

	t.Run("fallback uses placeholder", func(t *testing.T) {
		f := newFixture(t)
		svc := f.newService(MatchServiceDeps{Orders: &stubOrders{err: gatewayDown}, OrderFallback: true})
		match := f.seedMatch(t, uuid.New(), f.seedVenue(t, true), 20)
		vacancy := f.seedVacancy(t, match, 2, 200)

		res, err := svc.Join(context.Background(), match.ID, uuid.New(), vacancy.ID)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(res.OrderID, "local_"))
	})

	t.Run("strict mode rejects join", func(t *testing.T) {
		f := newFixture(t)
		svc := f.newService(MatchServiceDeps{Orders: &stubOrders{err: gatewayDown}, OrderFallback: false})
		match := f.seedMatch(t, uuid.New(), f.seedVenue(t, true), 20)
		vacancy := f.seedVacancy(t, match, 2, 200)

		_, err := svc.Join(context.Background(), match.ID, uuid.New(), vacancy.ID)
		assert.ErrorIs(t, err, ErrPaymentOrderFailed)
		assert.Equal(t, 0, f.reloadVacancy(t, vacancy.ID).FilledCount)
		assert.Empty(t, f.escrowsFor(t, match.ID))
	})
}

func joinPlayers(t *testing.T, f *fixture, match *models.Match, vacancy *models.Vacancy, n int) []uuid.UUID {
	t.Helper()
	users := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		u := uuid.New()
		_, err := f.svc.Join(context.Background(), match.ID, u, vacancy.ID)
		require.NoError(t, err)
		users = append(users, u)
	}
	return users
}

func TestCancel_RefundsAndExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	captain := uuid.New()
	match := f.seedMatch(t, captain, f.seedVenue(t, true), 20)
	vacancy := f.seedVacancy(t, match, 3, 200)
	spare := f.seedVacancy(t, match, 2, 200)
	joinPlayers(t, f, match, vacancy, 3)

	res, err := f.svc.Cancel(ctx, match.ID, captain)

	require.NoError(t, err)
	assert.Equal(t, int64(3), res.RefundsProcessed)
	assert.Equal(t, int64(2), res.VacanciesExpired)
	for _, e := range f.escrowsFor(t, match.ID) {
		assert.Equal(t, models.EscrowStatusRefunded, e.Status)
		assert.NotNil(t, e.RefundedAt)
	}
	assert.Equal(t, models.VacancyStatusExpired, f.reloadVacancy(t, vacancy.ID).Status)
	assert.Equal(t, models.VacancyStatusExpired, f.reloadVacancy(t, spare.ID).Status)

	stored := f.reloadMatch(t, match.ID)
	assert.True(t, stored.IsCancelled)
	assert.Equal(t, models.MatchStatusCancelled, stored.Status)
	assert.Contains(t, f.pub.types(), events.EventMatchCancelled)

	_, err = f.svc.Cancel(ctx, match.ID, captain)
	assert.ErrorIs(t, err, ErrMatchAlreadyCancelled)
}

func TestCancel_RollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	captain := uuid.New()
	match := f.seedMatch(t, captain, f.seedVenue(t, true), 20)
	vacancy := f.seedVacancy(t, match, 3, 200)
	joinPlayers(t, f, match, vacancy, 3)

	svc := f.newService(MatchServiceDeps{Ledger: failingExpiryLedger{f.ledger}, OrderFallback: true})
	_, err := svc.Cancel(context.Background(), match.ID, captain)

	assert.ErrorIs(t, err, errInjected)
	escrows := f.escrowsFor(t, match.ID)
	require.Len(t, escrows, 3)
	for _, e := range escrows {
		assert.Equal(t, models.EscrowStatusHeld, e.Status)
		assert.Nil(t, e.RefundedAt)
	}
	stored := f.reloadMatch(t, match.ID)
	assert.False(t, stored.IsCancelled)
	assert.Equal(t, models.MatchStatusPending, stored.Status)
	assert.Equal(t, models.VacancyStatusFilled, f.reloadVacancy(t, vacancy.ID).Status)
}

func TestCancel_Guards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	captain := uuid.New()
	match := f.seedMatch(t, captain, f.seedVenue(t, true), 20)

	_, err := f.svc.Cancel(ctx, match.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotCaptain)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Cancel(ctx, uuid.New(), captain)
	assert.ErrorIs(t, err, ErrMatchNotFound)

	// at start time is already too late
	start := f.reloadMatch(t, match.ID).StartTime
	f.svc.now = func() time.Time { return start }
	_, err = f.svc.Cancel(ctx, match.ID, captain)
	assert.ErrorIs(t, err, ErrMatchAlreadyStarted)
	assert.False(t, f.reloadMatch(t, match.ID).IsCancelled)
}

func TestSubmitScorecard_ReleasesAndRecordsStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	captain := uuid.New()
	match := f.seedMatch(t, captain, f.seedVenue(t, true), 20)
	vacancy := f.seedVacancy(t, match, 2, 200)
	players := joinPlayers(t, f, match, vacancy, 2)
	_, err := f.svc.Confirm(ctx, match.ID, captain)
	require.NoError(t, err)

	in := ScorecardInput{
		WinningTeamName: "Hyderabad Hawks",
		SummaryText:     "won by 12 runs",
		PlayerStats: []PlayerStatInput{
			{UserID: players[0], Runs: 45, Wickets: 1, Catches: 2},
			{UserID: players[1], Runs: 12, Wickets: 3},
		},
	}
	res, err := f.svc.SubmitScorecard(ctx, match.ID, captain, in)

	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Released)
	for _, e := range f.escrowsFor(t, match.ID) {
		assert.Equal(t, models.EscrowStatusReleased, e.Status)
	}
	assert.Equal(t, models.MatchStatusCompleted, f.reloadMatch(t, match.ID).Status)

	stats, err := f.statsRepo.FindByUserID(ctx, players[0])
	require.NoError(t, err)
	assert.Equal(t, 45, stats.TotalRuns)
	assert.Equal(t, 1, stats.TotalWickets)
	assert.Equal(t, 1, stats.MatchesPlayed)
	assert.Contains(t, f.pub.types(), events.EventMatchCompleted)

	_, err = f.svc.SubmitScorecard(ctx, match.ID, captain, in)
	assert.ErrorIs(t, err, ErrScorecardExists)
	assert.ErrorIs(t, err, ErrDuplicateClaim)
}

func TestSubmitScorecard_AccumulatesAcrossMatches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	captain, player := uuid.New(), uuid.New()
	venue := f.seedVenue(t, true)

	for _, runs := range []int{30, 20} {
		match := f.seedMatch(t, captain, venue, 20)
		_, err := f.svc.Confirm(ctx, match.ID, captain)
		require.NoError(t, err)
		_, err = f.svc.SubmitScorecard(ctx, match.ID, captain, ScorecardInput{
			PlayerStats: []PlayerStatInput{{UserID: player, Runs: runs, Wickets: 1}},
		})
		require.NoError(t, err)
	}

	stats, err := f.statsRepo.FindByUserID(ctx, player)
	require.NoError(t, err)
	assert.Equal(t, 50, stats.TotalRuns)
	assert.Equal(t, 2, stats.TotalWickets)
	assert.Equal(t, 2, stats.MatchesPlayed)
}

func TestSubmitScorecard_Guards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	captain := uuid.New()
	match := f.seedMatch(t, captain, f.seedVenue(t, true), 20)
	dup := uuid.New()

	tests := []struct {
		name    string
		actor   uuid.UUID
		input   ScorecardInput
		wantErr error
	}{
		{"not captain", uuid.New(), ScorecardInput{}, ErrForbidden},
		{"pending match cannot complete", captain, ScorecardInput{}, ErrInvalidState},
		{"negative runs", captain, ScorecardInput{PlayerStats: []PlayerStatInput{{UserID: uuid.New(), Runs: -1}}}, ErrInvalidArgument},
		{"duplicate player", captain, ScorecardInput{PlayerStats: []PlayerStatInput{{UserID: dup}, {UserID: dup}}}, ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SubmitScorecard(ctx, match.ID, tt.actor, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Equal(t, models.MatchStatusPending, f.reloadMatch(t, match.ID).Status)
}

func TestMatchTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	captain := uuid.New()
	match := f.seedMatch(t, captain, f.seedVenue(t, true), 20)

	_, err := f.svc.Confirm(ctx, match.ID, uuid.New())
	assert.ErrorIs(t, err, ErrForbidden)

	m, err := f.svc.Confirm(ctx, match.ID, captain)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusConfirmed, m.Status)

	_, err = f.svc.Confirm(ctx, match.ID, captain)
	assert.ErrorIs(t, err, ErrInvalidMatchTransition)

	m, err = f.svc.Start(ctx, match.ID, captain)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusOngoing, m.Status)

	_, err = f.svc.Start(ctx, match.ID, captain)
	assert.ErrorIs(t, err, ErrInvalidMatchTransition)
}

func TestCancel_StartedEarly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	captain := uuid.New()
	match := f.seedMatch(t, captain, f.seedVenue(t, true), 20)
	vacancy := f.seedVacancy(t, match, 2, 200)
	joinPlayers(t, f, match, vacancy, 2)

	_, err := f.svc.Start(ctx, match.ID, captain)
	require.NoError(t, err)

	// started ahead of schedule, start_time still in the future
	res, err := f.svc.Cancel(ctx, match.ID, captain)

	require.NoError(t, err)
	assert.Equal(t, int64(2), res.RefundsProcessed)
	assert.Equal(t, int64(1), res.VacanciesExpired)
	assert.Equal(t, models.MatchStatusCancelled, f.reloadMatch(t, match.ID).Status)
	for _, e := range f.escrowsFor(t, match.ID) {
		assert.Equal(t, models.EscrowStatusRefunded, e.Status)
	}
}

func TestCancel_OngoingAfterStartTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	captain := uuid.New()
	match := f.seedMatch(t, captain, f.seedVenue(t, true), 20)

	_, err := f.svc.Start(ctx, match.ID, captain)
	require.NoError(t, err)

	start := f.reloadMatch(t, match.ID).StartTime
	f.svc.now = func() time.Time { return start.Add(time.Minute) }

	_, err = f.svc.Cancel(ctx, match.ID, captain)
	assert.ErrorIs(t, err, ErrMatchAlreadyStarted)
	assert.Equal(t, models.MatchStatusOngoing, f.reloadMatch(t, match.ID).Status)
}

func TestCreateMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	venue := f.seedVenue(t, true)
	start := time.Now().Add(48 * time.Hour)

	valid := CreateMatchInput{
		CaptainID:      uuid.New(),
		VenueID:        venue.ID,
		StartTime:      start,
		EndTime:        start.Add(2 * time.Hour),
		TotalSpots:     16,
		PricePerPlayer: decimal.NewFromInt(250),
	}

	m, err := f.svc.CreateMatch(ctx, valid)
	require.NoError(t, err)
	assert.Equal(t, 16, m.MaxJoinAllowed)
	assert.Equal(t, models.MatchStatusPending, m.Status)
	assert.Equal(t, models.GroundStatusPending, m.GroundStatus)

	got, err := f.svc.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Venue)
	assert.Equal(t, venue.Name, got.Venue.Name)

	tests := []struct {
		name    string
		mutate  func(in *CreateMatchInput)
		wantErr error
	}{
		{"unknown venue", func(in *CreateMatchInput) { in.VenueID = uuid.New() }, ErrVenueNotFound},
		{"start in the past", func(in *CreateMatchInput) { in.StartTime = time.Now().Add(-time.Hour) }, ErrInvalidArgument},
		{"end before start", func(in *CreateMatchInput) { in.EndTime = in.StartTime.Add(-time.Minute) }, ErrInvalidArgument},
		{"ceiling below capacity", func(in *CreateMatchInput) { in.MaxJoinAllowed = 10 }, ErrInvalidArgument},
		{"no spots", func(in *CreateMatchInput) { in.TotalSpots = 0 }, ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := f.svc.CreateMatch(ctx, in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParticipation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	match := f.seedMatch(t, uuid.New(), f.seedVenue(t, true), 20)
	vacancy := f.seedVacancy(t, match, 2, 200)
	player := joinPlayers(t, f, match, vacancy, 1)[0]

	p, err := f.svc.Participation(ctx, match.ID, player)
	require.NoError(t, err)
	assert.True(t, p.IsParticipant)
	assert.False(t, p.HasCheckedIn)
	require.NotNil(t, p.EscrowStatus)
	assert.Equal(t, models.EscrowStatusHeld, *p.EscrowStatus)
	assert.True(t, decimal.NewFromInt(200).Equal(p.AmountHeld))

	res, err := f.svc.CheckIn(ctx, match.ID, player, venueLat, venueLon)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, f.pub.types(), events.EventGroundSecured)

	p, err = f.svc.Participation(ctx, match.ID, player)
	require.NoError(t, err)
	assert.True(t, p.HasCheckedIn)

	outsider, err := f.svc.Participation(ctx, match.ID, uuid.New())
	require.NoError(t, err)
	assert.False(t, outsider.IsParticipant)
	assert.Nil(t, outsider.EscrowStatus)
	assert.True(t, outsider.AmountHeld.IsZero())

	_, err = f.svc.Participation(ctx, uuid.New(), player)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestListMatches_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	venueA := f.seedVenue(t, true)
	venueB := f.seedVenue(t, true)
	now := time.Now()

	soon := f.seedMatch(t, uuid.New(), venueA, 20)
	later := f.seedMatch(t, uuid.New(), venueB, 20)
	past := f.seedMatch(t, uuid.New(), venueA, 20)
	cancelled := f.seedMatch(t, uuid.New(), venueA, 20)

	require.NoError(t, f.db.Model(&models.Match{}).Where("id = ?", soon.ID).
		Update("start_time", now.Add(2*time.Hour)).Error)
	require.NoError(t, f.db.Model(&models.Match{}).Where("id = ?", later.ID).
		Updates(map[string]any{"start_time": now.Add(72 * time.Hour), "ground_status": models.GroundStatusSecured}).Error)
	require.NoError(t, f.db.Model(&models.Match{}).Where("id = ?", past.ID).
		Update("start_time", now.Add(-48*time.Hour)).Error)
	require.NoError(t, f.db.Model(&models.Match{}).Where("id = ?", cancelled.ID).
		Updates(map[string]any{"is_cancelled": true, "status": models.MatchStatusCancelled}).Error)

	ids := func(ms []models.Match) []uuid.UUID {
		out := make([]uuid.UUID, len(ms))
		for i := range ms {
			out[i] = ms[i].ID
		}
		return out
	}
	secured := models.GroundStatusSecured

	tests := []struct {
		name string
		in   ListMatchesInput
		want []uuid.UUID
	}{
		{"all, newest start first", ListMatchesInput{}, []uuid.UUID{later.ID, cancelled.ID, soon.ID, past.ID}},
		{"upcoming skips past and cancelled", ListMatchesInput{Upcoming: true}, []uuid.UUID{later.ID, soon.ID}},
		{"by ground status", ListMatchesInput{GroundStatus: &secured}, []uuid.UUID{later.ID}},
		{"by venue", ListMatchesInput{Upcoming: true, VenueID: &venueA.ID}, []uuid.UUID{soon.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.ListMatches(ctx, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	unknown := models.GroundStatus("PAVED")
	_, err := f.svc.ListMatches(ctx, ListMatchesInput{GroundStatus: &unknown})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestLeaderboard_Ordering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	top, wicketTaker, runner := uuid.New(), uuid.New(), uuid.New()

	require.NoError(t, f.statsRepo.Increment(ctx, f.db, top, 90, 1))
	require.NoError(t, f.statsRepo.Increment(ctx, f.db, top, 30, 0))
	require.NoError(t, f.statsRepo.Increment(ctx, f.db, wicketTaker, 40, 5))
	require.NoError(t, f.statsRepo.Increment(ctx, f.db, runner, 40, 2))

	board, err := f.statsRepo.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, top, board[0].UserID)
	assert.Equal(t, 120, board[0].TotalRuns)
	assert.Equal(t, 2, board[0].MatchesPlayed)
	assert.Equal(t, wicketTaker, board[1].UserID)
	assert.Equal(t, runner, board[2].UserID)

	board, err = f.statsRepo.Leaderboard(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, board, 1)
}
