package reservation_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/equipment-reservations/internal/apperr"
	"github.com/vasiliy-maslov/equipment-reservations/internal/db"
	"github.com/vasiliy-maslov/equipment-reservations/internal/db/dbtest"
	"github.com/vasiliy-maslov/equipment-reservations/internal/reservation"
)

var testDB *db.Postgres

func TestMain(m *testing.M) {
	testDB = dbtest.Connect()

	exitCode := m.Run()

	if testDB != nil {
		testDB.Close()
	}
	os.Exit(exitCode)
}

type repoFixture struct {
	repo        reservation.Repository
	userID      int64
	equipmentID int64
}

func newRepoFixture(t *testing.T) repoFixture {
	dbtest.Require(t, testDB)
	dbtest.Truncate(t, testDB)
	t.Cleanup(func() {
		dbtest.Truncate(t, testDB)
	})

	ctx := context.Background()
	var f repoFixture
	require.NoError(t, testDB.Pool.QueryRow(ctx, `INSERT INTO users (name) VALUES ('Researcher A') RETURNING id`).Scan(&f.userID))
	require.NoError(t, testDB.Pool.QueryRow(ctx, `INSERT INTO equipment (name) VALUES ('Microscope') RETURNING id`).Scan(&f.equipmentID))
	f.repo = reservation.NewRepository(testDB.Pool)
	return f
}

func (f repoFixture) reservation(start, end string) *reservation.Reservation {
	return &reservation.Reservation{UserID: f.userID, EquipmentID: f.equipmentID, StartDate: date(start), EndDate: date(end)}
}

func TestReservationRepository_SaveAndGet(t *testing.T) {
	f := newRepoFixture(t)
	ctx := context.Background()

	purpose := "imaging"
	r := f.reservation("2024-10-01", "2024-10-05")
	r.Purpose = &purpose
	require.NoError(t, f.repo.Save(ctx, r, nil))
	require.NotZero(t, r.ID)
	assert.Equal(t, "Researcher A", r.UserName)
	assert.Equal(t, "Microscope", r.EquipmentName)
	assert.False(t, r.CreatedAt.IsZero())

	found, err := f.repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, date("2024-10-01"), found.StartDate)
	assert.Equal(t, date("2024-10-05"), found.EndDate)
	require.NotNil(t, found.Purpose)
	assert.Equal(t, "imaging", *found.Purpose)

	found.EndDate = date("2024-10-07")
	require.NoError(t, f.repo.Save(ctx, found, nil))
	reloaded, err := f.repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, date("2024-10-07"), reloaded.EndDate)
}

func TestReservationRepository_GuardSeesOverlapping(t *testing.T) {
	f := newRepoFixture(t)
	ctx := context.Background()

	require.NoError(t, f.repo.Save(ctx, f.reservation("2024-10-01", "2024-10-05"), nil))
	require.NoError(t, f.repo.Save(ctx, f.reservation("2024-10-20", "2024-10-25"), nil))

	var seen []reservation.Reservation
	err := f.repo.Save(ctx, f.reservation("2024-10-05", "2024-10-06"), func(existing []reservation.Reservation) error {
		seen = existing
		return apperr.Conflict(&existing[0], "taken")
	})
	require.ErrorIs(t, err, apperr.ErrConflict)
	require.Len(t, seen, 1)
	assert.Equal(t, date("2024-10-01"), seen[0].StartDate)

	all, err := f.repo.List(ctx, reservation.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReservationRepository_ExclusionConstraint(t *testing.T) {
	f := newRepoFixture(t)
	ctx := context.Background()

	require.NoError(t, f.repo.Save(ctx, f.reservation("2024-10-01", "2024-10-05"), nil))
	err := f.repo.Save(ctx, f.reservation("2024-10-05", "2024-10-06"), nil)
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestReservationRepository_UnknownReferences(t *testing.T) {
	f := newRepoFixture(t)

	r := f.reservation("2024-10-01", "2024-10-05")
	r.UserID = 9999
	require.ErrorIs(t, f.repo.Save(context.Background(), r, nil), apperr.ErrNotFound)
}

func TestReservationRepository_ConcurrentCreates(t *testing.T) {
	f := newRepoFixture(t)
	ctx := context.Background()

	const writers = 5
	var (
		wg   sync.WaitGroup
		errs = make([]error, writers)
	)
	for i := 0; i < writers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := f.reservation("2024-10-01", "2024-10-05")
			errs[i] = f.repo.Save(ctx, r, func(existing []reservation.Reservation) error {
				return reservation.NoConflict(existing, 0)(ctx, &reservation.Candidate{EquipmentID: r.EquipmentID, Interval: r.Interval()})
			})
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		if !db.IsRetryable(err) {
			assert.ErrorIs(t, err, apperr.ErrConflict)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestReservationRepository_ListFilters(t *testing.T) {
	f := newRepoFixture(t)
	ctx := context.Background()

	var centrifugeID int64
	require.NoError(t, testDB.Pool.QueryRow(ctx, `INSERT INTO equipment (name) VALUES ('Centrifuge') RETURNING id`).Scan(&centrifugeID))
	onCentrifuge := f.reservation("2024-10-31", "2024-10-31")
	onCentrifuge.EquipmentID = centrifugeID

	for _, r := range []*reservation.Reservation{
		f.reservation("2024-09-25", "2024-10-01"),
		f.reservation("2024-10-15", "2024-11-05"),
		onCentrifuge,
	} {
		require.NoError(t, f.repo.Save(ctx, r, nil))
	}

	from, to := date("2024-10-01"), date("2024-10-31")

	view, err := f.repo.List(ctx, reservation.Filter{Mode: reservation.ViewRange, From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, view, 2)
	assert.Equal(t, date("2024-09-25"), view[0].StartDate)
	assert.Equal(t, date("2024-10-15"), view[1].StartDate)

	inclusive, err := f.repo.List(ctx, reservation.Filter{Mode: reservation.InclusiveRange, From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, inclusive, 3)

	byEquipment, err := f.repo.List(ctx, reservation.Filter{EquipmentIDs: []int64{f.equipmentID}})
	require.NoError(t, err)
	assert.Len(t, byEquipment, 2)
}

func TestReservationRepository_DeleteAndBounds(t *testing.T) {
	f := newRepoFixture(t)
	ctx := context.Background()

	bounds, err := f.repo.Bounds(ctx)
	require.NoError(t, err)
	assert.Nil(t, bounds)

	first := f.reservation("2024-10-01", "2024-10-05")
	require.NoError(t, f.repo.Save(ctx, first, nil))
	require.NoError(t, f.repo.Save(ctx, f.reservation("2024-12-01", "2024-12-24"), nil))

	bounds, err = f.repo.Bounds(ctx)
	require.NoError(t, err)
	require.NotNil(t, bounds)
	assert.Equal(t, span("2024-10-01", "2024-12-24"), *bounds)

	require.NoError(t, f.repo.Delete(ctx, first.ID))
	require.ErrorIs(t, f.repo.Delete(ctx, first.ID), apperr.ErrNotFound)
	_, err = f.repo.GetByID(ctx, first.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
