package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"shule_transit/internal/models"
)

func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return NewGormStore(gdb), mock
}

func TestGormStoreGetTripNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT .* FROM "trip_schedules"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetTrip(context.Background(), 42)
	var notFound NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.EqualValues(t, 42, notFound.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreApplyChangeGuardsOnPreviousValues(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`UPDATE "trip_schedules" SET .* WHERE id = .* AND admin_scheduling_enabled = .* AND booking_enabled = .* AND status = .* AND approved_at IS NULL AND disabled_at IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	approvedAt := time.Now()
	prev := Change{Status: models.TripStatusScheduled}
	next := Change{AdminSchedulingEnabled: true, Status: models.TripStatusScheduled, ApprovedAt: &approvedAt}
	applied, err := store.ApplyChange(context.Background(), 7, prev, next)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreApplyChangeGuardMiss(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`UPDATE "trip_schedules" SET .* approved_at IS NOT NULL`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	approvedAt := time.Now()
	prev := Change{AdminSchedulingEnabled: true, Status: models.TripStatusScheduled, ApprovedAt: &approvedAt}
	applied, err := store.ApplyChange(context.Background(), 7, prev, Change{Status: models.TripStatusScheduled, ApprovedAt: &approvedAt})
	require.NoError(t, err)
	assert.False(t, applied, "a lost guard reports no rows, never an error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreTryReserveSeats(t *testing.T) {
	store, mock := newMockStore(t)
	// RETURNING turns the guarded UPDATE into a query: the new booked total
	// comes back from the increment itself, not a separate read.
	mock.ExpectQuery(`UPDATE "trip_schedules" SET "booked_seats"=booked_seats \+ .* WHERE id = .* AND booking_enabled = .* AND booked_seats \+ .* <= total_seats AND \(booking_deadline IS NULL OR booking_deadline > .*\).* RETURNING "booked_seats"`).
		WillReturnRows(sqlmock.NewRows([]string{"booked_seats"}).AddRow(12))

	booked, ok, err := store.TryReserveSeats(context.Background(), 7, 2, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 12, booked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreTryReserveSeatsGuardMiss(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`UPDATE "trip_schedules" SET "booked_seats"=booked_seats \+`).
		WillReturnRows(sqlmock.NewRows([]string{"booked_seats"}))

	booked, ok, err := store.TryReserveSeats(context.Background(), 7, 2, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, booked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreReleaseSeatsFloorsAtZero(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`UPDATE "trip_schedules" SET "booked_seats"=GREATEST\(booked_seats - .*, 0\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.ReleaseSeats(context.Background(), 7, 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreDeleteTripHardDeletes(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`DELETE FROM "trip_schedules"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.DeleteTrip(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreDeleteTripMissing(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`DELETE FROM "trip_schedules"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteTrip(context.Background(), 9999)
	var notFound NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreCancelBookingOnlyConfirmed(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`UPDATE "bookings" SET .* WHERE id = .* AND status = .*`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := store.CancelBooking(context.Background(), 31)
	require.NoError(t, err)
	assert.False(t, ok, "an already-cancelled booking is not cancelled again")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreCountBookings(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := store.CountBookings(context.Background(), 7)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
