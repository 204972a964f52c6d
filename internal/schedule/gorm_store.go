package schedule

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shule_transit/internal/models"
)

// GormStore implements Store on the shared GORM handle. All guarded writes
// are single UPDATE statements whose WHERE clause carries the guard, so the
// database serializes concurrent writers on the same row.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) GetTrip(ctx context.Context, id uint) (models.TripSchedule, error) {
	var trip models.TripSchedule
	if err := s.DB.WithContext(ctx).First(&trip, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.TripSchedule{}, NotFoundError{Resource: "trip schedule", ID: id}
		}
		return models.TripSchedule{}, err
	}
	return trip, nil
}

func (s *GormStore) ListTrips(ctx context.Context, f TripFilter) ([]models.TripSchedule, error) {
	q := s.DB.WithContext(ctx).Model(&models.TripSchedule{})
	if f.RouteID != 0 {
		q = q.Where("route_id = ?", f.RouteID)
	}
	if f.DateFrom != nil {
		q = q.Where("schedule_date >= ?", truncateToDay(*f.DateFrom))
	}
	if f.DateTo != nil {
		q = q.Where("schedule_date <= ?", truncateToDay(*f.DateTo))
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Bookable {
		q = q.Where("booking_enabled = ?", true)
	}

	var trips []models.TripSchedule
	if err := q.Order("schedule_date, departure_time, id").Find(&trips).Error; err != nil {
		return nil, err
	}
	return trips, nil
}

func (s *GormStore) CreateTrip(ctx context.Context, t *models.TripSchedule) error {
	return s.DB.WithContext(ctx).Create(t).Error
}

// DeleteTrip removes the row outright. Deletion is reserved for trips no
// booking ever referenced, so there is nothing worth soft-deleting.
func (s *GormStore) DeleteTrip(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Unscoped().Delete(&models.TripSchedule{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return NotFoundError{Resource: "trip schedule", ID: id}
	}
	return nil
}

func (s *GormStore) ApplyChange(ctx context.Context, id uint, prev, next Change) (bool, error) {
	q := s.DB.WithContext(ctx).Model(&models.TripSchedule{}).
		Where("id = ? AND admin_scheduling_enabled = ? AND booking_enabled = ? AND status = ?",
			id, prev.AdminSchedulingEnabled, prev.BookingEnabled, prev.Status)
	if prev.ApprovedAt == nil {
		q = q.Where("approved_at IS NULL")
	} else {
		q = q.Where("approved_at IS NOT NULL")
	}
	if prev.DisabledAt == nil {
		q = q.Where("disabled_at IS NULL")
	} else {
		q = q.Where("disabled_at IS NOT NULL")
	}

	res := q.Updates(map[string]interface{}{
		"admin_scheduling_enabled": next.AdminSchedulingEnabled,
		"booking_enabled":          next.BookingEnabled,
		"status":                   next.Status,
		"approved_at":              next.ApprovedAt,
		"disabled_at":              next.DisabledAt,
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// TryReserveSeats reports the booked total straight from the guarded UPDATE
// via RETURNING, so the figure is the one this increment produced even when
// another reservation lands immediately after.
func (s *GormStore) TryReserveSeats(ctx context.Context, id uint, count int, now time.Time) (int, bool, error) {
	var trip models.TripSchedule
	res := s.DB.WithContext(ctx).Model(&trip).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "booked_seats"}}}).
		Where("id = ? AND booking_enabled = ? AND booked_seats + ? <= total_seats", id, true, count).
		Where("booking_deadline IS NULL OR booking_deadline > ?", now).
		UpdateColumn("booked_seats", gorm.Expr("booked_seats + ?", count))
	if res.Error != nil {
		return 0, false, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, false, nil
	}
	return trip.BookedSeats, true, nil
}

func (s *GormStore) ReleaseSeats(ctx context.Context, id uint, count int) error {
	return s.DB.WithContext(ctx).Model(&models.TripSchedule{}).
		Where("id = ?", id).
		UpdateColumn("booked_seats", gorm.Expr("GREATEST(booked_seats - ?, 0)", count)).
		Error
}

func (s *GormStore) CountBookings(ctx context.Context, scheduleID uint) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Booking{}).
		Where("schedule_id = ?", scheduleID).
		Count(&n).Error
	return n, err
}

func (s *GormStore) ConfirmedBookings(ctx context.Context, scheduleID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.DB.WithContext(ctx).
		Where("schedule_id = ? AND status = ?", scheduleID, models.BookingStatusConfirmed).
		Order("id").
		Find(&bookings).Error
	return bookings, err
}

func (s *GormStore) CancelBooking(ctx context.Context, bookingID uint) (bool, error) {
	res := s.DB.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, models.BookingStatusConfirmed).
		Update("status", models.BookingStatusCancelled)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	return s.DB.WithContext(ctx).Create(b).Error
}

func (s *GormStore) GetRoute(ctx context.Context, id uint) (models.Route, error) {
	var route models.Route
	if err := s.DB.WithContext(ctx).First(&route, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Route{}, NotFoundError{Resource: "route", ID: id}
		}
		return models.Route{}, err
	}
	return route, nil
}

func (s *GormStore) GetVehicle(ctx context.Context, id uint) (models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := s.DB.WithContext(ctx).First(&vehicle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Vehicle{}, NotFoundError{Resource: "vehicle", ID: id}
		}
		return models.Vehicle{}, err
	}
	return vehicle, nil
}
