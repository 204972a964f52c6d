package schedule

import (
	"context"
	"fmt"
	"time"

	"shule_transit/internal/models"
)

// TripSummary is the per-trip slice of a calendar day.
type TripSummary struct {
	ScheduleID     uint              `json:"schedule_id"`
	RouteID        uint              `json:"route_id"`
	DepartureTime  string            `json:"departure_time"`
	ArrivalTime    string            `json:"arrival_time"`
	TotalSeats     int               `json:"total_seats"`
	BookedSeats    int               `json:"booked_seats"`
	AvailableSeats int               `json:"available_seats"`
	BookingEnabled bool              `json:"booking_enabled"`
	Status         models.TripStatus `json:"status"`
}

// CalendarDaySummary is the per-day planning rollup. One entry exists for
// every day of a requested range, empty days included, so a calendar grid's
// leading and trailing cells can be rendered directly.
type CalendarDaySummary struct {
	Date             string        `json:"date"`
	Trips            []TripSummary `json:"trips"`
	TotalSchedules   int           `json:"total_schedules"`
	EnabledSchedules int           `json:"enabled_schedules"`
	TotalBookings    int           `json:"total_bookings"`
	TotalCapacity    int           `json:"total_capacity"`
}

// RouteScheduleSummary is the per-route month-to-date rollup.
type RouteScheduleSummary struct {
	RouteID            uint                 `json:"route_id"`
	NextInstance       *models.TripSchedule `json:"next_instance,omitempty"`
	InstancesThisMonth int                  `json:"instances_this_month"`
	BookingsThisMonth  int                  `json:"bookings_this_month"`
}

// SummarizeRange produces one CalendarDaySummary per calendar day in the
// inclusive [start, end] range, optionally filtered to a single route.
func (e *Engine) SummarizeRange(ctx context.Context, start, end time.Time, routeID uint) ([]CalendarDaySummary, error) {
	startDay := truncateToDay(start)
	endDay := truncateToDay(end)
	if endDay.Before(startDay) {
		return nil, fmt.Errorf("end date %s is before start date %s",
			endDay.Format("2006-01-02"), startDay.Format("2006-01-02"))
	}

	trips, err := e.Store.ListTrips(ctx, TripFilter{
		RouteID:  routeID,
		DateFrom: &startDay,
		DateTo:   &endDay,
	})
	if err != nil {
		return nil, err
	}

	byDay := make(map[string][]models.TripSchedule)
	for _, trip := range trips {
		key := truncateToDay(trip.ScheduleDate).Format("2006-01-02")
		byDay[key] = append(byDay[key], trip)
	}

	var days []CalendarDaySummary
	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		summary := CalendarDaySummary{Date: key, Trips: []TripSummary{}}
		for _, trip := range byDay[key] {
			summary.Trips = append(summary.Trips, TripSummary{
				ScheduleID:     trip.ID,
				RouteID:        trip.RouteID,
				DepartureTime:  trip.DepartureTime,
				ArrivalTime:    trip.ArrivalTime,
				TotalSeats:     trip.TotalSeats,
				BookedSeats:    trip.BookedSeats,
				AvailableSeats: trip.AvailableSeats(),
				BookingEnabled: trip.BookingEnabled,
				Status:         trip.Status,
			})
			summary.TotalSchedules++
			if trip.BookingEnabled {
				summary.EnabledSchedules++
			}
			summary.TotalBookings += trip.BookedSeats
			summary.TotalCapacity += trip.TotalSeats
		}
		days = append(days, summary)
	}
	return days, nil
}

// SummarizeRoute reports the route's next upcoming trip and its current
// calendar month totals. The next trip is the earliest non-cancelled
// instance whose date is today or later.
func (e *Engine) SummarizeRoute(ctx context.Context, routeID uint) (RouteScheduleSummary, error) {
	if _, err := e.Store.GetRoute(ctx, routeID); err != nil {
		return RouteScheduleSummary{}, err
	}

	now := e.now()
	today := truncateToDay(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, -1)

	summary := RouteScheduleSummary{RouteID: routeID}

	monthTrips, err := e.Store.ListTrips(ctx, TripFilter{
		RouteID:  routeID,
		DateFrom: &monthStart,
		DateTo:   &monthEnd,
	})
	if err != nil {
		return RouteScheduleSummary{}, err
	}
	for _, trip := range monthTrips {
		summary.InstancesThisMonth++
		summary.BookingsThisMonth += trip.BookedSeats
	}

	upcoming, err := e.Store.ListTrips(ctx, TripFilter{RouteID: routeID, DateFrom: &today})
	if err != nil {
		return RouteScheduleSummary{}, err
	}
	for _, trip := range upcoming {
		if trip.Status == models.TripStatusCancelled {
			continue
		}
		next := trip
		summary.NextInstance = &next
		break
	}
	return summary, nil
}
