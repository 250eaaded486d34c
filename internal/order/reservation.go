package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quickoil/kiosk/internal/models"
	"gorm.io/gorm"
)

// ErrReservationNotFound marks an unknown reservation ID.
var ErrReservationNotFound = errors.New("order: reservation not found")

// ReservationInput is a booked visit as taken over the phone or from the
// booking site.
type ReservationInput struct {
	Date             time.Time
	Time             string // "14:30"
	CustomerName     string
	CustomerPhone    string
	CarNumber        string
	ExpectedTier     string
	ExpectedServices string
	Source           string
	Memo             string
}

// CreateReservation books a visit, linking the customer record when one
// exists for the phone number.
func CreateReservation(db *gorm.DB, in ReservationInput) (*models.Reservation, error) {
	phone := strings.TrimSpace(in.CustomerPhone)
	if phone == "" {
		return nil, fmt.Errorf("order: reservation requires a phone number")
	}
	if in.Time == "" {
		return nil, fmt.Errorf("order: reservation requires a time")
	}

	r := &models.Reservation{
		Date:             in.Date,
		Time:             in.Time,
		CustomerName:     strings.TrimSpace(in.CustomerName),
		CustomerPhone:    phone,
		CarNumber:        strings.TrimSpace(in.CarNumber),
		ExpectedTier:     in.ExpectedTier,
		ExpectedServices: in.ExpectedServices,
		Status:           "reserved",
		Source:           in.Source,
		Memo:             in.Memo,
	}
	if r.Source == "" {
		r.Source = "phone"
	}

	var customer models.Customer
	if err := db.Where("phone = ?", phone).First(&customer).Error; err == nil {
		r.CustomerID = &customer.ID
		if r.CustomerName == "" {
			r.CustomerName = customer.Name
		}
		if r.CarNumber == "" {
			r.CarNumber = customer.CarNumber
		}
	}

	if err := db.Create(r).Error; err != nil {
		return nil, fmt.Errorf("order: create reservation: %w", err)
	}
	return r, nil
}

// ReservationsForDate returns a day's reservations in visit-time order.
func ReservationsForDate(db *gorm.DB, date time.Time) ([]models.Reservation, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var reservations []models.Reservation
	err := db.Where("date >= ? AND date < ?", dayStart, dayEnd).
		Order("time ASC").Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("order: list reservations: %w", err)
	}
	return reservations, nil
}

// CancelReservation marks a reservation cancelled.
func CancelReservation(db *gorm.DB, id uint) error {
	result := db.Model(&models.Reservation{}).Where("id = ?", id).Update("status", "cancelled")
	if result.Error != nil {
		return fmt.Errorf("order: cancel reservation %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrReservationNotFound, id)
	}
	return nil
}

// linkReservation marks today's reservation for the order's phone number as
// arrived and attaches the order. Best effort: no reservation is not an
// error.
func linkReservation(db *gorm.DB, o *models.Order) {
	if o.CustomerPhone == "" {
		return
	}
	now := o.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	db.Model(&models.Reservation{}).
		Where("customer_phone = ? AND status = ? AND date >= ? AND date < ?",
			o.CustomerPhone, "reserved", dayStart, dayStart.Add(24*time.Hour)).
		Updates(map[string]interface{}{"status": "arrived", "order_id": o.ID})
}
