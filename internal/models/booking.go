package models

import "time"

// Customer holds the contact details supplied with a reservation.
type Customer struct {
	Name  string `json:"customer_name"  validate:"required,max=100"`
	Phone string `json:"customer_phone" validate:"required,max=30"`
	Email string `json:"customer_email" validate:"required,email"`
}

// Booking reserves one staff member for a half-open interval.
// For a fixed StaffID no two bookings overlap.
type Booking struct {
	ID        string    // System generated identifier
	StaffID   string    // Identifier of the reserved staff member
	Interval  Interval  // Reserved time range
	Customer  Customer  // Contact details of the customer
	CreatedAt time.Time // Timestamp assigned by the store on insert
}

// Start returns the first instant of the booking.
func (b Booking) Start() time.Time {
	return b.Interval.Start
}

// End returns the first instant after the booking.
func (b Booking) End() time.Time {
	return b.Interval.End
}
