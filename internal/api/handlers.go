package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/chronos/internal/models"
	"github.com/UnknownOlympus/chronos/internal/service"
	"github.com/gin-gonic/gin"
)

const defaultDurationMinutes = 60

// AvailabilityFinder answers who is free for an interval.
type AvailabilityFinder interface {
	FindAvailable(ctx context.Context, start time.Time, durationMinutes int) ([]models.Staff, error)
}

// Reserver creates bookings.
type Reserver interface {
	Reserve(ctx context.Context, req service.ReservationRequest) (models.Booking, error)
}

// BookingLister lists and exports bookings.
type BookingLister interface {
	ListBookings(ctx context.Context) ([]models.Booking, error)
	ExportCSV(ctx context.Context, w io.Writer) error
	ExportXLSX(ctx context.Context) (*bytes.Buffer, error)
}

// StaffManager lists and saves staff members.
type StaffManager interface {
	List(ctx context.Context) ([]models.Staff, error)
	Upsert(ctx context.Context, staff models.Staff) (models.Staff, error)
}

// Services groups the core operations served over HTTP.
type Services struct {
	Availability AvailabilityFinder
	Reservations Reserver
	Listings     BookingLister
	Staff        StaffManager
}

type availabilityRequest struct {
	StartISO    string `json:"start_iso"    binding:"required"`
	DurationMin *int   `json:"duration_min"`
}

type bookingRequest struct {
	StaffID       string `json:"staff_id"       binding:"required,max=64"`
	StartISO      string `json:"start_iso"      binding:"required"`
	DurationMin   int    `json:"duration_min"   binding:"required"`
	CustomerName  string `json:"customer_name"  binding:"required"`
	CustomerPhone string `json:"customer_phone" binding:"required"`
	CustomerEmail string `json:"customer_email" binding:"required,email"`
}

type staffRequest struct {
	Name   string   `json:"name"   binding:"required"`
	Email  string   `json:"email"  binding:"required,email"`
	Phone  string   `json:"phone"`
	Skills []string `json:"skills"`
}

type bookingResponse struct {
	ID            string `json:"id"`
	StaffID       string `json:"staff_id"`
	Start         string `json:"start"`
	End           string `json:"end"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`
	CreatedAt     string `json:"created_at,omitempty"`
}

func toBookingResponse(booking models.Booking) bookingResponse {
	resp := bookingResponse{
		ID:            booking.ID,
		StaffID:       booking.StaffID,
		Start:         formatTime(booking.Start()),
		End:           formatTime(booking.End()),
		CustomerName:  booking.Customer.Name,
		CustomerPhone: booking.Customer.Phone,
		CustomerEmail: booking.Customer.Email,
	}
	if !booking.CreatedAt.IsZero() {
		resp.CreatedAt = formatTime(booking.CreatedAt)
	}

	return resp
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseStart(value string) (time.Time, error) {
	start, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("start_iso must be an RFC 3339 timestamp: %w", err)
	}

	return start, nil
}

type handlers struct {
	log      *slog.Logger
	services Services
}

func (h *handlers) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) availability(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	start, err := parseStart(req.StartISO)
	if err != nil {
		invalidInput(c, err)
		return
	}
	minutes := defaultDurationMinutes
	if req.DurationMin != nil {
		minutes = *req.DurationMin
	}

	available, err := h.services.Availability.FindAvailable(c.Request.Context(), start, minutes)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"available": available})
}

func (h *handlers) createBooking(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	start, err := parseStart(req.StartISO)
	if err != nil {
		invalidInput(c, err)
		return
	}

	booking, err := h.services.Reservations.Reserve(c.Request.Context(), service.ReservationRequest{
		StaffID:         req.StaffID,
		Start:           start,
		DurationMinutes: req.DurationMin,
		Customer: models.Customer{
			Name:  req.CustomerName,
			Phone: req.CustomerPhone,
			Email: req.CustomerEmail,
		},
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ok":         true,
		"booking_id": booking.ID,
		"booking":    toBookingResponse(booking),
	})
}

func (h *handlers) listBookings(c *gin.Context) {
	bookings, err := h.services.Listings.ListBookings(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	resp := make([]bookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		resp = append(resp, toBookingResponse(booking))
	}

	c.JSON(http.StatusOK, gin.H{"bookings": resp})
}

func (h *handlers) exportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.services.Listings.ExportCSV(c.Request.Context(), &buf); err != nil {
		writeError(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="bookings.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *handlers) exportXLSX(c *gin.Context) {
	buf, err := h.services.Listings.ExportXLSX(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="bookings.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *handlers) listStaff(c *gin.Context) {
	staff, err := h.services.Staff.List(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"staff": staff})
}

func (h *handlers) upsertStaff(c *gin.Context) {
	var req staffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	saved, err := h.services.Staff.Upsert(c.Request.Context(), models.Staff{
		ID:     c.Param("id"),
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Skills: req.Skills,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"staff": saved})
}
