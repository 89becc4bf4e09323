package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/carbnb/apiserver/internal/services"
	"github.com/carbnb/apiserver/types"
)

// BookingHandler provides HTTP handlers for reservations.
type BookingHandler struct {
	bookingService *services.BookingService
}

// NewBookingHandler constructs a handler with the provided service.
func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// BookingRouter registers booking routes on the given router. Every
// route requires authentication.
func BookingRouter(r chi.Router, bookingService *services.BookingService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewBookingHandler(bookingService)

	r.Use(authMiddleware)
	r.With(RequireRole(types.RoleCustomer)).Post("/", handler.CreateBooking)
	r.Get("/", handler.ListBookings)
	r.With(RequireRole(types.RoleOwner)).Get("/owner/pending", handler.PendingBookings)
	r.With(RequireRole(types.RoleOwner)).Put("/{bookingID}/approve", handler.ApproveBooking)
	r.With(RequireRole(types.RoleOwner)).Put("/{bookingID}/reject", handler.RejectBooking)
}

type CreateBookingRequest struct {
	CarID              int      `json:"car_id"`
	StartDate          string   `json:"start_date"`
	EndDate            string   `json:"end_date"`
	PickupLocation     string   `json:"pickup_location"`
	DropoffLocation    string   `json:"dropoff_location"`
	AdditionalServices []string `json:"additional_services"`
	PaymentMethod      string   `json:"payment_method"`
}

type RejectBookingRequest struct {
	RejectionReason string `json:"rejection_reason"`
}

// CreateBooking reserves a car for the authenticated customer.
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	startDate, err := parseBookingDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date")
		return
	}
	endDate, err := parseBookingDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date")
		return
	}

	booking, err := h.bookingService.Create(r.Context(), principal, services.BookingRequest{
		CarID:              req.CarID,
		StartDate:          startDate,
		EndDate:            endDate,
		PickupLocation:     strings.TrimSpace(req.PickupLocation),
		DropoffLocation:    strings.TrimSpace(req.DropoffLocation),
		AdditionalServices: req.AdditionalServices,
		PaymentMethod:      types.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

// ListBookings returns the caller's bookings, or every booking for
// admins.
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	bookings, err := h.bookingService.List(r.Context(), principal)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// PendingBookings returns reservations awaiting the owner's decision.
func (h *BookingHandler) PendingBookings(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	bookings, err := h.bookingService.ListPendingForOwner(r.Context(), principal)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// ApproveBooking confirms a pending reservation.
func (h *BookingHandler) ApproveBooking(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseBookingID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, err := h.bookingService.Approve(r.Context(), principal, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// RejectBooking cancels a pending reservation and frees the car.
func (h *BookingHandler) RejectBooking(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseBookingID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req RejectBookingRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	booking, err := h.bookingService.Reject(r.Context(), principal, id, strings.TrimSpace(req.RejectionReason))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func parseBookingID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "bookingID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid booking id")
	}
	return id, nil
}

// parseBookingDate accepts RFC 3339 timestamps and plain dates.
func parseBookingDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
