package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/carbnb/apiserver/types"
)

// BookingRepository handles persistence for bookings.
type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingSelect = `
	SELECT b.id, b.user_id, b.car_id, b.owner_id, b.start_date, b.end_date,
		b.total_amount, b.status, b.pickup_location, b.dropoff_location,
		b.additional_services, b.payment_method, b.rejection_reason,
		b.created_at, b.updated_at, u.name, u.email, c.brand, c.model
	FROM bookings b
	JOIN users u ON u.id = b.user_id
	JOIN cars c ON c.id = b.car_id`

func scanBooking(scanner interface{ Scan(...any) error }, booking *types.Booking) error {
	var servicesJSON []byte
	var reason sql.NullString
	if err := scanner.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.CarID,
		&booking.OwnerID,
		&booking.StartDate,
		&booking.EndDate,
		&booking.TotalAmount,
		&booking.Status,
		&booking.PickupLocation,
		&booking.DropoffLocation,
		&servicesJSON,
		&booking.PaymentMethod,
		&reason,
		&booking.CreatedAt,
		&booking.UpdatedAt,
		&booking.CustomerName,
		&booking.CustomerEmail,
		&booking.CarBrand,
		&booking.CarModel,
	); err != nil {
		return err
	}
	_ = json.Unmarshal(servicesJSON, &booking.AdditionalServices)
	booking.RejectionReason = reason.String
	return nil
}

func (r *BookingRepository) Get(ctx context.Context, id int) (types.Booking, error) {
	const query = bookingSelect + `
	WHERE b.id = $1`
	var booking types.Booking
	err := scanBooking(r.db.QueryRowContext(ctx, query, id), &booking)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Booking{}, ErrNotFound
		}
		return types.Booking{}, err
	}
	return booking, nil
}

func (r *BookingRepository) Create(ctx context.Context, booking types.Booking) (types.Booking, error) {
	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	servicesJSON, err := json.Marshal(booking.AdditionalServices)
	if err != nil {
		return types.Booking{}, err
	}

	const query = `
		INSERT INTO bookings (user_id, car_id, owner_id, start_date, end_date,
			total_amount, status, pickup_location, dropoff_location,
			additional_services, payment_method, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		booking.UserID,
		booking.CarID,
		booking.OwnerID,
		booking.StartDate,
		booking.EndDate,
		booking.TotalAmount,
		booking.Status,
		booking.PickupLocation,
		booking.DropoffLocation,
		servicesJSON,
		booking.PaymentMethod,
		booking.CreatedAt,
		booking.UpdatedAt,
	).Scan(&booking.ID); err != nil {
		return types.Booking{}, err
	}
	return booking, nil
}

func (r *BookingRepository) ListAll(ctx context.Context) ([]types.Booking, error) {
	const query = bookingSelect + `
	ORDER BY b.id`
	return r.list(ctx, query)
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID int) ([]types.Booking, error) {
	const query = bookingSelect + `
	WHERE b.user_id = $1
	ORDER BY b.id`
	return r.list(ctx, query, userID)
}

func (r *BookingRepository) ListPendingByOwner(ctx context.Context, ownerID int) ([]types.Booking, error) {
	const query = bookingSelect + `
	WHERE b.owner_id = $1 AND b.status = 'pending'
	ORDER BY b.id`
	return r.list(ctx, query, ownerID)
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]types.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]types.Booking, 0)
	for rows.Next() {
		var booking types.Booking
		if err := scanBooking(rows, &booking); err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

// SetStatus transitions the booking state, optionally recording a
// rejection reason.
func (r *BookingRepository) SetStatus(ctx context.Context, id int, status types.BookingStatus, reason *string) error {
	const query = `
		UPDATE bookings
		SET status = $1,
			rejection_reason = COALESCE($2, rejection_reason),
			updated_at = $3
		WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, status, reason, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
