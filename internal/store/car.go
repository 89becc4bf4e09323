package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/carbnb/apiserver/types"
	"github.com/lib/pq"
)

// CarRepository handles persistence for car listings.
type CarRepository struct {
	db *sql.DB
}

func NewCarRepository(db *sql.DB) *CarRepository {
	return &CarRepository{db: db}
}

const carColumns = `
	id, brand, model, year, price, image, category, transmission, fuel, seats,
	available, features, wilaya, commune, chauffeur, rating, owner_id, status,
	rejection_reason, created_at, updated_at`

func scanCar(scanner interface{ Scan(...any) error }, car *types.Car) error {
	var featuresJSON []byte
	var reason sql.NullString
	if err := scanner.Scan(
		&car.ID,
		&car.Brand,
		&car.Model,
		&car.Year,
		&car.Price,
		&car.Image,
		&car.Category,
		&car.Transmission,
		&car.Fuel,
		&car.Seats,
		&car.Available,
		&featuresJSON,
		&car.Wilaya,
		&car.Commune,
		&car.Chauffeur,
		&car.Rating,
		&car.OwnerID,
		&car.Status,
		&reason,
		&car.CreatedAt,
		&car.UpdatedAt,
	); err != nil {
		return err
	}
	_ = json.Unmarshal(featuresJSON, &car.Features)
	car.RejectionReason = reason.String
	return nil
}

func (r *CarRepository) Get(ctx context.Context, id int) (types.Car, error) {
	const query = `
		SELECT ` + carColumns + `
		FROM cars
		WHERE id = $1`
	var car types.Car
	err := scanCar(r.db.QueryRowContext(ctx, query, id), &car)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Car{}, ErrNotFound
		}
		return types.Car{}, err
	}
	return car, nil
}

// ListByStatus returns cars in the given review state with the owner's
// name and email joined for display.
func (r *CarRepository) ListByStatus(ctx context.Context, status types.CarStatus) ([]types.Car, error) {
	const query = `
		SELECT c.id, c.brand, c.model, c.year, c.price, c.image, c.category,
			c.transmission, c.fuel, c.seats, c.available, c.features, c.wilaya,
			c.commune, c.chauffeur, c.rating, c.owner_id, c.status,
			c.rejection_reason, c.created_at, c.updated_at, u.name, u.email
		FROM cars c
		JOIN users u ON u.id = c.owner_id
		WHERE c.status = $1
		ORDER BY c.id`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cars := make([]types.Car, 0)
	for rows.Next() {
		var car types.Car
		var featuresJSON []byte
		var reason sql.NullString
		if err := rows.Scan(
			&car.ID, &car.Brand, &car.Model, &car.Year, &car.Price, &car.Image,
			&car.Category, &car.Transmission, &car.Fuel, &car.Seats, &car.Available,
			&featuresJSON, &car.Wilaya, &car.Commune, &car.Chauffeur, &car.Rating,
			&car.OwnerID, &car.Status, &reason, &car.CreatedAt, &car.UpdatedAt,
			&car.OwnerName, &car.OwnerEmail,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(featuresJSON, &car.Features)
		car.RejectionReason = reason.String
		cars = append(cars, car)
	}
	return cars, rows.Err()
}

func (r *CarRepository) ListByOwner(ctx context.Context, ownerID int) ([]types.Car, error) {
	const query = `
		SELECT ` + carColumns + `
		FROM cars
		WHERE owner_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cars := make([]types.Car, 0)
	for rows.Next() {
		var car types.Car
		if err := scanCar(rows, &car); err != nil {
			return nil, err
		}
		cars = append(cars, car)
	}
	return cars, rows.Err()
}

func (r *CarRepository) Create(ctx context.Context, car types.Car) (types.Car, error) {
	now := time.Now()
	car.CreatedAt = now
	car.UpdatedAt = now

	featuresJSON, err := json.Marshal(car.Features)
	if err != nil {
		return types.Car{}, err
	}

	const query = `
		INSERT INTO cars (brand, model, year, price, image, category, transmission,
			fuel, seats, available, features, wilaya, commune, chauffeur, rating,
			owner_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		car.Brand,
		car.Model,
		car.Year,
		car.Price,
		car.Image,
		car.Category,
		car.Transmission,
		car.Fuel,
		car.Seats,
		car.Available,
		featuresJSON,
		car.Wilaya,
		car.Commune,
		car.Chauffeur,
		car.Rating,
		car.OwnerID,
		car.Status,
		car.CreatedAt,
		car.UpdatedAt,
	).Scan(&car.ID); err != nil {
		return types.Car{}, err
	}
	return car, nil
}

// Update replaces the mutable listing fields. OwnerID is never written.
func (r *CarRepository) Update(ctx context.Context, car types.Car) (types.Car, error) {
	car.UpdatedAt = time.Now()

	featuresJSON, err := json.Marshal(car.Features)
	if err != nil {
		return types.Car{}, err
	}

	reason := sql.NullString{String: car.RejectionReason, Valid: car.RejectionReason != ""}

	const query = `
		UPDATE cars
		SET brand = $1,
			model = $2,
			year = $3,
			price = $4,
			image = $5,
			category = $6,
			transmission = $7,
			fuel = $8,
			seats = $9,
			features = $10,
			wilaya = $11,
			commune = $12,
			chauffeur = $13,
			status = $14,
			rejection_reason = $15,
			updated_at = $16
		WHERE id = $17`
	result, err := r.db.ExecContext(
		ctx,
		query,
		car.Brand,
		car.Model,
		car.Year,
		car.Price,
		car.Image,
		car.Category,
		car.Transmission,
		car.Fuel,
		car.Seats,
		featuresJSON,
		car.Wilaya,
		car.Commune,
		car.Chauffeur,
		car.Status,
		reason,
		car.UpdatedAt,
		car.ID,
	)
	if err != nil {
		return types.Car{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Car{}, err
	}
	if affected == 0 {
		return types.Car{}, ErrNotFound
	}
	return car, nil
}

// SetStatus transitions the review state. A nil reason clears any stored
// rejection reason.
func (r *CarRepository) SetStatus(ctx context.Context, id int, status types.CarStatus, reason *string) (types.Car, error) {
	const query = `
		UPDATE cars
		SET status = $1,
			rejection_reason = $2,
			updated_at = $3
		WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, status, reason, time.Now(), id)
	if err != nil {
		return types.Car{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Car{}, err
	}
	if affected == 0 {
		return types.Car{}, ErrNotFound
	}
	return r.Get(ctx, id)
}

// Reserve atomically flips an approved, available car to unavailable.
// It reports false when the car is missing, unapproved, or already
// reserved, which makes the check-then-book sequence race-free without
// a multi-row transaction.
func (r *CarRepository) Reserve(ctx context.Context, id int) (bool, error) {
	const query = `
		UPDATE cars
		SET available = FALSE, updated_at = $1
		WHERE id = $2 AND available = TRUE AND status = 'approved'`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Release makes a reserved car bookable again.
func (r *CarRepository) Release(ctx context.Context, id int) error {
	const query = `
		UPDATE cars
		SET available = TRUE, updated_at = $1
		WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
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

func (r *CarRepository) GetByIDs(ctx context.Context, ids []int) ([]types.Car, error) {
	const query = `
		SELECT ` + carColumns + `
		FROM cars
		WHERE id = ANY($1)
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cars := make([]types.Car, 0, len(ids))
	for rows.Next() {
		var car types.Car
		if err := scanCar(rows, &car); err != nil {
			return nil, err
		}
		cars = append(cars, car)
	}
	return cars, rows.Err()
}

// DeleteByIDs removes the given cars and returns the ids that existed.
func (r *CarRepository) DeleteByIDs(ctx context.Context, ids []int) ([]int, error) {
	const query = `
		DELETE FROM cars
		WHERE id = ANY($1)
		RETURNING id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deleted := make([]int, 0, len(ids))
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		deleted = append(deleted, id)
	}
	return deleted, rows.Err()
}
