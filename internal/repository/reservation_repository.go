package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ozautos/car-marketplace/internal/model"
)

// ReservationRepo owns the reservations table and every status
// mutation on cars. Reserve and Cancel each run as a single database
// transaction so a reservation row and its car's status can never be
// observed out of step with each other. All timestamp fields are
// stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// CarSummary carries the denormalized car fields shown alongside a
// reservation on confirmations and lists.
type CarSummary struct {
	ID           uint64          `json:"id"`
	Slug         string          `json:"slug"`
	Make         string          `json:"make"`
	Model        string          `json:"model"`
	Year         uint16          `json:"year"`
	Variant      string          `json:"variant"`
	Price        decimal.Decimal `json:"price"`
	PrimaryImage *string         `json:"primary_image,omitempty"`
}

// CancelledReservation identifies what a successful Cancel touched so
// the service layer can invalidate views and publish events.
type CancelledReservation struct {
	ID          uint64
	OrderNumber string
	CarID       uint64
	CarSlug     string
}

// ConfirmationView is the public post-checkout confirmation keyed by
// order number.
type ConfirmationView struct {
	OrderNumber   string          `json:"order_number"`
	Status        string          `json:"status"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	CustomerPhone string          `json:"customer_phone"`
	StreetAddress string          `json:"street_address"`
	Suburb        string          `json:"suburb"`
	State         string          `json:"state"`
	Postcode      string          `json:"postcode"`
	PreferredDate string          `json:"preferred_inspection_date"`
	PaymentMethod string          `json:"payment_method"`
	CardLast4     string          `json:"card_last4,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CreatedAt     time.Time       `json:"created_at"`
	Car           CarSummary      `json:"car"`
}

// ReservationDetail is one entry in a user's reservation list.
type ReservationDetail struct {
	ID          uint64          `json:"id"`
	OrderNumber string          `json:"order_number"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	Car         CarSummary      `json:"car"`
}

// Reserve creates res inside one transaction:
//
//  1. lock the car row (SELECT ... FOR UPDATE) and verify it is
//     AVAILABLE,
//  2. snapshot the car's current price into CarPrice/TotalAmount,
//  3. insert the reservation with status PENDING,
//  4. flip the car to RESERVED with an UPDATE conditioned on the
//     status still being AVAILABLE, checking the affected-row count.
//
// Two concurrent calls on the same car serialize on the row lock;
// the loser observes a non-AVAILABLE status and gets
// ErrCarUnavailable. An order-number collision surfaces as
// ErrDuplicateOrderNumber so the caller can regenerate and retry.
// On success res is fully populated and the car's display summary is
// returned for the confirmation view.
func (r *ReservationRepo) Reserve(ctx context.Context, res *model.Reservation) (*CarSummary, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var car CarSummary
	var status string
	const lockQ = `SELECT id, slug, make, model, year, variant, price, status
	               FROM cars WHERE id = ? FOR UPDATE`
	err = tx.QueryRowContext(ctx, lockQ, res.CarID).Scan(
		&car.ID, &car.Slug, &car.Make, &car.Model, &car.Year, &car.Variant, &car.Price, &status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	if status != model.CarStatusAvailable {
		return nil, ErrCarUnavailable
	}

	// Snapshot, not reference: later price edits on the car must not
	// move this reservation's figures.
	res.CarPrice = car.Price
	res.TotalAmount = car.Price
	res.Status = model.ReservationStatusPending

	const ins = `INSERT INTO reservations
	             (order_number, user_id, car_id, status,
	              customer_name, customer_email, customer_phone,
	              street_address, suburb, state, postcode,
	              preferred_inspection_date, payment_method, card_last4,
	              car_price, total_amount)
	             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, ins,
		res.OrderNumber, res.UserID, res.CarID, res.Status,
		res.CustomerName, res.CustomerEmail, res.CustomerPhone,
		res.StreetAddress, res.Suburb, res.State, res.Postcode,
		res.PreferredDate, res.PaymentMethod, res.CardLast4,
		res.CarPrice, res.TotalAmount,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicateOrderNumber
		}
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	res.ID = uint64(id)
	// Query back timestamps populated by column defaults.
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt); err != nil {
		return nil, err
	}

	upd, err := tx.ExecContext(ctx,
		`UPDATE cars SET status = ? WHERE id = ? AND status = ?`,
		model.CarStatusReserved, res.CarID, model.CarStatusAvailable,
	)
	if err != nil {
		return nil, err
	}
	n, err := upd.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n != 1 {
		return nil, ErrCarUnavailable
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	r.attachPrimaryImage(ctx, &car)
	return &car, nil
}

// Cancel marks the reservation CANCELLED and restores the car to
// AVAILABLE within one transaction. The reservation row is locked so
// a concurrent second cancel observes CANCELLED and fails with
// ErrNotCancellable rather than double-restoring. Ownership is
// enforced before any state is inspected further: a non-owner always
// gets ErrForbidden, whatever the reservation's status.
//
// The car status restore is deliberately unconditional, matching the
// documented behavior: if back-office tooling moved the car to SOLD
// in the interim, cancel still reverts it to AVAILABLE. A conditional
// restore (only when still RESERVED) is pending a product decision.
func (r *ReservationRepo) Cancel(ctx context.Context, reservationID, userID uint64) (*CancelledReservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `SELECT r.order_number, r.user_id, r.car_id, r.status, c.slug
	           FROM reservations r
	           JOIN cars c ON c.id = r.car_id
	           WHERE r.id = ? FOR UPDATE`
	var (
		orderNumber string
		ownerID     uint64
		carID       uint64
		status      string
		carSlug     string
	)
	err = tx.QueryRowContext(ctx, q, reservationID).Scan(&orderNumber, &ownerID, &carID, &status, &carSlug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	if ownerID != userID {
		return nil, ErrForbidden
	}
	if !model.CancellableStatus(status) {
		return nil, ErrNotCancellable
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = ? WHERE id = ?`,
		model.ReservationStatusCancelled, reservationID,
	); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE cars SET status = ? WHERE id = ?`,
		model.CarStatusAvailable, carID,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return &CancelledReservation{
		ID:          reservationID,
		OrderNumber: orderNumber,
		CarID:       carID,
		CarSlug:     carSlug,
	}, nil
}

// GetByOrderNumber returns the confirmation view for an order number.
// The lookup is public: the confirmation page is reached via the
// order number itself, with no ownership check.
func (r *ReservationRepo) GetByOrderNumber(ctx context.Context, orderNumber string) (*ConfirmationView, error) {
	const q = `SELECT r.order_number, r.status,
	                  r.customer_name, r.customer_email, r.customer_phone,
	                  r.street_address, r.suburb, r.state, r.postcode,
	                  r.preferred_inspection_date, r.payment_method, r.card_last4,
	                  r.total_amount, r.created_at,
	                  c.id, c.slug, c.make, c.model, c.year, c.variant, c.price, pi.url
	           FROM reservations r
	           JOIN cars c ON c.id = r.car_id
	           ` + primaryImageJoin + `
	           WHERE r.order_number = ?`
	var v ConfirmationView
	var img sql.NullString
	err := r.db.QueryRowContext(ctx, q, orderNumber).Scan(
		&v.OrderNumber, &v.Status,
		&v.CustomerName, &v.CustomerEmail, &v.CustomerPhone,
		&v.StreetAddress, &v.Suburb, &v.State, &v.Postcode,
		&v.PreferredDate, &v.PaymentMethod, &v.CardLast4,
		&v.TotalAmount, &v.CreatedAt,
		&v.Car.ID, &v.Car.Slug, &v.Car.Make, &v.Car.Model, &v.Car.Year, &v.Car.Variant, &v.Car.Price, &img,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	if img.Valid {
		u := img.String
		v.Car.PrimaryImage = &u
	}
	return &v, nil
}

// ListByUser returns the user's reservations, newest first. When no
// reservations exist an empty slice is returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	const q = `SELECT r.id, r.order_number, r.status, r.total_amount, r.created_at,
	                  c.id, c.slug, c.make, c.model, c.year, c.variant, c.price, pi.url
	           FROM reservations r
	           JOIN cars c ON c.id = r.car_id
	           ` + primaryImageJoin + `
	           WHERE r.user_id = ?
	           ORDER BY r.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]ReservationDetail, 0)
	for rows.Next() {
		var d ReservationDetail
		var img sql.NullString
		if err := rows.Scan(
			&d.ID, &d.OrderNumber, &d.Status, &d.TotalAmount, &d.CreatedAt,
			&d.Car.ID, &d.Car.Slug, &d.Car.Make, &d.Car.Model, &d.Car.Year, &d.Car.Variant, &d.Car.Price, &img,
		); err != nil {
			return nil, err
		}
		if img.Valid {
			u := img.String
			d.Car.PrimaryImage = &u
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// attachPrimaryImage best-effort decorates a summary with the car's
// primary image. Confirmation rendering works without it.
func (r *ReservationRepo) attachPrimaryImage(ctx context.Context, car *CarSummary) {
	var url string
	err := r.db.QueryRowContext(ctx,
		`SELECT url FROM car_images WHERE car_id = ? AND is_primary = 1 LIMIT 1`,
		car.ID,
	).Scan(&url)
	if err != nil {
		return
	}
	car.PrimaryImage = &url
}
