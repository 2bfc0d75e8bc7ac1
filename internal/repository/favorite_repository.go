package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// FavoriteRepo provides access to the favorites table. The pair
// (user_id, car_id) carries a unique constraint; duplicate inserts
// and missing deletes are mapped onto sentinel errors rather than
// checked with a prior read, so concurrent toggles stay consistent.
type FavoriteRepo struct {
	db *sql.DB
}

// NewFavoriteRepo returns a new FavoriteRepo bound to the given database.
func NewFavoriteRepo(db *sql.DB) *FavoriteRepo { return &FavoriteRepo{db: db} }

// FavoriteDetail is one entry in a user's favorites list: the car's
// listing fields plus when it was favorited. Status is included so
// the list can badge favorited-but-now-reserved cars.
type FavoriteDetail struct {
	CarID        uint64          `json:"car_id"`
	Slug         string          `json:"slug"`
	Make         string          `json:"make"`
	Model        string          `json:"model"`
	Year         uint16          `json:"year"`
	Variant      string          `json:"variant"`
	Price        decimal.Decimal `json:"price"`
	Status       string          `json:"status"`
	PrimaryImage *string         `json:"primary_image,omitempty"`
	FavoritedAt  time.Time       `json:"favorited_at"`
}

// Add inserts the (user, car) pair. Returns ErrAlreadyFavorited when
// the pair already exists and ErrCarNotFound when the car id violates
// the foreign key.
func (r *FavoriteRepo) Add(ctx context.Context, userID, carID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO favorites (user_id, car_id) VALUES (?, ?)`,
		userID, carID,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrAlreadyFavorited
		}
		if isForeignKeyViolation(err) {
			return ErrCarNotFound
		}
		return err
	}
	return nil
}

// Remove deletes the (user, car) pair, returning ErrFavoriteNotFound
// when no row existed.
func (r *FavoriteRepo) Remove(ctx context.Context, userID, carID uint64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND car_id = ?`,
		userID, carID,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

// Exists reports whether the user has favorited the car.
func (r *FavoriteRepo) Exists(ctx context.Context, userID, carID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM favorites WHERE user_id = ? AND car_id = ? LIMIT 1`,
		userID, carID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByUser returns the user's favorited cars, newest favorite
// first, with the denormalized primary image and current car status.
func (r *FavoriteRepo) ListByUser(ctx context.Context, userID uint64) ([]FavoriteDetail, error) {
	const q = `SELECT c.id, c.slug, c.make, c.model, c.year, c.variant, c.price, c.status,
	                  pi.url, f.created_at
	           FROM favorites f
	           JOIN cars c ON c.id = f.car_id
	           ` + primaryImageJoin + `
	           WHERE f.user_id = ?
	           ORDER BY f.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]FavoriteDetail, 0)
	for rows.Next() {
		var d FavoriteDetail
		var img sql.NullString
		if err := rows.Scan(
			&d.CarID, &d.Slug, &d.Make, &d.Model, &d.Year, &d.Variant, &d.Price, &d.Status,
			&img, &d.FavoritedAt,
		); err != nil {
			return nil, err
		}
		if img.Valid {
			u := img.String
			d.PrimaryImage = &u
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}
