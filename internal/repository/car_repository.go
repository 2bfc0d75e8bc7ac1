package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/ozautos/car-marketplace/internal/model"
)

// CarRepo provides read access to the cars and car_images tables for
// the public browsing endpoints. Status mutations are owned by
// ReservationRepo; nothing here writes.
type CarRepo struct {
	db *sql.DB
}

// NewCarRepo returns a new CarRepo bound to the given database.
func NewCarRepo(db *sql.DB) *CarRepo { return &CarRepo{db: db} }

// DB exposes the underlying handle for callers that need to start
// their own transactions.
func (r *CarRepo) DB() *sql.DB { return r.db }

// CarListing is a car row flattened for listing pages, carrying the
// denormalized primary image. Draft cars are never listed.
type CarListing struct {
	ID           uint64          `json:"id"`
	Slug         string          `json:"slug"`
	Make         string          `json:"make"`
	Model        string          `json:"model"`
	Year         uint16          `json:"year"`
	Variant      string          `json:"variant"`
	Mileage      uint32          `json:"mileage"`
	Price        decimal.Decimal `json:"price"`
	Status       string          `json:"status"`
	Featured     bool            `json:"featured"`
	PrimaryImage *string         `json:"primary_image,omitempty"`
}

// CarImageView is one gallery image on a car detail response.
type CarImageView struct {
	URL       string `json:"url"`
	IsPrimary bool   `json:"is_primary"`
}

// CarDetail extends CarListing with the full image gallery for the
// car detail page.
type CarDetail struct {
	CarListing
	Images []CarImageView `json:"images"`
}

const carListingColumns = `c.id, c.slug, c.make, c.model, c.year, c.variant, c.mileage,
                           c.price, c.status, c.featured, pi.url`

// primary image is joined rather than stored on cars so the gallery
// stays the single source of truth for image data.
const primaryImageJoin = `LEFT JOIN car_images pi ON pi.car_id = c.id AND pi.is_primary = 1`

// List returns all listed (non-DRAFT) cars, featured first and then
// newest first. When featuredOnly is set, only featured cars are
// returned. Reserved and sold cars remain visible so listings can
// badge them.
func (r *CarRepo) List(ctx context.Context, featuredOnly bool) ([]CarListing, error) {
	q := `SELECT ` + carListingColumns + `
	      FROM cars c ` + primaryImageJoin + `
	      WHERE c.status <> 'DRAFT'`
	if featuredOnly {
		q += ` AND c.featured = 1`
	}
	q += ` ORDER BY c.featured DESC, c.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	listings := make([]CarListing, 0)
	for rows.Next() {
		l, err := scanCarListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return listings, nil
}

// GetBySlug returns the full detail view for a listed car, including
// its image gallery ordered for display. Unknown slugs and DRAFT cars
// both produce ErrCarNotFound so unlisted inventory stays invisible.
func (r *CarRepo) GetBySlug(ctx context.Context, slug string) (*CarDetail, error) {
	const q = `SELECT ` + carListingColumns + `
	           FROM cars c ` + primaryImageJoin + `
	           WHERE c.slug = ? AND c.status <> 'DRAFT'`
	row := r.db.QueryRowContext(ctx, q, slug)
	listing, err := scanCarListing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	det := &CarDetail{CarListing: *listing, Images: []CarImageView{}}
	const imgQ = `SELECT url, is_primary FROM car_images
	              WHERE car_id = ?
	              ORDER BY is_primary DESC, sort_order, id`
	rows, err := r.db.QueryContext(ctx, imgQ, det.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var img CarImageView
		if err := rows.Scan(&img.URL, &img.IsPrimary); err != nil {
			return nil, err
		}
		det.Images = append(det.Images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return det, nil
}

// GetByID returns the raw car record, including DRAFT cars. Used
// internally (checkout needs the car regardless of listing state to
// produce a sensible error).
func (r *CarRepo) GetByID(ctx context.Context, id uint64) (*model.Car, error) {
	const q = `SELECT id, slug, make, model, year, variant, mileage, price, status, featured,
	                  created_at, updated_at
	           FROM cars WHERE id = ?`
	var c model.Car
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&c.ID, &c.Slug, &c.Make, &c.Model, &c.Year, &c.Variant, &c.Mileage,
		&c.Price, &c.Status, &c.Featured, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCarNotFound
		}
		return nil, err
	}
	return &c, nil
}

// scanCarListing reads one carListingColumns row from either a *sql.Row
// or *sql.Rows.
func scanCarListing(row interface{ Scan(...interface{}) error }) (*CarListing, error) {
	var l CarListing
	var img sql.NullString
	if err := row.Scan(
		&l.ID, &l.Slug, &l.Make, &l.Model, &l.Year, &l.Variant, &l.Mileage,
		&l.Price, &l.Status, &l.Featured, &img,
	); err != nil {
		return nil, err
	}
	if img.Valid {
		u := img.String
		l.PrimaryImage = &u
	}
	return &l, nil
}
