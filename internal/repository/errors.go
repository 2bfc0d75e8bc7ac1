// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without string matching. For example, ErrCarUnavailable
// signals that a reservation attempt lost the race for a car, while
// ErrForbidden indicates that the current user does not own the
// resource they are operating on.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrCarNotFound is returned when no car exists with the requested
// id or slug, or when the car is an unlisted DRAFT.
var ErrCarNotFound = errors.New("car not found")

// ErrCarUnavailable is returned when a reservation is attempted on a
// car whose status is not AVAILABLE. Under concurrent attempts on the
// same car exactly one caller succeeds; all others receive this error.
var ErrCarUnavailable = errors.New("car is no longer available")

// ErrReservationNotFound is returned when no reservation exists with
// the requested id or order number.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrNotCancellable is returned when a cancel is attempted on a
// reservation whose status has progressed past the cancellable set
// (PENDING, CONFIRMED, INSPECTION_SCHEDULED) or is already CANCELLED.
var ErrNotCancellable = errors.New("reservation cannot be cancelled")

// ErrDuplicateOrderNumber is returned when an insert collides with an
// existing order number. The workflow service regenerates and retries.
var ErrDuplicateOrderNumber = errors.New("duplicate order number")

// ErrAlreadyFavorited is returned when the (user, car) favorite pair
// already exists.
var ErrAlreadyFavorited = errors.New("car already favorited")

// ErrFavoriteNotFound is returned when removing a favorite that does
// not exist.
var ErrFavoriteNotFound = errors.New("favorite not found")

// ErrEmailExists is returned when registering with an email that is
// already taken.
var ErrEmailExists = errors.New("email already exists")

// isDuplicateKey reports whether err is a MySQL duplicate-entry
// violation (error 1062) on a unique index.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// isForeignKeyViolation reports whether err is a MySQL foreign-key
// failure on insert/update (error 1452).
func isForeignKeyViolation(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1452
}
