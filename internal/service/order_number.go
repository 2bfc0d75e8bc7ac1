package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// orderNumberSpace is the size of the random component. Five zero
// padded digits keeps order numbers short enough to read over the
// phone; uniqueness is enforced by the database index, not here.
const orderNumberSpace = 100000

// NewOrderNumber formats a fresh order number as
// ORD-{year}-{5-digit zero-padded random}. Generation performs no
// uniqueness check; callers retry on a duplicate-key insert.
func NewOrderNumber(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(orderNumberSpace))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%d-%05d", now.Year(), n.Int64()), nil
}
