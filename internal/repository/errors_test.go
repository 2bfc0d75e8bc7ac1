package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.True(t, isDuplicateKey(fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062})), "wrapped errors must still classify")

	assert.False(t, isDuplicateKey(&mysql.MySQLError{Number: 1452}))
	assert.False(t, isDuplicateKey(errors.New("duplicate entry")), "string lookalikes are not MySQL errors")
	assert.False(t, isDuplicateKey(nil))
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, isForeignKeyViolation(&mysql.MySQLError{Number: 1452}))
	assert.False(t, isForeignKeyViolation(&mysql.MySQLError{Number: 1062}))
	assert.False(t, isForeignKeyViolation(errors.New("fk violation")))
}
