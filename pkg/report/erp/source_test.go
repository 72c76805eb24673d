package erp

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestBounds(t *testing.T) {
	jkt := time.FixedZone("WIB", 7*3600)
	from := time.Date(2025, 6, 1, 15, 30, 0, 0, jkt)
	to := time.Date(2025, 6, 30, 9, 0, 0, 0, jkt)

	start, end := bounds(from, to)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, jkt), start)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, jkt), end)

	// A single day still spans 24 hours.
	start, end = bounds(to, to)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestMissingRelation(t *testing.T) {
	undefined := &pgconn.PgError{Code: "42P01", Message: `relation "pitcar_service_booking" does not exist`}

	assert.True(t, missingRelation(undefined))
	assert.True(t, missingRelation(fmt.Errorf("scan: %w", undefined)))
	assert.False(t, missingRelation(&pgconn.PgError{Code: "42703"}))
	assert.False(t, missingRelation(errors.New("boom")))
	assert.False(t, missingRelation(nil))
}
