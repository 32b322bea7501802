package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestNotFound(t *testing.T) {
	invalidUUID := &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "missing"`}
	connection := errors.New("connection refused")

	assert.ErrorIs(t, notFound(sql.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, notFound(invalidUUID), ErrNotFound)
	assert.ErrorIs(t, notFound(fmt.Errorf("mark read: %w", invalidUUID)), ErrNotFound)
	assert.Equal(t, connection, notFound(connection))
	assert.NotErrorIs(t, notFound(&pq.Error{Code: "23505"}), ErrNotFound)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "22P02"}))
	assert.False(t, isUniqueViolation(sql.ErrNoRows))
}
