package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentity(t *testing.T) {
	expired := Clone(ErrGone, "download link expired")

	assert.Equal(t, "download link expired", expired.Error())
	assert.Equal(t, http.StatusGone, expired.Status)
	assert.ErrorIs(t, expired, ErrGone)
	assert.ErrorIs(t, fmt.Errorf("resolve: %w", expired), ErrGone)
	assert.NotErrorIs(t, expired, ErrNotFound)
	assert.Equal(t, "resource expired", ErrGone.Message)
}

func TestWrapExposesCause(t *testing.T) {
	err := Wrap(sql.ErrNoRows, ErrNotFound.Code, ErrNotFound.Status, "timetable run not found")

	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "timetable run not found: sql: no rows in result set", err.Error())
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	typed := Clone(ErrUnsupportedFormat, "unsupported export format \"docx\"")
	assert.Same(t, typed, FromError(fmt.Errorf("render: %w", typed)))

	plain := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.Status)
}
