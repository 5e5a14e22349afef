package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewAppError(ErrTypeEmptyResult, "no usable rows", nil),
			want: "[EMPTY_RESULT] no usable rows",
		},
		{
			name: "with cause",
			err:  NewAppError(ErrTypeFetch, "request failed", errors.New("connection refused")),
			want: "[FETCH] request failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewFetchError("request failed", cause)

	assert.True(t, errors.Is(err, cause))

	wrapped := fmt.Errorf("scrape: %w", err)
	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeFetch, appErr.Type)
}

func TestIsType(t *testing.T) {
	err := NewExtractionError("table missing", nil)

	assert.True(t, IsType(err, ErrTypeExtraction))
	assert.False(t, IsType(err, ErrTypeFetch))
	assert.False(t, IsType(errors.New("plain"), ErrTypeExtraction))
	assert.True(t, IsType(fmt.Errorf("wrapped: %w", err), ErrTypeExtraction))
}

func TestWithContext(t *testing.T) {
	err := NewMalformedFieldError("Volume", "abc")

	assert.Equal(t, "Volume", err.Context["field"])
	assert.Equal(t, "abc", err.Context["value"])

	err.WithContext("row", 3)
	assert.Equal(t, 3, err.Context["row"])
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		err      *AppError
		wantType ErrorType
	}{
		{NewFetchError("x", nil), ErrTypeFetch},
		{NewExtractionError("x", nil), ErrTypeExtraction},
		{NewMalformedFieldError("Date", "??"), ErrTypeMalformedField},
		{NewMissingFieldError("Close"), ErrTypeMalformedField},
		{NewOutOfRangeError("Volume", -1), ErrTypeOutOfRange},
		{NewEmptyResultError("AAPL"), ErrTypeEmptyResult},
		{NewExportError("x", nil), ErrTypeExport},
		{NewConfigError("x", nil), ErrTypeConfig},
	}

	for _, tt := range tests {
		t.Run(string(tt.wantType), func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}
