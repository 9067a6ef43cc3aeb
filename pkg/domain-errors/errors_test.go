package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndCodes(t *testing.T) {
	err := New(CodeSubmission, "ledger rejected operation")
	assert.Equal(t, "ledger rejected operation", err.Error())
	assert.True(t, HasCode(err, CodeSubmission))
	assert.False(t, HasCode(err, CodeTimeout))
	assert.Equal(t, CodeSubmission, CodeOf(err))
}

func TestNewValidationCarriesField(t *testing.T) {
	err := NewValidation("docHash", "must be 0x followed by exactly 64 hex digits")
	assert.True(t, Is(err, CodeValidation))
	assert.Equal(t, "docHash", FieldOf(err))
	assert.Contains(t, err.Error(), "docHash")
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeRead, "read getLatest")
	assert.True(t, HasCode(err, CodeRead))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrapOpPreservesCodeAndField(t *testing.T) {
	inner := NewValidation("ocrScore", "must be between 0 and 10000")
	wrapped := WrapOp(inner, "attest")
	require.Error(t, wrapped)
	assert.True(t, HasCode(wrapped, CodeValidation))
	assert.Equal(t, "ocrScore", FieldOf(wrapped))
	assert.Contains(t, wrapped.Error(), "attest")

	assert.NoError(t, WrapOp(nil, "attest"))
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(fmt.Errorf("plain")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:    http.StatusBadRequest,
		CodeNotFound:      http.StatusNotFound,
		CodeTimeout:       http.StatusGatewayTimeout,
		CodeSubmission:    http.StatusConflict,
		CodeRead:          http.StatusInternalServerError,
		CodeConfiguration: http.StatusInternalServerError,
		CodeUnauthorized:  http.StatusUnauthorized,
		CodeRateLimited:   http.StatusTooManyRequests,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}
