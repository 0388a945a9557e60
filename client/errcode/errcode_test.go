package errcode

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromHTTPStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		want   ErrorCode
	}{
		{http.StatusUnauthorized, ErrorCodeUnauthorized},
		{http.StatusForbidden, ErrorCodeDenied},
		{http.StatusNotFound, ErrorCodeNotFound},
		{http.StatusTooManyRequests, ErrorCodeTooManyRequests},
		{http.StatusBadRequest, ErrorCodeInvalid},
		{http.StatusInternalServerError, ErrorCodeUnavailable},
		{http.StatusTeapot, ErrorCodeInvalid},
		{http.StatusOK, ErrorCodeUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FromHTTPStatus(tc.status))
	}
}

func TestErrorCodeStringAndMessage(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", ErrorCodeNotFound.String())
	assert.Equal(t, "entity not found", ErrorCodeNotFound.Message())
}

func TestWithDetailCarriesDetailInErrorString(t *testing.T) {
	err := ErrorCodeDenied.WithDetail("missing role: editor")
	assert.Equal(t, ErrorCodeDenied, err.ErrorCode())
	assert.Contains(t, err.Error(), "missing role: editor")
	assert.Contains(t, err.Error(), "DENIED")
}
