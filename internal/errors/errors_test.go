package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCode(t *testing.T) {
	base := InvalidInput("data must be a 2-D array")
	wrapped := Wrap(base, "chat request rejected")

	assert.Equal(t, CodeInvalidInput, GetCode(wrapped))
	assert.Equal(t, "chat request rejected: data must be a 2-D array", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, base))
}

func TestWrapPlainError(t *testing.T) {
	wrapped := Wrapf(fmt.Errorf("boom"), "step %d", 2)
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestAsFindsNestedAppError(t *testing.T) {
	inner := ExternalServiceError("openrouter", fmt.Errorf("status 500")).WithDetail(`{"error":"overloaded"}`)
	outer := fmt.Errorf("chat: %w", inner)

	appErr, ok := As(outer)
	require.True(t, ok)
	assert.Equal(t, `{"error":"overloaded"}`, appErr.Detail)
	assert.Equal(t, CodeExternalService, GetCode(outer))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{InvalidInput("bad"), http.StatusBadRequest},
		{ValidationError("bad"), http.StatusBadRequest},
		{ExternalServiceError("llm", nil), http.StatusBadGateway},
		{Unavailable("busy"), http.StatusServiceUnavailable},
		{NotFound("chat"), http.StatusNotFound},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(GetCode(tt.err), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
