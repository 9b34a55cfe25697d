package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchscope/pitchscope/pkg/evalerrors"
)

func TestMapEvalError_StatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"input error", evalerrors.NewInputError("idea", "too short"), http.StatusBadRequest},
		{"ingestion error", evalerrors.NewIngestionError("pdf", errors.New("corrupt")), http.StatusBadGateway},
		{"store unavailable", evalerrors.ErrStoreUnavailable, http.StatusInternalServerError},
		{"not found", evalerrors.ErrNotFound, http.StatusNotFound},
		{"cancelled", evalerrors.ErrCancelled, http.StatusRequestTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he := mapEvalError(tt.err)
			require.NotNil(t, he)
			assert.Equal(t, tt.code, he.Code)
		})
	}
}

func TestMapEvalError_InputErrorCarriesFieldName(t *testing.T) {
	he := mapEvalError(evalerrors.NewInputError("market", "too short"))
	body, ok := he.Message.(*ErrorResponse)
	require.True(t, ok)
	assert.Equal(t, "market", body.Field)
}
