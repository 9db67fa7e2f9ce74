package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryAndSeverity(t *testing.T) {
	tests := []struct {
		code      string
		category  Category
		severity  Severity
		retryable bool
	}{
		{ErrCodeConfigInvalid, CategoryConfig, SeverityError, false},
		{ErrCodeCorpusEmpty, CategoryCorpus, SeverityFatal, false},
		{ErrCodeVectorUnavailable, CategoryService, SeverityWarning, true},
		{ErrCodeNetworkTimeout, CategoryService, SeverityWarning, true},
		{ErrCodeInvalidTopK, CategoryArgument, SeverityError, false},
		{ErrCodeInternal, CategoryInternal, SeverityError, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "boom", nil)
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.severity, err.Severity)
			assert.Equal(t, tt.retryable, err.Retryable)
		})
	}
}

func TestRetrievalError_ErrorFormat(t *testing.T) {
	err := New(ErrCodeInvalidTopK, "top_k must be positive", nil)
	assert.Equal(t, "[ERR_401_INVALID_TOPK] top_k must be positive", err.Error())
}

func TestRetrievalError_IsMatchesByCode(t *testing.T) {
	err := RetrievalUnavailable("vector service down", nil)
	target := &RetrievalError{Code: ErrCodeVectorUnavailable}

	assert.True(t, errors.Is(err, target))
	assert.False(t, errors.Is(err, &RetrievalError{Code: ErrCodeInternal}))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrCodeEmbeddingUnavailable, cause)

	require.NotNil(t, err)
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, IsRetryable(err))
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(IndexBuildError("corpus is empty", nil)))
	assert.False(t, IsFatal(InvalidArgument("bad top_k")))
	assert.False(t, IsFatal(nil))
}

func TestHasCode_WrappedChain(t *testing.T) {
	inner := RetrievalUnavailable("timeout", nil)
	outer := fmt.Errorf("retrieve: %w", inner)

	assert.True(t, HasCode(outer, ErrCodeVectorUnavailable))
	assert.Equal(t, ErrCodeVectorUnavailable, GetCode(outer))
	assert.Empty(t, GetCode(errors.New("plain")))
}
