// Package errors_test exercises the AppError type, factory functions, and
// error-chain helpers defined in pkg/errors.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/RD-Observatory/pkg/errors"
)

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.ErrCodeInternal, "unexpected failure"},
		{"dataset not found", errors.ErrCodeDatasetNotFound, "no dataset loaded"},
		{"unknown sector", errors.ErrCodeUnknownSector, "sector token not recognized"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
		})
	}
}

func TestError_FormatWithAndWithoutDetail(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeNotFound, "entity not found")
	assert.Equal(t, "[COMMON_003] entity not found", ae.Error())

	withDetail := ae.WithDetail("code=XK")
	assert.Equal(t, "[COMMON_003] entity not found: code=XK", withDetail.Error())
	// Original is unchanged.
	assert.Empty(t, ae.Detail)
}

func TestWrap_NilInReturnsNilOut(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.Wrap(nil, errors.ErrCodeDatabaseError, "query failed"))
}

func TestWrap_PreservesCodeWhenUnknown(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeDatasetNotFound, "no dataset")
	wrapped := errors.Wrap(inner, errors.ErrCodeUnknown, "loading failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, errors.ErrCodeDatasetNotFound, wrapped.Code)
	assert.True(t, stderrors.Is(wrapped, wrapped))
	assert.Equal(t, inner, stderrors.Unwrap(wrapped))
}

func TestIsCode_TraversesChain(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeSourceParseFailed, "bad csv")
	mid := errors.Wrap(inner, errors.ErrCodeImportFailed, "import aborted")
	outer := fmt.Errorf("outer: %w", mid)

	assert.True(t, errors.IsCode(outer, errors.ErrCodeSourceParseFailed))
	assert.True(t, errors.IsCode(outer, errors.ErrCodeImportFailed))
	assert.False(t, errors.IsCode(outer, errors.ErrCodeCacheError))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsNotFound(errors.NotFound("missing")))
	assert.True(t, errors.IsNotFound(errors.New(errors.ErrCodeDatasetNotFound, "missing")))
	assert.False(t, errors.IsNotFound(errors.Internal("boom")))
	assert.False(t, errors.IsNotFound(nil))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.ErrCodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.ErrCodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeValidation,
		errors.GetCode(errors.New(errors.ErrCodeValidation, "bad input")))
}

func TestHTTPStatus_Mapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code errors.ErrorCode
		want int
	}{
		{errors.ErrCodeBadRequest, http.StatusBadRequest},
		{errors.ErrCodeUnknownSector, http.StatusBadRequest},
		{errors.ErrCodeDatasetNotFound, http.StatusNotFound},
		{errors.ErrCodeServiceUnavailable, http.StatusServiceUnavailable},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
		{errors.ErrCodeCacheError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.code.HTTPStatus(), "code %s", tc.code)
	}
}
