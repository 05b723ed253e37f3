package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpErrorUnwrapsKindAndCause(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("outer: %w", &OpError{Op: "add book", Kind: ErrPersistence, Err: cause})

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "outer: add book: disk full", err.Error())
	assert.Equal(t, "get book: not found", (&OpError{Op: "get book", Kind: ErrNotFound}).Error())
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		err  error
		kind ErrorKind
	}{
		{&OpError{Op: "x", Kind: ErrNotFound}, KindNotFound},
		{&OpError{Op: "x", Kind: ErrUniqueViolation}, KindUniqueViolation},
		{&OpError{Op: "x", Kind: ErrInsufficientCopies}, KindInsufficientCopies},
		{&OpError{Op: "x", Kind: ErrAlreadyReturned}, KindAlreadyReturned},
		{opErr("x", ErrInvalidInput, "title is required"), KindValidation},
		{&OpError{Op: "x", Kind: ErrPersistence}, KindPersistence},
		{&OpError{Op: "x", Kind: ErrSchemaTooNew}, KindPersistence},
		{&OpError{Op: "x", Kind: ErrCorruptStore}, KindCorruptStore},
		{&OpError{Op: "x", Kind: ErrInvalidCredentials}, KindAuthentication},
		{errors.New("boom"), KindInternal},
	}
	for _, tc := range cases {
		f := Describe(tc.err)
		require.NotNil(t, f)
		assert.Equal(t, tc.kind, f.Kind, "%v", tc.err)
		assert.NotEmpty(t, f.Message)
	}
	assert.Nil(t, Describe(nil))
	assert.Equal(t, "Invalid input: title is required.", Describe(opErr("x", ErrInvalidInput, "title is required")).Message)
}

func TestFailureJSON(t *testing.T) {
	raw, err := json.Marshal(Describe(&OpError{Op: "x", Kind: ErrNotFound}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"errorKind":"NotFoundError","message":"The requested record does not exist."}`, string(raw))
}

func TestClassifyPassesThroughOpError(t *testing.T) {
	in := &OpError{Op: "a", Kind: ErrAlreadyReturned}
	assert.Same(t, in, classify("b", in))
	assert.Nil(t, classify("b", nil))
	assert.ErrorIs(t, classify("b", errors.New("io")), ErrPersistence)
}
