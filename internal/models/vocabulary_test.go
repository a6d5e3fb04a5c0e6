package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusSets(t *testing.T) {
	testCases := []struct {
		status      Status
		editable    bool
		visible     bool
		declinable  bool
		finalizable bool
	}{
		{StatusNotEntered, true, false, false, false},
		{StatusEntered, true, false, false, false},
		{StatusPublished, false, true, true, true},
		{StatusDeclined, false, true, false, true},
		{StatusRecorded, false, true, false, false},
		{Status(42), false, false, false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.status.String(), func(t *testing.T) {
			assert.Equal(t, tc.editable, tc.status.Editable())
			assert.Equal(t, tc.visible, tc.status.VisibleToStudent())
			assert.Equal(t, tc.declinable, tc.status.Declinable())
			assert.Equal(t, tc.finalizable, tc.status.Finalizable())
		})
	}

	assert.Equal(t, []Status{StatusPublished, StatusDeclined}, FinalizableStatuses())
}

func TestResultOrdering(t *testing.T) {
	assert.False(t, ResultEmpty.Passing())
	assert.False(t, ResultAbsent.Passing())
	assert.False(t, ResultFailed.Passing())
	assert.False(t, ResultPostponed.Passing())
	assert.True(t, Result18.Passing())
	assert.True(t, Result30CumLaude.Passing())
	assert.False(t, Result(99).Passing())

	assert.Len(t, AllResults(), 18)

	for n := 18; n <= 30; n++ {
		r, ok := Grade(n)
		require.True(t, ok)
		assert.Equal(t, fmt.Sprint(n), r.String())
	}
	_, ok := Grade(17)
	assert.False(t, ok)
	_, ok = Grade(31)
	assert.False(t, ok)

	assert.Equal(t, "30 cum laude", Result30CumLaude.String())
	assert.Equal(t, "postponed", ResultPostponed.String())
}

func TestCanBeDeclined(t *testing.T) {
	reg := Registration{Status: StatusPublished, Result: Result27}
	assert.True(t, reg.CanBeDeclined())

	reg.Result = ResultPostponed
	assert.False(t, reg.CanBeDeclined())

	reg = Registration{Status: StatusEntered, Result: Result27}
	assert.False(t, reg.CanBeDeclined())
}

func TestDomainErrorMatching(t *testing.T) {
	err := NewDomainError("PublishResults", ErrNoOp, "no results to publish")
	wrapped := fmt.Errorf("publish: %w", err)

	assert.True(t, errors.Is(wrapped, ErrNoOp))
	assert.False(t, errors.Is(wrapped, ErrForbidden))
	assert.True(t, IsBusiness(wrapped))
	assert.Equal(t, "no results to publish", Message(wrapped))

	infra := errors.New("connection refused")
	assert.False(t, IsBusiness(infra))
	assert.False(t, IsBusiness(WrapError("CheckVocabulary", ErrReferenceData, "missing status", infra)))
	assert.NotEqual(t, "connection refused", Message(infra))
}

func TestResultUpdateValidate(t *testing.T) {
	ok := ResultUpdate{RegistrationID: 3, ResultID: Result24}
	assert.NoError(t, ok.Validate())

	missing := ResultUpdate{ResultID: Result24}
	assert.Error(t, missing.Validate())
}

func TestKindOf(t *testing.T) {
	assert.Nil(t, KindOf(nil))
	assert.Nil(t, KindOf(errors.New("disk full")))
	assert.Equal(t, ErrConflict, KindOf(fmt.Errorf("register: %w",
		WrapError("CreateRegistration", ErrConflict, "already registered for this exam call", errors.New("23505")))))
	assert.Equal(t, ErrNotVisible, KindOf(NewDomainError("GetResult", ErrNotVisible, "not yet published")))
}
