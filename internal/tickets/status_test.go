package tickets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusValid, StatusUsed, true},
		{StatusValid, StatusCancelled, true},
		{StatusValid, StatusValid, false},
		{StatusUsed, StatusCancelled, false},
		{StatusUsed, StatusValid, false},
		{StatusCancelled, StatusValid, false},
		{StatusCancelled, StatusUsed, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}

	assert.False(t, StatusValid.IsTerminal())
	assert.True(t, StatusUsed.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())

	assert.True(t, StatusUsed.IsLive())
	assert.False(t, StatusCancelled.IsLive())
}

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]Status{
		"valid":     StatusValid,
		"active":    StatusValid,
		" Used ":    StatusUsed,
		"cancelled": StatusCancelled,
	} {
		got, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseStatus("refunded")
	assert.Error(t, err)
}
