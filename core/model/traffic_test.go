package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrafficCondition(t *testing.T) {
	cases := []struct {
		in   string
		want TrafficCondition
	}{
		{"0", TrafficLow},
		{"1", TrafficModerate},
		{"2", TrafficHigh},
		{"low", TrafficLow},
		{"Moderate", TrafficModerate},
		{" HIGH ", TrafficHigh},
	}
	for _, c := range cases {
		got, err := ParseTrafficCondition(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseTrafficCondition_Invalid(t *testing.T) {
	for _, in := range []string{"3", "-1", "heavy", "", "1.5", "1.0", "2.0", "1e0", "0x1"} {
		_, err := ParseTrafficCondition(in)
		var verr *ValidationError
		assert.True(t, errors.As(err, &verr), "input %q", in)
	}
}

func TestTrafficRoundTrip(t *testing.T) {
	for _, tc := range TrafficConditions() {
		s, err := tc.MarshalCSV()
		require.NoError(t, err)
		var back TrafficCondition
		require.NoError(t, back.UnmarshalCSV(s))
		assert.Equal(t, tc, back)

		txt, err := tc.MarshalText()
		require.NoError(t, err)
		require.NoError(t, back.UnmarshalText(txt))
		assert.Equal(t, tc, back)
	}
	assert.Equal(t, "unknown", TrafficCondition(5).String())
	_, err := TrafficFromOrdinal(5)
	assert.Error(t, err)
}
