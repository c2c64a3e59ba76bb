package models

import (
	"testing"

	"github.com/sh3xu/logbook/internal/common"
	"github.com/stretchr/testify/require"
)

func TestPayload_MarshalUnmarshal(t *testing.T) {
	p := &Payload{
		Date:    "2026-10-17",
		Title:   "Long run",
		Text:    "Felt good after the first 5k.",
		Mood:    "happy",
		Metrics: map[string]float64{"distance_km": 12.5, "sleep_h": 7},
	}

	b, err := p.Marshal()
	require.NoError(t, err)
	require.JSONEq(t, `{"date":"2026-10-17","title":"Long run","text":"Felt good after the first 5k.","mood":"happy","metrics":{"distance_km":12.5,"sleep_h":7}}`, string(b))

	got, err := UnmarshalPayload(b)
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestUnmarshalPayload_Invalid(t *testing.T) {
	_, err := UnmarshalPayload([]byte("not json"))
	require.ErrorIs(t, err, common.ErrorIncorrectPayload)
}

func TestPayload_Validate(t *testing.T) {
	require.NoError(t, (&Payload{Date: "2026-01-01", Title: "t"}).Validate())
	require.ErrorIs(t, (&Payload{Date: "2026-01-01", Title: "  "}).Validate(), common.ErrorIncorrectPayload)
	require.ErrorIs(t, (&Payload{Title: "t"}).Validate(), common.ErrorIncorrectPayload)
}

func TestMetricsFromStrings(t *testing.T) {
	m, err := MetricsFromStrings([]string{"steps=10400", "weight = 71.3"})
	require.NoError(t, err)
	require.Equal(t, map[string]float64{"steps": 10400, "weight": 71.3}, m)

	m, err = MetricsFromStrings(nil)
	require.NoError(t, err)
	require.Nil(t, m)

	_, err = MetricsFromStrings([]string{"justname"})
	require.ErrorIs(t, err, common.ErrorIncorrectPayload)

	_, err = MetricsFromStrings([]string{"steps=many"})
	require.ErrorIs(t, err, common.ErrorIncorrectPayload)

	_, err = MetricsFromStrings([]string{"=3"})
	require.ErrorIs(t, err, common.ErrorIncorrectPayload)
}
