package fiscal

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput() SealInput {
	return SealInput{
		SectorCode:        "PL",
		TicketTypeCode:    "INT",
		ProgressiveNumber: 42,
		EmissionDate:      "20260315",
		EmissionTime:      "2130",
		GrossAmount:       decimal.RequireFromString("49.50"),
	}
}

func TestComputeSealIsDeterministic(t *testing.T) {
	sealer, err := NewSealer("box-office-key")
	require.NoError(t, err)

	first := sealer.ComputeSeal(sampleInput())
	second := sealer.ComputeSeal(sampleInput())

	assert.Equal(t, first, second)
	assert.Len(t, first, 32)
	assert.Equal(t, strings.ToUpper(first), first)
}

func TestComputeSealBindsEveryField(t *testing.T) {
	sealer, err := NewSealer("box-office-key")
	require.NoError(t, err)
	base := sealer.ComputeSeal(sampleInput())

	mutations := map[string]func(*SealInput){
		"sector":      func(in *SealInput) { in.SectorCode = "GA" },
		"ticket type": func(in *SealInput) { in.TicketTypeCode = "RID" },
		"progressive": func(in *SealInput) { in.ProgressiveNumber = 43 },
		"date":        func(in *SealInput) { in.EmissionDate = "20260316" },
		"time":        func(in *SealInput) { in.EmissionTime = "2131" },
		"amount":      func(in *SealInput) { in.GrossAmount = decimal.RequireFromString("49.51") },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			in := sampleInput()
			mutate(&in)
			assert.NotEqual(t, base, sealer.ComputeSeal(in))
		})
	}
}

func TestComputeSealNormalizesAmountScale(t *testing.T) {
	sealer, err := NewSealer("")
	require.NoError(t, err)

	a := sampleInput()
	b := sampleInput()
	b.GrossAmount = decimal.RequireFromString("49.5")

	assert.Equal(t, sealer.ComputeSeal(a), sealer.ComputeSeal(b))
}

func TestSealDependsOnKey(t *testing.T) {
	keyed, err := NewSealer("key-one")
	require.NoError(t, err)
	other, err := NewSealer("key-two")
	require.NoError(t, err)

	assert.NotEqual(t, keyed.ComputeSeal(sampleInput()), other.ComputeSeal(sampleInput()))
}

func TestVerifySeal(t *testing.T) {
	sealer, err := NewSealer("box-office-key")
	require.NoError(t, err)
	seal := sealer.ComputeSeal(sampleInput())

	assert.True(t, sealer.VerifySeal(sampleInput(), seal))
	assert.True(t, sealer.VerifySeal(sampleInput(), strings.ToLower(seal)))

	tampered := sampleInput()
	tampered.GrossAmount = decimal.RequireFromString("0.00")
	assert.False(t, sealer.VerifySeal(tampered, seal))
}

func TestNewSealerRejectsLongKey(t *testing.T) {
	_, err := NewSealer(strings.Repeat("k", 65))
	assert.Error(t, err)
}

func TestEmissionStamp(t *testing.T) {
	rome, err := LoadLocation("Europe/Rome")
	require.NoError(t, err)

	now := time.Date(2026, 3, 15, 22, 45, 0, 0, time.UTC)
	date, clock := EmissionStamp(now, rome)

	assert.Equal(t, "20260315", date)
	assert.Equal(t, "2345", clock)

	date, clock = EmissionStamp(time.Date(2026, 3, 15, 23, 30, 0, 0, time.UTC), rome)
	assert.Equal(t, "20260316", date)
	assert.Equal(t, "0030", clock)
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = LoadLocation("Mars/Olympus")
	assert.Error(t, err)
}
