package fields

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyFoldsCaseAccentsAndSeparators(t *testing.T) {
	assert.Equal(t, "salidacolacion", Key("Salida_Colación"))
	assert.Equal(t, Key("lunch_out"), Key("LunchOut"))
	assert.Equal(t, Key("HORA ENTRADA"), Key("horaEntrada"))
}

func TestLookupPriorityAndBlankSkipping(t *testing.T) {
	row := map[string]any{
		"entrada": "  ",
		"Entry":   "08:10",
		"IN":      "08:30",
	}
	v, ok := Lookup(row, "Entrada", "entry", "in")
	assert.True(t, ok)
	assert.Equal(t, "08:10", v)

	_, ok = Lookup(row, "salida", "exit")
	assert.False(t, ok)
}

func TestLookupPrefersExactKey(t *testing.T) {
	row := map[string]any{"date": "2024-01-01", "Date": "2024-01-02"}
	v, ok := Lookup(row, "Date")
	assert.True(t, ok)
	assert.Equal(t, "2024-01-02", v)
}

func TestLookupFoldedCollisionIsDeterministic(t *testing.T) {
	row := map[string]any{
		"entrada": "b",
		"ENTRADA": "a",
		"Hora":    "x",
	}
	for i := 0; i < 50; i++ {
		v, ok := Lookup(row, "Entrada")
		assert.True(t, ok)
		assert.Equal(t, "a", v)
	}

	// a blank first key gives way to the next one that folds the same
	row = map[string]any{"ENTRADA": " ", "entrada": "b"}
	for i := 0; i < 50; i++ {
		v, ok := Lookup(row, "Entrada")
		assert.True(t, ok)
		assert.Equal(t, "b", v)
	}
}

func TestStringRendersIntegralNumbers(t *testing.T) {
	s, ok := String(float64(20240301081500))
	assert.True(t, ok)
	assert.Equal(t, "20240301081500", s)

	_, ok = String("   ")
	assert.False(t, ok)
}

func TestNumberIsPermissive(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{float64(12), 12, true},
		{" 45.5 ", 45.5, true},
		{json.Number("30"), 30, true},
		{"abc", 0, false},
		{"NaN", 0, false},
		{math.Inf(1), 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, tc := range cases {
		got, ok := Number(tc.in)
		assert.Equal(t, tc.ok, ok, "%v", tc.in)
		assert.Equal(t, tc.want, got, "%v", tc.in)
	}
}

func TestRecordsUnwrapsEnvelopes(t *testing.T) {
	assert.Len(t, Records(Decode([]byte(`[1,2]`)), "data"), 2)
	assert.Len(t, Records(Decode([]byte(`{"Data":[1,2,3]}`)), "data"), 3)
	assert.Len(t, Records(Decode([]byte(`{"data":{"items":[1]}}`)), "data", "items"), 1)
	assert.Nil(t, Records(Decode([]byte(`"nope"`)), "data"))
	assert.Nil(t, Records(Decode([]byte(`{not json`)), "data"))
}
