package estimator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func camry() Input {
	return Input{Year: 2020, Make: "Toyota", Model: "Camry", Mileage: 30000, Condition: "good", Region: "normal"}
}

func TestEstimate_Camry(t *testing.T) {
	e := New(Standard, 2025)

	got := e.Estimate(camry())
	assert.Equal(t, 15000.0, got.Fair)
	assert.Equal(t, 12750.0, got.Low)
	assert.Equal(t, 17250.0, got.Max)
	assert.Less(t, got.Low, got.Fair)
	assert.Less(t, got.Fair, got.Max)
	assert.Equal(t,
		"Based on 2020 Toyota Camry with 30,000 miles in good condition. Market analysis shows similar vehicles trading at $15,000. This estimate considers current market demand and vehicle history.",
		got.Rationale)

	assert.Equal(t, got, e.Estimate(camry()), "estimate must be reproducible")
}

func TestEstimate_Simplified(t *testing.T) {
	got := New(Simplified, 2025).Estimate(camry())
	assert.Equal(t, 15000.0, got.Fair)
	assert.Equal(t, 10500.0, got.Low)
	assert.Equal(t, 17250.0, got.Max)
}

func TestEstimate_MileageBreakpoints(t *testing.T) {
	e := New(Standard, 2025)
	mileages := []int{30000, 50000, 50001, 75001, 100001}
	wantFair := []float64{15000, 15000, 13500, 12000, 10000}

	prev := -1.0
	for i, m := range mileages {
		in := camry()
		in.Mileage = m
		got := e.Estimate(in)
		assert.Equal(t, wantFair[i], got.Fair, "mileage %d", m)
		if prev >= 0 {
			assert.LessOrEqual(t, got.Fair, prev, "mileage %d", m)
		}
		prev = got.Fair
	}
}

func TestEstimate_Conditions(t *testing.T) {
	e := New(Standard, 2025)
	tests := []struct {
		condition string
		fair      float64
	}{
		{"excellent", 16500},
		{"Good", 15000},
		{"FAIR", 12750},
		{"poor", 10500},
		{"salvage", 15000},
		{"", 15000},
	}
	for _, tt := range tests {
		t.Run(tt.condition, func(t *testing.T) {
			in := camry()
			in.Condition = tt.condition
			assert.Equal(t, tt.fair, e.Estimate(in).Fair)
		})
	}
}

func TestEstimate_Floor(t *testing.T) {
	in := Input{Year: 1995, Make: "Honda", Model: "Civic", Mileage: 250000, Condition: "poor"}
	got := New(Standard, 2025).Estimate(in)
	assert.Equal(t, 3000.0, got.Fair)
	assert.Equal(t, 2550.0, got.Low)
	assert.Equal(t, 3450.0, got.Max)
}

func TestFormulaByName(t *testing.T) {
	f, ok := FormulaByName("Simplified")
	require.True(t, ok)
	assert.Equal(t, Simplified, f)

	_, ok = FormulaByName("neural")
	assert.False(t, ok)
}

func TestNewByName(t *testing.T) {
	in := Input{Year: 2020, Make: "Toyota", Model: "Camry", Mileage: 30000, Condition: "good"}
	e, err := NewByName("standard", 2025)
	require.NoError(t, err)
	assert.Equal(t, New(Standard, 2025).Estimate(in), e.Estimate(in))

	e, err = NewByName("neural", 2025)
	assert.Error(t, err)
	assert.Nil(t, e)
}

func TestThousands(t *testing.T) {
	assert.Equal(t, "0", Thousands(0))
	assert.Equal(t, "999", Thousands(999))
	assert.Equal(t, "1,234,567", Thousands(1234567))
}
