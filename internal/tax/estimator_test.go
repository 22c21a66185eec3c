package tax

import (
	"errors"
	"math"
	"testing"

	"github.com/theirongolddev/spendwise/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name   string
		income int64
		raw    string
		tax    string
		slab   string
		form   string
	}{
		{"zero income", 0, "0", "0", "0–300,000", "Form A"},
		{"first slab upper edge", 300_000, "0", "0", "0–300,000", "Form A"},
		{"one above first edge", 300_001, "0.05", "0.052", "300,001–700,000", "Form A"},
		{"inside 5% slab", 500_000, "10000", "10400", "300,001–700,000", "Form A"},
		{"5% slab upper edge", 700_000, "20000", "20800", "300,001–700,000", "Form A"},
		{"one above 700k", 700_001, "20000.1", "20800.104", "700,001–1,000,000", "Form A or B"},
		{"10% slab upper edge", 1_000_000, "50000", "52000", "700,001–1,000,000", "Form A or B"},
		{"15% slab upper edge", 1_200_000, "80000", "83200", "1,000,001–1,200,000", "Form B"},
		{"20% slab upper edge", 1_500_000, "140000", "145600", "1,200,001–1,500,000", "Form B"},
		{"one above 1.5M", 1_500_001, "140000.3", "145600.312", "Above 1,500,000", "Form B or C"},
		{"deep in top slab", 2_000_000, "290000", "301600", "Above 1,500,000", "Form B or C"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Estimate(decimal.NewFromInt(tt.income))
			require.NoError(t, err)

			wantRaw := decimal.RequireFromString(tt.raw)
			wantTax := decimal.RequireFromString(tt.tax)
			assert.Truef(t, res.RawTax.Equal(wantRaw), "RawTax = %s, want %s", res.RawTax, wantRaw)
			assert.Truef(t, res.Tax.Equal(wantTax), "Tax = %s, want %s", res.Tax, wantTax)
			assert.Equal(t, tt.slab, res.SlabLabel)
			assert.Equal(t, tt.form, res.SuggestedForm)
			assert.Truef(t, res.Cess.Equal(wantTax.Sub(wantRaw)), "Cess = %s", res.Cess)
			assert.Truef(t, res.TakeHome.Equal(decimal.NewFromInt(tt.income).Sub(wantTax)), "TakeHome = %s", res.TakeHome)
		})
	}
}

func TestEstimate_RejectsNegative(t *testing.T) {
	_, err := Estimate(decimal.NewFromInt(-1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
}

func TestEstimateFloat_RejectsNonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -0.01} {
		_, err := EstimateFloat(v)
		assert.Truef(t, errors.Is(err, model.ErrInvalidInput), "EstimateFloat(%v) err = %v", v, err)
	}

	res, err := EstimateFloat(450000)
	require.NoError(t, err)
	assert.True(t, res.Tax.Equal(decimal.NewFromInt(7800)), "Tax = %s", res.Tax)
}

func TestEstimate_Idempotent(t *testing.T) {
	income := decimal.RequireFromString("1234567.89")
	a, err := Estimate(income)
	require.NoError(t, err)
	b, err := Estimate(income)
	require.NoError(t, err)
	assert.Equal(t, a.Tax.String(), b.Tax.String())
	assert.Equal(t, a.SlabLabel, b.SlabLabel)
}

func TestSchedule_ContiguousAndConsistent(t *testing.T) {
	brackets := Schedule()
	require.Len(t, brackets, 6)
	assert.True(t, brackets[0].Lower.IsZero())
	assert.True(t, brackets[len(brackets)-1].Unbounded)

	for i := 1; i < len(brackets); i++ {
		prev, cur := brackets[i-1], brackets[i]
		assert.Truef(t, cur.Lower.Equal(prev.Upper), "bracket %d lower %s != previous upper %s", i, cur.Lower, prev.Upper)
		assert.Truef(t, cur.Lower.GreaterThan(prev.Lower), "bracket %d not increasing", i)

		derived := prev.BaseTax.Add(prev.Upper.Sub(prev.Lower).Mul(prev.Rate))
		assert.Truef(t, cur.BaseTax.Equal(derived), "bracket %d base %s, derived %s", i, cur.BaseTax, derived)
	}
}

func TestSchedule_ReturnsCopy(t *testing.T) {
	s := Schedule()
	s[0].Label = "mutated"
	assert.Equal(t, "0–300,000", Schedule()[0].Label)
}

func TestParseIncome(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"500000", "500000", false},
		{"12,00,000", "1200000", false},
		{"₹ 7,50,000.50", "750000.5", false},
		{"1_500_000", "1500000", false},
		{"", "", true},
		{"abc", "", true},
	}

	for _, tt := range tests {
		got, err := ParseIncome(tt.in)
		if tt.wantErr {
			assert.Truef(t, errors.Is(err, model.ErrInvalidInput), "ParseIncome(%q) err = %v", tt.in, err)
			continue
		}
		require.NoError(t, err)
		assert.Truef(t, got.Equal(decimal.RequireFromString(tt.want)), "ParseIncome(%q) = %s, want %s", tt.in, got, tt.want)
	}
}
