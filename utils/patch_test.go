package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func TestUpdatesFromPtrDTO(t *testing.T) {
	type dto struct {
		Name    *string  `json:"name"`
		Phone   *string  `json:"phone"`
		Cost    *float64 `json:"unit_cost"`
		Skipped *string  `json:"-"`
	}
	d := dto{Name: strPtr("A"), Cost: f64Ptr(1.5), Skipped: strPtr("x")}

	got := UpdatesFromPtrDTO(&d, nil)
	assert.Equal(t, map[string]any{"name": "A", "unit_cost": 1.5}, got)
}

func TestUpdatesFromPtrDTORenames(t *testing.T) {
	type dto struct {
		DOB *string `json:"dob"`
	}
	d := dto{DOB: strPtr("1990-01-01")}

	got := UpdatesFromPtrDTO(&d, map[string]string{"dob": "date_of_birth"})
	assert.Equal(t, map[string]any{"date_of_birth": "1990-01-01"}, got)
}

func TestNormalizePtrDTO(t *testing.T) {
	type dto struct {
		Name *string  `json:"name"`
		Cost *float64 `json:"unit_cost"`
		Nil  *string  `json:"untouched"`
	}
	d := dto{Name: strPtr("  padded  "), Cost: f64Ptr(1.005)}
	NormalizePtrDTO(&d)

	assert.Equal(t, "padded", *d.Name)
	assert.InDelta(t, 1.0, *d.Cost, 0.011)
	assert.Nil(t, d.Nil)
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 5, ParseIntDefault("5", 1))
	assert.Equal(t, 5, ParseIntDefault(" 5 ", 1))
	assert.Equal(t, 1, ParseIntDefault("nope", 1))
	assert.Equal(t, 1, ParseIntDefault("-3", 1))
	assert.Equal(t, 1, ParseIntDefault("", 1))
}
