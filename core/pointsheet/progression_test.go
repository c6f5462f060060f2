package pointsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvance(t *testing.T) {
	tests := []struct {
		name          string
		level, days   int
		success       bool
		wantLevel     int
		wantDays      int
		wantCompleted bool
	}{
		{name: "failed day leaves state untouched", level: 1, days: 5, success: false, wantLevel: 1, wantDays: 5},
		{name: "failed day at level 4", level: 4, days: 9, success: false, wantLevel: 4, wantDays: 9},
		{name: "successful day increments", level: 1, days: 0, success: true, wantLevel: 1, wantDays: 1},
		{name: "level 1 promotes at 10 days", level: 1, days: 9, success: true, wantLevel: 2, wantDays: 0},
		{name: "level 2 below requirement", level: 2, days: 8, success: true, wantLevel: 2, wantDays: 9},
		{name: "level 2 promotes at 10 days", level: 2, days: 9, success: true, wantLevel: 3, wantDays: 0},
		{name: "level 3 does not promote at 10 days", level: 3, days: 9, success: true, wantLevel: 3, wantDays: 10},
		{name: "level 3 promotes at 15 days", level: 3, days: 14, success: true, wantLevel: 4, wantDays: 0},
		{name: "level 4 keeps accumulating", level: 4, days: 3, success: true, wantLevel: 4, wantDays: 4},
		{name: "level 4 completion observed", level: 4, days: 9, success: true, wantLevel: 4, wantDays: 10, wantCompleted: true},
		{name: "level 4 past completion keeps accumulating", level: 4, days: 12, success: true, wantLevel: 4, wantDays: 13, wantCompleted: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, days, completed := Advance(tt.level, tt.days, tt.success)
			assert.Equal(t, tt.wantLevel, level)
			assert.Equal(t, tt.wantDays, days)
			assert.Equal(t, tt.wantCompleted, completed)
		})
	}
}

// replaying the same day twice from the same state yields the same result
func TestAdvanceDeterministic(t *testing.T) {
	for level := 1; level <= 4; level++ {
		for days := 0; days < Requirement(level); days++ {
			l1, d1, c1 := Advance(level, days, true)
			l2, d2, c2 := Advance(level, days, true)
			assert.Equal(t, l1, l2)
			assert.Equal(t, d1, d2)
			assert.Equal(t, c1, c2)
		}
	}
}

func TestRequirement(t *testing.T) {
	assert.Equal(t, 10, Requirement(1))
	assert.Equal(t, 10, Requirement(2))
	assert.Equal(t, 15, Requirement(3))
	assert.Equal(t, 10, Requirement(4))
}
