package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name               string
		page, size         int
		wantOffset, wantLn int
	}{
		{"first page", 1, 10, 0, 10},
		{"third page", 3, 20, 40, 20},
		{"zero page", 0, 5, 0, 5},
		{"too large", 2, 1000, 10, DefaultPageSize},
		{"negative size", 2, -1, 10, DefaultPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			off, lim := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.wantOffset, off)
			assert.Equal(t, tt.wantLn, lim)
		})
	}
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 7, ParseIntDefault("x", 7))
	assert.Equal(t, 3, ParseIntDefault("3", 7))
}
