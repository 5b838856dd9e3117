package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataDate(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		override string
		want     string
		ok       bool
	}{
		{"osi saf stamp", testInput, "", "2022-01-01", true},
		{"date only stamp", "ice_conc_sh_20230315.nc", "", "2023-03-15", true},
		{"override wins", testInput, "2021-12-31", "2021-12-31", true},
		{"no stamp", "/data/sea_ice.nc", "", "", false},
		{"invalid calendar date", "ice_20221340.nc", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DataDate(tt.path, tt.override)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
