package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBrazilianDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain date", "15/01/2024", "2024-01-15", false},
		{"end of year", "31/12/2023", "2023-12-31", false},
		{"already ISO passes through", "2024-01-15", "2024-01-15", false},
		{"whitespace is not tolerated", " 05/03/2024 ", "", true},
		{"impossible day", "31/02/2024", "", true},
		{"empty", "", "", true},
		{"garbage", "not a date", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeBrazilianDate(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReferenceMonth(t *testing.T) {
	assert.Equal(t, "January 2024", ReferenceMonth("2024-01-15"))
	assert.Equal(t, "December 2023", ReferenceMonth("2023-12-31"))
	assert.Equal(t, "", ReferenceMonth("not-a-date"))
}
