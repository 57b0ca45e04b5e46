package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		input string
		want  time.Time
		ok    bool
	}{
		{"2025-06-01", want, true},
		{"01.06.2025", want, true},
		{"01/06/2025", want, true},
		{"01.06.25", want, true},
		{"01.06.2025 14:30", time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC), true},
		{"N/A", time.Time{}, false},
		{"", time.Time{}, false},
		{"31.02.2025", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}
