package discord

import (
	"strings"
	"testing"
)

func TestMessagePoints(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 0},
		{"too short", "hey", 0},
		{"exactly at minimum", "12345", 0},
		{"just over minimum", "123456", 1},
		{"short message", "a short but real message", 1},
		{"exactly fifty", strings.Repeat("x", 50), 1},
		{"over fifty", strings.Repeat("x", 51), 2},
		{"exactly hundred", strings.Repeat("x", 100), 2},
		{"over hundred", strings.Repeat("x", 101), 3},
		{"essay", strings.Repeat("x", 500), 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MessagePoints(tc.content); got != tc.want {
				t.Errorf("MessagePoints(%d chars) = %d, want %d", len(tc.content), got, tc.want)
			}
		})
	}
}
