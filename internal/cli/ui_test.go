package cli

import (
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{320, "320 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
	}

	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{340 * time.Millisecond, "340ms"},
		{1520 * time.Millisecond, "1.52s"},
		{90 * time.Second, "1m30s"},
		{3601 * time.Second, "1h0m1s"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatRate(t *testing.T) {
	if got := formatRate(2048, 2*time.Second); got != "1.0 KB/s" {
		t.Errorf("formatRate(2048, 2s) = %q, want %q", got, "1.0 KB/s")
	}
	if got := formatRate(100, 0); got != "-" {
		t.Errorf("formatRate(100, 0) = %q, want %q", got, "-")
	}
}
