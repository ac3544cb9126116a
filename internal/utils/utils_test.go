package utils

import (
	"context"
	"testing"
	"time"
)

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in      string
		wantX   float64
		wantY   float64
		wantErr bool
	}{
		{"0.5,0.25", 0.5, 0.25, false},
		{" 1 , 0 ", 1, 0, false},
		{"-0.1,1.2", -0.1, 1.2, false},
		{"0.5", 0, 0, true},
		{"0.5,0.2,0.1", 0, 0, true},
		{"a,0.2", 0, 0, true},
		{"0.2,b", 0, 0, true},
	}

	for _, tt := range tests {
		p, err := ParsePoint(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePoint(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && (p.X != tt.wantX || p.Y != tt.wantY) {
			t.Errorf("ParsePoint(%q) = %+v, want (%v, %v)", tt.in, p, tt.wantX, tt.wantY)
		}
	}
}

func TestFmtDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{65 * time.Second, "00:01:05"},
		{3661 * time.Second, "01:01:01"},
	}

	for _, tt := range tests {
		if got := FmtDuration(tt.d); got != tt.want {
			t.Errorf("FmtDuration(%v) = %v, want %v", tt.d, got, tt.want)
		}
	}
}

func TestNewSafeCommandCapturesStderr(t *testing.T) {
	cmd := NewSafeCommand(context.Background(), "sh", "-c", "echo boom >&2; exit 3")
	if err := cmd.Run(); err == nil {
		t.Fatal("Expected non-zero exit error")
	}
	if got := cmd.Stderr.String(); got != "boom\n" {
		t.Errorf("Expected captured stderr %q, got %q", "boom\n", got)
	}
}
