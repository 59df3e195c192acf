package ratelimit

import "testing"

func TestBucketKey(t *testing.T) {
	got := bucketKey("/api/users", "192.168.1.10")
	want := "rl:/api/users:192.168.1.10"
	if got != want {
		t.Errorf("bucketKey() = %q, want %q", got, want)
	}
}

func TestBucketTTLSeconds(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		refill   int
		want     int
	}{
		{"even division", 10, 5, 4},
		{"rounds up", 10, 3, 8},
		{"capacity below rate", 1, 10, 2},
		{"equal", 5, 5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bucketTTLSeconds(tt.capacity, tt.refill); got != tt.want {
				t.Errorf("bucketTTLSeconds(%d, %d) = %d, want %d", tt.capacity, tt.refill, got, tt.want)
			}
		})
	}
}

func TestResultBypassed(t *testing.T) {
	if !(Result{Allowed: true, Remaining: -1}).Bypassed() {
		t.Error("Remaining -1 should report bypassed")
	}
	if (Result{Allowed: true, Remaining: 0}).Bypassed() {
		t.Error("Remaining 0 should not report bypassed")
	}
}
