package accesslog

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEventWireFormat(t *testing.T) {
	target := "http://user-service:8081"
	event := Event{
		Timestamp:   time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC),
		ClientIP:    "192.168.1.10",
		Method:      "GET",
		Path:        "/api/users/42",
		TargetURL:   &target,
		StatusCode:  200,
		LatencyMs:   12,
		RateLimited: false,
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent() error = %v", err)
	}

	// Field names are a wire contract with dashboard consumers.
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for _, field := range []string{"timestamp", "clientIp", "method", "path", "targetUrl", "statusCode", "latencyMs", "rateLimited"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("wire form missing field %q", field)
		}
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	if decoded.ClientIP != event.ClientIP || decoded.StatusCode != event.StatusCode {
		t.Errorf("DecodeEvent() = %+v, want %+v", decoded, event)
	}
	if decoded.TargetURL == nil || *decoded.TargetURL != target {
		t.Error("TargetURL should survive the round trip")
	}
}

func TestEventNilTargetURL(t *testing.T) {
	data, err := EncodeEvent(Event{
		ClientIP:   "10.0.0.1",
		Method:     "GET",
		Path:       "/nowhere",
		StatusCode: 404,
	})
	if err != nil {
		t.Fatalf("EncodeEvent() error = %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}
	if decoded.TargetURL != nil {
		t.Errorf("TargetURL = %v, want nil for unmatched request", *decoded.TargetURL)
	}
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	if _, err := DecodeEvent([]byte("not json")); err == nil {
		t.Error("DecodeEvent() should fail on malformed input")
	}
}
