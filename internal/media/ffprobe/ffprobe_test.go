package ffprobe

import (
	"context"
	"testing"
)

func TestDurationMSConversion(t *testing.T) {
	result := Result{Format: Format{Duration: "123.456"}}
	ms, err := result.DurationMS()
	if err != nil {
		t.Fatalf("DurationMS: %v", err)
	}
	if ms != 123456 {
		t.Fatalf("DurationMS = %d, want 123456", ms)
	}
}

func TestDurationMSRejectsBadValues(t *testing.T) {
	for _, value := range []string{"", "bad", "-1"} {
		result := Result{Format: Format{Duration: value}}
		if _, err := result.DurationMS(); err == nil {
			t.Errorf("DurationMS(%q) should fail", value)
		}
	}
}

func TestInspectRejectsEmptyPath(t *testing.T) {
	if _, err := Inspect(context.Background(), "ffprobe", ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
