package textutil

import "testing"

func TestTimestampMS(t *testing.T) {
	cases := []struct {
		ms   int64
		want string
	}{
		{0, "00:00:00.000"},
		{216670, "00:03:36.670"},
		{3661042, "01:01:01.042"},
	}
	for _, tc := range cases {
		if got := TimestampMS(tc.ms); got != tc.want {
			t.Errorf("TimestampMS(%d) = %q, want %q", tc.ms, got, tc.want)
		}
	}
}

func TestFileTimestampMS(t *testing.T) {
	if got := FileTimestampMS(216670); got != "00h03m36s670" {
		t.Fatalf("FileTimestampMS = %q", got)
	}
}

func TestTrimmedSeconds(t *testing.T) {
	cases := []struct {
		ms   int64
		want string
	}{
		{216670, "216.67"},
		{219193, "219.193"},
		{5000, "5"},
		{0, "0"},
		{1200, "1.2"},
	}
	for _, tc := range cases {
		if got := TrimmedSeconds(tc.ms); got != tc.want {
			t.Errorf("TrimmedSeconds(%d) = %q, want %q", tc.ms, got, tc.want)
		}
	}
}
