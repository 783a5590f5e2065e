package session

import (
	"testing"
	"time"
)

func TestTimeOfDay_Buckets(t *testing.T) {
	cases := []struct {
		hour, minute int
		want         string
	}{
		{4, 59, "It is evening or night (local time: 04:59)."},
		{5, 0, "It is morning (local time: 05:00)."},
		{11, 59, "It is morning (local time: 11:59)."},
		{12, 0, "It is afternoon (local time: 12:00)."},
		{17, 59, "It is afternoon (local time: 17:59)."},
		{18, 0, "It is evening or night (local time: 18:00)."},
		{0, 0, "It is evening or night (local time: 00:00)."},
	}
	for _, tc := range cases {
		at := time.Date(2025, 1, 1, tc.hour, tc.minute, 0, 0, time.UTC)
		if got := TimeOfDay(at); got != tc.want {
			t.Errorf("%02d:%02d: got %q, want %q", tc.hour, tc.minute, got, tc.want)
		}
	}
}

func TestAnnotate(t *testing.T) {
	at := time.Date(2025, 1, 1, 14, 7, 0, 0, time.UTC)
	got := Annotate("Where is Fes?", at)
	want := "Where is Fes?\n[Context: It is afternoon (local time: 14:07).]"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
