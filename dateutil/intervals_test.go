package dateutil

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDaily(t *testing.T) {
	ivs := Daily(day("2020-01-01"), day("2020-01-04"))
	if len(ivs) != 3 {
		t.Fatalf("got %d intervals, want 3", len(ivs))
	}
	for _, iv := range ivs {
		if iv.End.Before(iv.Start) {
			t.Fatalf("invalid interval: %v", iv)
		}
	}
	if !ivs[2].Start.Equal(day("2020-01-03")) {
		t.Fatalf("got %v", ivs[2].Start)
	}
	if got := Daily(day("2020-01-04"), day("2020-01-01")); len(got) != 0 {
		t.Fatalf("reversed interval: got %d intervals", len(got))
	}
}

func TestWeeks(t *testing.T) {
	weeks := Weeks(day("2020-03-04"), day("2020-03-16"))
	want := []string{"2020-03-02", "2020-03-09", "2020-03-16"}
	if len(weeks) != len(want) {
		t.Fatalf("got %d weeks, want %d", len(weeks), len(want))
	}
	for i, w := range want {
		if !weeks[i].Equal(day(w)) {
			t.Errorf("week %d: got %v, want %s", i, weeks[i], w)
		}
	}
	if got := Weeks(day("2020-03-02"), day("2020-03-08")); len(got) != 1 {
		t.Fatalf("single week: got %d", len(got))
	}
}

func TestWeekStart(t *testing.T) {
	var cases = []struct {
		in, want string
	}{
		{"2020-03-01", "2020-02-24"}, // sunday
		{"2020-03-02", "2020-03-02"}, // monday
		{"2020-03-04", "2020-03-02"},
	}
	for _, c := range cases {
		if got := WeekStart(day(c.in)); !got.Equal(day(c.want)) {
			t.Errorf("WeekStart(%s): got %v, want %s", c.in, got, c.want)
		}
	}
}

func TestDays(t *testing.T) {
	days := Days(day("2020-02-27"), day("2020-03-01"))
	if len(days) != 4 {
		t.Fatalf("got %d days, want 4", len(days))
	}
	if !days[2].Equal(day("2020-02-29")) {
		t.Fatalf("got %v", days[2])
	}
	if got := Days(day("2020-03-01"), day("2020-03-01")); len(got) != 1 {
		t.Fatalf("single day: got %d", len(got))
	}
}

func TestParse(t *testing.T) {
	var cases = []struct {
		in, want string
	}{
		{"2020-03-30", "2020-03-30"},
		{"2020-03-30T12:01:02Z", "2020-03-30"},
		{"2020/03/30", "2020-03-30"},
		{"2020-04-01T00:30:00.000Z", "2020-04-01"},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if err != nil {
			t.Fatalf("%s: %v", c.in, err)
		}
		if got.Format("2006-01-02") != c.want {
			t.Errorf("%s: got %v, want %s", c.in, got, c.want)
		}
	}
	if _, err := Parse("not a date"); err == nil {
		t.Errorf("expected error")
	}
}
