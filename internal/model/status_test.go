package model

import "testing"

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to DonationStatus
		allowed  bool
	}{
		{StatusPending, StatusSent, true},
		{StatusPending, StatusVoid, true},
		{StatusPending, StatusRefunded, true},
		{StatusSent, StatusSent, true}, // re-delivery
		{StatusSent, StatusVoid, true},
		{StatusVoid, StatusSent, false},
		{StatusVoid, StatusRefunded, false},
		{StatusRefunded, StatusSent, false},
		{StatusRefunded, StatusVoid, false},
		{StatusSent, StatusPending, false},
	}

	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", c.from, c.to, c.allowed, got)
		}
	}
}

func TestStatusDeliverable(t *testing.T) {
	for status, want := range map[DonationStatus]bool{
		StatusPending:  true,
		StatusSent:     true,
		StatusVoid:     false,
		StatusRefunded: false,
	} {
		if got := status.Deliverable(); got != want {
			t.Errorf("%s: expected Deliverable=%v", status, want)
		}
	}
}
