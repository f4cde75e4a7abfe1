package model

// DonationStatus is the lifecycle state of a donation record.
//
// Transitions are one-directional: pending -> sent via successful delivery,
// pending/sent -> void or refunded via order cancellation handling. Void and
// refunded are terminal; no email may be sent for a donation in either state.
type DonationStatus string

const (
	StatusPending  DonationStatus = "pending"
	StatusSent     DonationStatus = "sent"
	StatusVoid     DonationStatus = "void"
	StatusRefunded DonationStatus = "refunded"
)

// Terminal reports whether no further status change or delivery is allowed.
func (s DonationStatus) Terminal() bool {
	return s == StatusVoid || s == StatusRefunded
}

// Deliverable reports whether a receipt may be (re)delivered. Re-delivery of
// an already-sent receipt is allowed; void and refunded block delivery.
func (s DonationStatus) Deliverable() bool {
	return s == StatusPending || s == StatusSent
}

// CanTransition reports whether moving from s to next is a legal state change.
func (s DonationStatus) CanTransition(next DonationStatus) bool {
	if s.Terminal() {
		return false
	}
	switch next {
	case StatusSent, StatusVoid, StatusRefunded:
		return true
	}
	return false
}
