package model

// =====================================================
// TRANSITION TABLE
// =====================================================

// transitions is the single source of truth for legal booking state
// changes: (from, role) -> set of reachable targets. Semantic gates
// (OTP, candidate membership, ownership, grace window) are applied by the
// engine on top of this table and never relax it.
var transitions = map[string]map[Role][]string{
	StatusPendingPayment: {
		RoleSystem: {StatusPaidSearching, StatusExpired},
		RoleUser:   {StatusCancelled},
	},
	StatusPaidSearching: {
		RoleProvider: {StatusAccepted},
		RoleUser:     {StatusCancelled},
		RoleSystem:   {StatusExpired},
	},
	StatusAccepted: {
		RoleProvider: {StatusEnRoute, StatusPaidSearching, StatusCancelled},
		RoleUser:     {StatusCancelled},
	},
	StatusEnRoute: {
		RoleProvider: {StatusArrived, StatusPaidSearching, StatusCancelled},
		RoleUser:     {StatusCancelled},
	},
	StatusArrived: {
		RoleProvider: {StatusInProgress, StatusCancelled},
		RoleUser:     {StatusCancelled},
	},
	StatusInProgress: {
		RoleProvider: {StatusCompletePending},
	},
	StatusCompletePending: {
		RoleSystem: {StatusClosed},
		RoleUser:   {StatusNeedsReview, StatusClosed},
	},
	StatusNeedsReview: {
		RoleAdmin: {StatusClosed, StatusCancelled},
	},
}

// CanTransition is a pure lookup against the transition table.
func CanTransition(from, to string, role Role) bool {
	byRole, ok := transitions[from]
	if !ok {
		return false
	}
	for _, target := range byRole[role] {
		if target == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves the status.
func IsTerminal(status string) bool {
	switch status {
	case StatusClosed, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// IsEligibleForPayout: the provider may be paid out only once the booking
// is closed.
func IsEligibleForPayout(status string) bool {
	return status == StatusClosed
}

// IsEligibleForRefund: the main authorization can be voided without fee
// only while the booking is still searching for a provider.
func IsEligibleForRefund(status string) bool {
	return status == StatusPaidSearching
}

// CancellationFeeApplies: a user cancelling once the provider is en route
// or on site pays the fixed fee. Provider cancellations never charge the
// user.
func CancellationFeeApplies(status string, role Role) bool {
	if role != RoleUser {
		return false
	}
	return status == StatusEnRoute || status == StatusArrived
}
