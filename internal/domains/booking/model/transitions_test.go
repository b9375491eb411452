package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		role Role
		want bool
	}{
		{"payment authorization", StatusPendingPayment, StatusPaidSearching, RoleSystem, true},
		{"user cannot self-authorize", StatusPendingPayment, StatusPaidSearching, RoleUser, false},
		{"unpaid cancel", StatusPendingPayment, StatusCancelled, RoleUser, true},
		{"sweep expiry", StatusPendingPayment, StatusExpired, RoleSystem, true},

		{"provider accept", StatusPaidSearching, StatusAccepted, RoleProvider, true},
		{"user cannot accept", StatusPaidSearching, StatusAccepted, RoleUser, false},
		{"searching expiry", StatusPaidSearching, StatusExpired, RoleSystem, true},

		{"travel", StatusAccepted, StatusEnRoute, RoleProvider, true},
		{"provider backs out accepted", StatusAccepted, StatusPaidSearching, RoleProvider, true},
		{"provider backs out en route", StatusEnRoute, StatusPaidSearching, RoleProvider, true},
		{"no back out once arrived", StatusArrived, StatusPaidSearching, RoleProvider, false},

		{"arrive", StatusEnRoute, StatusArrived, RoleProvider, true},
		{"start", StatusArrived, StatusInProgress, RoleProvider, true},
		{"no skipping to in progress", StatusEnRoute, StatusInProgress, RoleProvider, false},

		{"complete", StatusInProgress, StatusCompletePending, RoleProvider, true},
		{"user cannot complete", StatusInProgress, StatusCompletePending, RoleUser, false},
		{"no cancel mid-job", StatusInProgress, StatusCancelled, RoleUser, false},

		{"grace close", StatusCompletePending, StatusClosed, RoleSystem, true},
		{"user confirm", StatusCompletePending, StatusClosed, RoleUser, true},
		{"issue flag", StatusCompletePending, StatusNeedsReview, RoleUser, true},
		{"provider cannot flag", StatusCompletePending, StatusNeedsReview, RoleProvider, false},

		{"admin closes review", StatusNeedsReview, StatusClosed, RoleAdmin, true},
		{"admin cancels review", StatusNeedsReview, StatusCancelled, RoleAdmin, true},
		{"user cannot resolve review", StatusNeedsReview, StatusClosed, RoleUser, false},

		{"closed is terminal", StatusClosed, StatusCancelled, RoleAdmin, false},
		{"cancelled is terminal", StatusCancelled, StatusPaidSearching, RoleSystem, false},
		{"expired is terminal", StatusExpired, StatusPendingPayment, RoleSystem, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to, tt.role))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StatusClosed))
	assert.True(t, IsTerminal(StatusCancelled))
	assert.True(t, IsTerminal(StatusExpired))

	assert.False(t, IsTerminal(StatusPendingPayment))
	assert.False(t, IsTerminal(StatusCompletePending))
	assert.False(t, IsTerminal(StatusNeedsReview))
}

func TestPayoutAndRefundEligibility(t *testing.T) {
	assert.True(t, IsEligibleForPayout(StatusClosed))
	assert.False(t, IsEligibleForPayout(StatusCompletePending))

	assert.True(t, IsEligibleForRefund(StatusPaidSearching))
	assert.False(t, IsEligibleForRefund(StatusAccepted))
}

func TestCancellationFeeApplies(t *testing.T) {
	assert.True(t, CancellationFeeApplies(StatusEnRoute, RoleUser))
	assert.True(t, CancellationFeeApplies(StatusArrived, RoleUser))

	assert.False(t, CancellationFeeApplies(StatusAccepted, RoleUser))
	assert.False(t, CancellationFeeApplies(StatusPaidSearching, RoleUser))
	assert.False(t, CancellationFeeApplies(StatusEnRoute, RoleProvider))
	assert.False(t, CancellationFeeApplies(StatusEnRoute, RoleAdmin))
}
