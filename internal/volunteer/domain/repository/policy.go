package repository

import (
	"context"

	"volunteer-hub/internal/volunteer/domain/model"
)

// Subject is the verified caller an access decision is made for.
type Subject struct {
	Email string
	Name  string
}

// OwnershipPolicy decides whether a caller may mutate an opportunity.
type OwnershipPolicy interface {
	// Enforced reports whether mutations need a session at all.
	Enforced() bool
	// Allow evaluates the rule for method (PATCH or DELETE) against the
	// stored opportunity.
	Allow(ctx context.Context, subject Subject, method string, o *model.Opportunity) (bool, error)
}
