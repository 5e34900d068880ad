/*
policy.go - Auto-approval policy

PURPOSE:
  Decides whether a freshly computed claim can bypass manual review.
  Small claims (few hours, small amount) are approved automatically;
  everything else waits for an approver.

RULE:
  auto-approve iff hoursWorked <= MaxHours AND amount <= MaxAmount

THRESHOLDS:
  Thresholds are injected at construction, not module-level globals.
  Defaults (20 hours, 1000) match the usual departmental sign-off
  limits but both are configuration (see config package).

STALENESS:
  ShouldAutoApprove trusts the precomputed Amount field. Callers must
  compute the amount immediately before evaluating the policy; the
  lifecycle engine is the only caller and always does.
*/
package claims

import "github.com/shopspring/decimal"

// Default auto-approval thresholds.
const (
	DefaultMaxAutoApproveHours  = 20
	DefaultMaxAutoApproveAmount = 1000
)

// AutoApprovalPolicy is a pure predicate over (hours, amount).
type AutoApprovalPolicy struct {
	MaxHours  decimal.Decimal
	MaxAmount decimal.Decimal
}

// NewAutoApprovalPolicy builds a policy with explicit thresholds.
func NewAutoApprovalPolicy(maxHours, maxAmount decimal.Decimal) AutoApprovalPolicy {
	return AutoApprovalPolicy{MaxHours: maxHours, MaxAmount: maxAmount}
}

// DefaultAutoApprovalPolicy builds a policy with the default thresholds.
func DefaultAutoApprovalPolicy() AutoApprovalPolicy {
	return NewAutoApprovalPolicy(
		decimal.NewFromInt(DefaultMaxAutoApproveHours),
		decimal.NewFromInt(DefaultMaxAutoApproveAmount),
	)
}

// ShouldAutoApprove returns true iff both the hours worked and the
// precomputed amount are within the policy thresholds. It never
// recomputes the amount.
func (p AutoApprovalPolicy) ShouldAutoApprove(c *Claim) bool {
	return c.HoursWorked.LessThanOrEqual(p.MaxHours) &&
		c.Amount.LessThanOrEqual(p.MaxAmount)
}
