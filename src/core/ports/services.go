package ports

import (
	"context"
)

// ExternalService is the base interface for external service adapters.
type ExternalService interface {
	// Health checks if the external service is reachable.
	Health(ctx context.Context) error
}

// Authorizer answers ownership questions. The core trusts the boolean
// answers and does not re-derive them.
type Authorizer interface {
	// IsJudge reports whether the judge belongs to the hackathon's pool.
	IsJudge(ctx context.Context, hackathonID, judgeID int64) (bool, error)
}

// SubmissionChecker reports whether a team's submission has reached a
// finalized state. Evaluations may only be drafted or submitted against
// finalized work.
type SubmissionChecker interface {
	IsFinalized(ctx context.Context, hackathonID, teamID int64) (bool, error)
}

// TargetKind discriminates notification target rules.
type TargetKind string

const (
	TargetAll        TargetKind = "ALL"
	TargetRoleEquals TargetKind = "ROLE_EQUALS"
	TargetCityEquals TargetKind = "CITY_EQUALS"
)

// TargetRule selects notification recipients. It is a tagged variant
// evaluated against a typed recipient context rather than a generic
// property-bag walk.
type TargetRule struct {
	Kind TargetKind
	// Value is the role or city to match; unused for TargetAll.
	Value string
}

// RecipientContext is the typed attribute set a target rule is evaluated
// against.
type RecipientContext struct {
	Role string
	City string
}

// Matches reports whether the rule selects the given recipient. Unknown
// rule kinds match nothing.
func (r TargetRule) Matches(rc RecipientContext) bool {
	switch r.Kind {
	case TargetAll:
		return true
	case TargetRoleEquals:
		return rc.Role == r.Value
	case TargetCityEquals:
		return rc.City == r.Value
	default:
		return false
	}
}

// Notification is a fire-and-forget status-change message.
type Notification struct {
	// ID is an idempotency key for downstream delivery.
	ID          string
	HackathonID int64
	TeamID      int64
	Event       string
	Target      TargetRule
}

// Notifier delivers notifications. Callers treat delivery as best-effort:
// failures are logged by the core and never propagated.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
