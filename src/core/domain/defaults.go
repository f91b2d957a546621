package domain

// MinCriterionScore and MaxCriterionScore bound each judging criterion.
const (
	MinCriterionScore = 0
	MaxCriterionScore = 10
)

// DefaultPageSize is used when a list request omits per_page.
const DefaultPageSize = 20

// MaxPublicPageSize hard-caps page size on the unauthenticated
// leaderboard view.
const MaxPublicPageSize = 50

// MaxInternalPageSize caps page size on the admin leaderboard view.
const MaxInternalPageSize = 200

// ValidateScores checks all four criterion scores are within range.
func ValidateScores(s CriterionScores) error {
	for _, c := range []struct {
		name  string
		value int
	}{
		{"innovation", s.Innovation},
		{"execution", s.Execution},
		{"impact", s.Impact},
		{"presentation", s.Presentation},
	} {
		if c.value < MinCriterionScore || c.value > MaxCriterionScore {
			return NewValidationError(c.name, "score must be between 0 and 10")
		}
	}
	return nil
}
