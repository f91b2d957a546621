package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTargetRuleMatches(t *testing.T) {
	judgeInBerlin := RecipientContext{Role: "judge", City: "Berlin"}

	tests := []struct {
		name string
		rule TargetRule
		rc   RecipientContext
		want bool
	}{
		{"all matches anyone", TargetRule{Kind: TargetAll}, judgeInBerlin, true},
		{"all matches empty context", TargetRule{Kind: TargetAll}, RecipientContext{}, true},
		{"role match", TargetRule{Kind: TargetRoleEquals, Value: "judge"}, judgeInBerlin, true},
		{"role mismatch", TargetRule{Kind: TargetRoleEquals, Value: "participant"}, judgeInBerlin, false},
		{"city match", TargetRule{Kind: TargetCityEquals, Value: "Berlin"}, judgeInBerlin, true},
		{"city mismatch", TargetRule{Kind: TargetCityEquals, Value: "Munich"}, judgeInBerlin, false},
		{"unknown kind matches nothing", TargetRule{Kind: TargetKind("REGEX"), Value: ".*"}, judgeInBerlin, false},
		{"zero rule matches nothing", TargetRule{}, judgeInBerlin, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Matches(tt.rc))
		})
	}
}
