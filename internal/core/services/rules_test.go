package services

import "testing"

func TestEvaluateRulesCoverageAffirmative(t *testing.T) {
	got := evaluateRules(answerFacts{Answer: "Yes, the policy covers knee surgery."})
	if got != "Policy likely provides coverage based on answer." {
		t.Errorf("evaluation = %q", got)
	}
}

func TestEvaluateRulesWaitingPeriod(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"There is a waiting period of 36 months for this benefit.", true},
		{"The waiting period is 2 years.", true},
		{"A waiting period applies.", false}, // no numeric duration
		{"Treatment takes 3 months.", false}, // no waiting period mention
	}

	for _, tt := range tests {
		got := evaluateRules(answerFacts{Answer: tt.answer})
		triggered := got == "Specific waiting period mentioned in the answer."
		if triggered != tt.want {
			t.Errorf("answer %q: evaluation = %q", tt.answer, got)
		}
	}
}

func TestEvaluateRulesBothTriggered(t *testing.T) {
	got := evaluateRules(answerFacts{
		Answer: "Yes, this is covered after a waiting period of 36 months.",
	})
	want := "Policy likely provides coverage based on answer.; Specific waiting period mentioned in the answer."
	if got != want {
		t.Errorf("evaluation = %q, want %q", got, want)
	}
}

func TestEvaluateRulesNoneTriggered(t *testing.T) {
	got := evaluateRules(answerFacts{Answer: "The claim must be filed in writing."})
	if got != "No specific rules triggered." {
		t.Errorf("evaluation = %q", got)
	}
}
