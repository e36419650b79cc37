package services

import (
	"regexp"
	"strings"
)

// answerFacts is the fact set the annotation rules evaluate against.
type answerFacts struct {
	Answer     string
	Conditions map[string]string
}

// annotationRule pairs a predicate with the message emitted when it matches.
// The rule set is closed and ordered; this is deliberately not a rule engine.
type annotationRule struct {
	name    string
	matches func(answerFacts) bool
	message string
}

var durationPattern = regexp.MustCompile(`(?i)\d+\s*(month|year)s?`)

var annotationRules = []annotationRule{
	{
		name: "coverage_affirmative",
		matches: func(f answerFacts) bool {
			answer := strings.ToLower(f.Answer)
			return strings.Contains(answer, "cover") && strings.Contains(answer, "yes")
		},
		message: "Policy likely provides coverage based on answer.",
	},
	{
		name: "waiting_period_identified",
		matches: func(f answerFacts) bool {
			return strings.Contains(strings.ToLower(f.Answer), "waiting period") &&
				durationPattern.MatchString(f.Answer)
		},
		message: "Specific waiting period mentioned in the answer.",
	},
}

// evaluateRules runs every annotation rule and joins the triggered messages.
func evaluateRules(facts answerFacts) string {
	var messages []string
	for _, rule := range annotationRules {
		if rule.matches(facts) {
			messages = append(messages, rule.message)
		}
	}

	if len(messages) == 0 {
		return "No specific rules triggered."
	}
	return strings.Join(messages, "; ")
}
