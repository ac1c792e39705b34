// internal/prompt/followup.go
package prompt

import "fmt"

type FollowUpCaps struct {
	Scenario int
	Message  int
	Answer   int
}

func DefaultFollowUpCaps() FollowUpCaps {
	return FollowUpCaps{Scenario: 500, Message: 1000, Answer: 1000}
}

// FollowUpScenario folds a chat exchange into a fresh scenario for
// re-analysis.
func FollowUpScenario(scenario, message, reply string, caps FollowUpCaps) string {
	return fmt.Sprintf("Original scenario: %s\n\nUser follow-up: %s\n\nExpert analysis: %s",
		Head(scenario, caps.Scenario),
		Head(message, caps.Message),
		Head(reply, caps.Answer),
	)
}
