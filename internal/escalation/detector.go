// Package escalation decides whether a customer is asking for a human.
package escalation

import "regexp"

// Each pattern stands on its own; a message wants a human if any matches.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(talk|speak|chat)\s+(with|to)\s+(a|an|some|someone|the)?\s*(human|person|agent|representative|rep|operator|staff)\b`),
	regexp.MustCompile(`(?i)\blive\s+(agent|person|support|chat\s+agent)\b`),
	regexp.MustCompile(`(?i)\breal\s+(person|human|support|agent|people)\b`),
	regexp.MustCompile(`(?i)\bescalat(e|ed|ion|ing)\b`),
	regexp.MustCompile(`(?i)\bcustomer\s+(service|support)\s+(agent|rep|representative|team)\b`),
	regexp.MustCompile(`(?i)\b(need|want|get|give)\s+(me\s+)?(a|an|to\s+\w+\s+(to|with)\s+(a|an)?)?\s*(human|person|agent|representative|operator)\b`),
	regexp.MustCompile(`(?i)\b(connect|transfer|put)\s+me\s+(to|with|through\s+to)\s+(a|an|the)?\s*(human|person|agent|representative|operator|staff)\b`),
	regexp.MustCompile(`(?i)\bhuman\s+(agent|support|help|being)\b`),
}

// WantsHuman reports whether text asks to reach a human.
func WantsHuman(text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// Detector adapts WantsHuman to an injectable value.
type Detector func(text string) bool
