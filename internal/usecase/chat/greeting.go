package chat

import (
	"strings"
	"unicode"
)

// greetings across the languages users actually write in (Arabic, French,
// English, latinized darija).
var greetings = map[string]struct{}{
	"salam":   {},
	"سلام":    {},
	"مرحبا":   {},
	"bonjour": {},
	"hello":   {},
	"hi":      {},
	"اهلا":    {},
	"أهلا":    {},
	"salut":   {},
	"hey":     {},
}

const maxGreetingTokens = 4

// isGreeting reports whether the input is conversational small talk rather
// than a legal question. Short-circuiting retrieval for greetings saves an
// embedding call; a false negative just means retrieval runs and correctly
// finds nothing relevant.
func isGreeting(text string) bool {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(text)))

	tokens := strings.Fields(cleaned)
	if len(tokens) == 0 || len(tokens) > maxGreetingTokens {
		return false
	}
	for _, tok := range tokens {
		if _, ok := greetings[tok]; ok {
			return true
		}
	}
	return false
}
