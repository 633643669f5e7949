package chatbot

import (
	"strings"
	"unicode"
)

// normalize lowercases s and reduces it to words separated by single
// spaces. Digits, the rupee sign and the characters that matter inside
// numbers (. , -) are kept.
func normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '₹', r == '.', r == ',', r == '-', r == '–':
			return unicode.ToLower(r)
		default:
			return ' '
		}
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// words strips the number punctuation that normalize keeps, for whole-word
// matching.
func words(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '.' || r == ',' || r == '-' || r == '–' {
			return ' '
		}
		return r
	}, s)
	return " " + strings.Join(strings.Fields(s), " ") + " "
}

// hasWord reports whether phrase occurs in padded as whole words. padded
// must come from words.
func hasWord(padded, phrase string) bool {
	return strings.Contains(padded, " "+phrase+" ")
}

func hasAnyWord(padded string, phrases []string) bool {
	for _, p := range phrases {
		if hasWord(padded, p) {
			return true
		}
	}
	return false
}
