package capture

import (
	"regexp"
	"slices"
	"strings"
)

// tokenRegex splits text into alphabetic-plus-hyphen words.
var tokenRegex = regexp.MustCompile(`[a-zA-Z\-]+`)

var taskKeywords = keywordSet(
	"todo", "to-do", "buy", "call", "email", "submit",
	"finish", "pay", "schedule", "book", "fix",
)

var reminderKeywords = keywordSet(
	"remind", "remember", "deadline", "meeting", "appointment",
	"tomorrow", "today", "tonight",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
)

func keywordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Tokens lowercases text and returns its alphabetic-plus-hyphen words in order.
func Tokens(text string) []string {
	return tokenRegex.FindAllString(strings.ToLower(text), -1)
}

// Classify maps text to a Kind.
// Any task keyword wins, even when reminder keywords are also present.
func Classify(text string) Kind {
	tokens := Tokens(text)
	for _, tok := range tokens {
		if IsTaskKeyword(tok) {
			return KindTask
		}
	}
	for _, tok := range tokens {
		if IsReminderKeyword(tok) {
			return KindReminder
		}
	}
	return KindNote
}

// IsTaskKeyword reports whether the lowercase token marks a task.
func IsTaskKeyword(token string) bool {
	_, ok := taskKeywords[token]
	return ok
}

// IsReminderKeyword reports whether the lowercase token marks a reminder.
func IsReminderKeyword(token string) bool {
	_, ok := reminderKeywords[token]
	return ok
}

// TaskKeywords returns a sorted copy of the task keyword set.
func TaskKeywords() []string { return sortedKeys(taskKeywords) }

// ReminderKeywords returns a sorted copy of the reminder keyword set.
func ReminderKeywords() []string { return sortedKeys(reminderKeywords) }

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
