package capture

import (
	"slices"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Kind
	}{
		{"task keyword", "Buy milk", KindTask},
		{"task beats reminder", "pay electricity bill tomorrow", KindTask},
		{"task keyword after reminder keyword", "Tomorrow: call the dentist", KindTask},
		{"hyphenated task keyword", "TO-DO list for the trip", KindTask},
		{"reminder weekday", "team meeting monday", KindReminder},
		{"reminder only", "Remember the deadline", KindReminder},
		{"tonight", "dinner tonight", KindReminder},
		{"note", "Project ideas", KindNote},
		{"default body", DefaultBody, KindNote},
		{"substring does not count", "paying respects to mondays", KindNote},
		{"punctuation separates tokens", "fix,deploy;ship", KindTask},
		{"digits separate tokens", "call2", KindTask},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("Call BANK re: to-do #42, ok?")
	want := []string{"call", "bank", "re", "to-do", "ok"}
	if !slices.Equal(got, want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}
}

func TestKeywordSets(t *testing.T) {
	task := TaskKeywords()
	if len(task) != 11 {
		t.Errorf("len(TaskKeywords()) = %d, want 11", len(task))
	}
	reminder := ReminderKeywords()
	if len(reminder) != 15 {
		t.Errorf("len(ReminderKeywords()) = %d, want 15", len(reminder))
	}

	// Returned slices are copies
	task[0] = "mutated"
	if IsTaskKeyword("mutated") {
		t.Error("mutating TaskKeywords() result changed the keyword set")
	}
	if !slices.IsSorted(TaskKeywords()) {
		t.Error("TaskKeywords() should be sorted")
	}
}

func TestKindValid(t *testing.T) {
	for _, k := range Kinds {
		if !k.Valid() {
			t.Errorf("Kind(%q).Valid() = false, want true", k)
		}
	}
	for _, k := range []Kind{"", "Task", "event"} {
		if k.Valid() {
			t.Errorf("Kind(%q).Valid() = true, want false", k)
		}
	}
}
