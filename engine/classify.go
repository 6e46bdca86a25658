package engine

import "strings"

// Normalized type tags.
const (
	TagRegular = "REGULAR"
	TagBreak   = "BREAK"
	TagHoliday = "HOLIDAY"
	TagTimeOff = "TIME_OFF"
)

// NormalizeType canonicalizes a raw type tag: trimmed, upper-case, with
// dashes and spaces as underscores and any "_TIME_ENTRY" suffix removed.
// An empty tag normalizes to REGULAR.
func NormalizeType(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	s = strings.TrimSuffix(s, "_TIME_ENTRY")
	if s == "" {
		return TagRegular
	}
	return s
}

// Classify maps an entry to its kind. Unknown tags are work.
func Classify(e TimeEntry) Kind {
	switch NormalizeType(e.Type) {
	case TagBreak:
		return KindBreak
	case TagHoliday, TagTimeOff:
		return KindPTO
	default:
		return KindWork
	}
}

func isHolidayEntry(e TimeEntry) bool { return NormalizeType(e.Type) == TagHoliday }
func isTimeOffEntry(e TimeEntry) bool { return NormalizeType(e.Type) == TagTimeOff }
