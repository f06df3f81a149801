// Package notice holds transient, severity-tagged user messages.
//
// A Set has one slot per severity. Posting to a slot overwrites it. A Set
// owned by the router survives exactly one route change: the departing view
// posts to it, the arriving view drains it into its own Set.
package notice

import "errors"

// Severity selects a notice slot.
type Severity int

const (
	Success Severity = iota
	Danger
	Warning
	Info
)

// Order is the priority in which Take picks a slot when several are set.
var Order = [...]Severity{Success, Danger, Warning, Info}

var severityNames = [...]string{
	Success: "success",
	Danger:  "danger",
	Warning: "warning",
	Info:    "info",
}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

// ParseSeverity maps a server error type onto a slot. Unknown keys,
// including the server's generic "error", land in Danger.
func ParseSeverity(key string) Severity {
	for i, name := range severityNames {
		if name == key {
			return Severity(i)
		}
	}
	return Danger
}

// Notice is one message taken out of a Set.
type Notice struct {
	Severity Severity
	Text     string
}

// Empty reports whether n carries no text.
func (n Notice) Empty() bool {
	return n.Text == ""
}

// Set is a fixed group of severity slots. The zero value is empty and ready
// to use.
type Set struct {
	slots [len(severityNames)]string
}

// Post writes text into the slot for sev. Empty text is ignored.
func (s *Set) Post(sev Severity, text string) {
	if text == "" || sev < 0 || int(sev) >= len(s.slots) {
		return
	}
	s.slots[sev] = text
}

// Get returns the text in the slot for sev.
func (s *Set) Get(sev Severity) string {
	if sev < 0 || int(sev) >= len(s.slots) {
		return ""
	}
	return s.slots[sev]
}

// Empty reports whether every slot is empty.
func (s *Set) Empty() bool {
	for _, text := range s.slots {
		if text != "" {
			return false
		}
	}
	return true
}

// Take returns the first non-empty slot in Order and clears the whole set.
func (s *Set) Take() (Notice, bool) {
	for _, sev := range Order {
		if text := s.slots[sev]; text != "" {
			s.Clear()
			return Notice{Severity: sev, Text: text}, true
		}
	}
	return Notice{}, false
}

// DrainAll returns a copy of the set and clears it.
func (s *Set) DrainAll() Set {
	out := *s
	s.Clear()
	return out
}

// Merge posts every non-empty slot of other into s.
func (s *Set) Merge(other Set) {
	for sev, text := range other.slots {
		s.Post(Severity(sev), text)
	}
}

// Clear empties every slot.
func (s *Set) Clear() {
	s.slots = [len(severityNames)]string{}
}

// Classifier is implemented by errors that know their notice slot.
type Classifier interface {
	Severity() Severity
}

// FromError converts err into a notice. Errors implementing Classifier pick
// their own slot; anything else is Danger.
func FromError(err error) Notice {
	if err == nil {
		return Notice{}
	}
	sev := Danger
	var c Classifier
	if errors.As(err, &c) {
		sev = c.Severity()
	}
	return Notice{Severity: sev, Text: err.Error()}
}

// PostError posts err into the slot FromError picks.
func (s *Set) PostError(err error) {
	n := FromError(err)
	s.Post(n.Severity, n.Text)
}
