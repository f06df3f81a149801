package model

// Inbox sort fields and directions, as sent in the sort_field and sort_dir
// query parameters.
const (
	SortByDate   = "date"
	SortBySender = "sender"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// InboxSort is the inbox ordering. It outlives a single inbox view so that
// returning to the inbox keeps the user's choice.
type InboxSort struct {
	Field     string
	Direction string
}

// DefaultInboxSort returns newest-first ordering.
func DefaultInboxSort() InboxSort {
	return InboxSort{Field: SortByDate, Direction: SortDesc}
}

// Choose selects field. Choosing the active field again flips the direction.
func (s *InboxSort) Choose(field string) {
	if field == s.Field {
		if s.Direction == SortAsc {
			s.Direction = SortDesc
		} else {
			s.Direction = SortAsc
		}
		return
	}
	s.Field = field
}
