package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Recipient type constants as used by the server.
const (
	RecipientUser   = "u"
	RecipientGroup  = "g"
	RecipientCourse = "c"
)

// Recipient is a user, group or course a message can be addressed to.
// Two recipients are the same when their IDs are equal.
type Recipient struct {
	// ID is the user primary key for users and a composite key for
	// groups and courses.
	ID string

	// Name is the display name.
	Name string

	// Type is one of the Recipient* constants.
	Type string
}

type wireRecipient struct {
	ID   json.RawMessage `json:"id"`
	Name string          `json:"name"`
	Type string          `json:"type"`
}

// UnmarshalJSON accepts both numeric and string ids.
func (r *Recipient) UnmarshalJSON(data []byte) error {
	var w wireRecipient
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	r.Name = w.Name
	r.Type = w.Type
	r.ID = ""
	if len(w.ID) == 0 || string(w.ID) == "null" {
		return nil
	}
	if w.ID[0] == '"' {
		var s string
		if err := json.Unmarshal(w.ID, &s); err != nil {
			return fmt.Errorf("decoding recipient id: %w", err)
		}
		r.ID = s
		return nil
	}
	r.ID = string(w.ID)
	return nil
}

// MarshalJSON writes user ids back as numbers, the form the server
// compares against when excluding already selected recipients.
func (r Recipient) MarshalJSON() ([]byte, error) {
	id := json.RawMessage(strconv.Quote(r.ID))
	if r.Type == RecipientUser || r.Type == "" {
		if _, err := strconv.ParseInt(r.ID, 10, 64); err == nil {
			id = json.RawMessage(r.ID)
		}
	}
	return json.Marshal(wireRecipient{ID: id, Name: r.Name, Type: r.Type})
}

// SearchRequest is the payload of a recipient search.
type SearchRequest struct {
	Query      string      `json:"q"`
	Recipients []Recipient `json:"recipients"`
	Page       int         `json:"page"`
}

// SearchResult is one page of recipient candidates.
type SearchResult struct {
	Results []Recipient `json:"searchResults"`
	Count   int         `json:"count"`
	PerPage int         `json:"perPage"`
}
