package model

// MessageSummary is one row of the inbox: the latest message item of a
// conversation the user can see.
type MessageSummary struct {
	// ID is the message item id (miid) used to open the thread.
	ID int64 `json:"id"`

	// Sender is the display name of the message author.
	Sender string `json:"sender"`

	// Subject is the thread subject.
	Subject string `json:"subject"`

	// Sent is the server-formatted send time.
	Sent string `json:"sent"`

	// Count is the number of undeleted items in the conversation.
	Count int `json:"count"`

	// Unread is the number of unread items in the conversation.
	Unread int `json:"unread"`
}

// ThreadMessage is a single message item inside a conversation.
type ThreadMessage struct {
	ID      int64  `json:"id"`
	Sender  string `json:"sender"`
	Subject string `json:"subject"`

	// Body is HTML rendered by the server (escaped text with <br> breaks).
	Body string `json:"body"`
	Sent string `json:"sent"`
	Read bool   `json:"read"`
}

// Thread is the full conversation a message item belongs to.
type Thread struct {
	Subject  string          `json:"subject"`
	Messages []ThreadMessage `json:"messages"`
	Total    int             `json:"total"`
}

// InboxPage is one page of the inbox together with the overall total.
type InboxPage struct {
	Messages []MessageSummary `json:"messages"`
	Total    int              `json:"total"`
}

// ReplyInfo prefills a reply to an existing message item.
type ReplyInfo struct {
	Recipients []Recipient `json:"recipients"`
	Subject    string      `json:"subject"`
	Sender     string      `json:"sender"`
	Body       string      `json:"body"`
}

// OutgoingMessage is the payload of a send request. MIID is zero for a new
// conversation and the replied-to message item otherwise.
type OutgoingMessage struct {
	Recipients []Recipient `json:"recipients"`
	TargetAll  bool        `json:"targetAll"`
	Subject    string      `json:"subject"`
	Body       string      `json:"body"`
	MIID       int64       `json:"miid"`
}
