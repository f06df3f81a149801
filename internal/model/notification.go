package model

// Notification is a one-way message pushed to the user by the system.
type Notification struct {
	// ID is the message item id of the notification.
	ID int64 `json:"id"`

	Subject string `json:"subject"`

	// Body is the notification text as rendered by the server.
	Body string `json:"body"`

	// URL is where the notification points the user to.
	URL string `json:"url"`

	Sent string `json:"sent"`

	// Read indicates whether the user has opened this notification.
	Read bool `json:"read"`
}

// NotificationPage is one page of notifications and the overall total.
type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	Total         int            `json:"total"`
}
