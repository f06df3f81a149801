package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/nhle/mailterm/internal/model"
)

// API paths, relative to the client's base URL.
const (
	PathInbox           = "/get/inbox/"
	PathThread          = "/get/thread/"
	PathNotifications   = "/get/notifications/"
	PathReplyInfo       = "/get/reply/info/"
	PathSearchRecipient = "/search/recipient/"
	PathSendMessage     = "/send/message/"
	PathDeleteItem      = "/delete/message/item/"
	PathMarkRead        = "/mark/notification/read/"
	PathUnreadCount     = "/get/unread/count/"
)

// InboxQuery selects one page of the inbox.
type InboxQuery struct {
	Page    int
	PerPage int
	Sort    model.InboxSort
}

// Deleter removes messages and notifications.
type Deleter interface {
	DeleteMessageItem(ctx context.Context, miid int64, thread bool) (string, error)
}

// Inbox is what the inbox list needs.
type Inbox interface {
	Deleter
	Inbox(ctx context.Context, q InboxQuery) (*model.InboxPage, error)
}

// Threads is what the thread reader needs.
type Threads interface {
	Deleter
	Thread(ctx context.Context, miid int64) (*model.Thread, error)
}

// Notifications is what the notification feed needs.
type Notifications interface {
	Deleter
	Notifications(ctx context.Context, page, perPage int) (*model.NotificationPage, error)
	MarkNotificationRead(ctx context.Context, id int64) error
}

// Composer is what the compose and reply form needs.
type Composer interface {
	ReplyInfo(ctx context.Context, miid int64) (*model.ReplyInfo, error)
	SearchRecipients(ctx context.Context, req model.SearchRequest) (*model.SearchResult, error)
	SendMessage(ctx context.Context, msg model.OutgoingMessage) (string, error)
}

// UnreadCounter reports unread totals for the header.
type UnreadCounter interface {
	UnreadCount(ctx context.Context, notifications bool) (int, error)
}

// Service is the whole API surface.
type Service interface {
	Inbox
	Threads
	Notifications
	Composer
	UnreadCounter
}

var _ Service = (*Client)(nil)

type successResponse struct {
	SuccessMessage string `json:"successMessage"`
}

type countResponse struct {
	Count int `json:"count"`
}

func miidQuery(miid int64) url.Values {
	return url.Values{"miid": {strconv.FormatInt(miid, 10)}}
}

// Inbox fetches one page of thread summaries.
func (c *Client) Inbox(ctx context.Context, q InboxQuery) (*model.InboxPage, error) {
	sort := q.Sort
	if sort.Field == "" {
		sort = model.DefaultInboxSort()
	}
	query := url.Values{
		"page":       {strconv.Itoa(q.Page)},
		"per_page":   {strconv.Itoa(q.PerPage)},
		"sort_field": {sort.Field},
		"sort_dir":   {sort.Direction},
	}

	var page model.InboxPage
	if err := c.Get(ctx, PathInbox, query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Thread fetches every message of the thread containing miid.
func (c *Client) Thread(ctx context.Context, miid int64) (*model.Thread, error) {
	var th model.Thread
	if err := c.Get(ctx, PathThread, miidQuery(miid), &th); err != nil {
		return nil, err
	}
	return &th, nil
}

// Notifications fetches one page of the notification feed.
func (c *Client) Notifications(ctx context.Context, page, perPage int) (*model.NotificationPage, error) {
	query := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}

	var np model.NotificationPage
	if err := c.Get(ctx, PathNotifications, query, &np); err != nil {
		return nil, err
	}
	return &np, nil
}

// ReplyInfo fetches the prefill for a reply to miid.
func (c *Client) ReplyInfo(ctx context.Context, miid int64) (*model.ReplyInfo, error) {
	var info model.ReplyInfo
	if err := c.Get(ctx, PathReplyInfo, miidQuery(miid), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SearchRecipients runs a recipient lookup.
func (c *Client) SearchRecipients(ctx context.Context, req model.SearchRequest) (*model.SearchResult, error) {
	if req.Recipients == nil {
		req.Recipients = []model.Recipient{}
	}

	var res model.SearchResult
	if err := c.Post(ctx, PathSearchRecipient, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SendMessage posts a new message or reply and returns the server's
// confirmation text.
func (c *Client) SendMessage(ctx context.Context, msg model.OutgoingMessage) (string, error) {
	if msg.Recipients == nil {
		msg.Recipients = []model.Recipient{}
	}

	var res successResponse
	if err := c.Post(ctx, PathSendMessage, msg, &res); err != nil {
		return "", err
	}
	return res.SuccessMessage, nil
}

// DeleteMessageItem deletes one message, or its whole thread when thread is
// set, and returns the server's confirmation text.
func (c *Client) DeleteMessageItem(ctx context.Context, miid int64, thread bool) (string, error) {
	query := miidQuery(miid)
	if thread {
		query.Set("thread", "")
	}

	var res successResponse
	if err := c.Get(ctx, PathDeleteItem, query, &res); err != nil {
		return "", err
	}
	return res.SuccessMessage, nil
}

// MarkNotificationRead flags a notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	if err := c.Get(ctx, PathMarkRead, miidQuery(id), nil); err != nil {
		return err
	}
	return nil
}

// UnreadCount returns the number of unread messages, or of unread
// notifications when notifications is set.
func (c *Client) UnreadCount(ctx context.Context, notifications bool) (int, error) {
	var query url.Values
	if notifications {
		query = url.Values{"n": {""}}
	}

	var res countResponse
	if err := c.Get(ctx, PathUnreadCount, query, &res); err != nil {
		return 0, fmt.Errorf("fetching unread count: %w", err)
	}
	return res.Count, nil
}
