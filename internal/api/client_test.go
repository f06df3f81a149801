package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/notice"
	"github.com/nhle/mailterm/tests/testutil"
)

func seededClient(t *testing.T, superUser bool) *api.Client {
	t.Helper()
	return testutil.NewTestServer(t, testutil.NewSeededStore(superUser), "")
}

func requireAPIError(t *testing.T, err error) *api.Error {
	t.Helper()
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr), "expected *api.Error, got %T: %v", err, err)
	return apiErr
}

func TestInboxPaging(t *testing.T) {
	c := seededClient(t, false)
	ctx := context.Background()

	page, err := c.Inbox(ctx, api.InboxQuery{Page: 0, PerPage: 4, Sort: model.DefaultInboxSort()})
	require.NoError(t, err)
	assert.Equal(t, 6, page.Total)
	require.Len(t, page.Messages, 4)
	assert.Equal(t, int64(9), page.Messages[0].ID, "newest thread first")
	assert.Equal(t, int64(8), page.Messages[1].ID)
	assert.Equal(t, 2, page.Messages[1].Count)
	assert.Equal(t, 2, page.Messages[1].Unread)

	page, err = c.Inbox(ctx, api.InboxQuery{Page: 1, PerPage: 4})
	require.NoError(t, err)
	assert.Len(t, page.Messages, 2)
}

func TestInboxSortBySender(t *testing.T) {
	c := seededClient(t, false)

	page, err := c.Inbox(context.Background(), api.InboxQuery{
		PerPage: 10,
		Sort:    model.InboxSort{Field: model.SortBySender, Direction: model.SortAsc},
	})
	require.NoError(t, err)
	require.Len(t, page.Messages, 6)
	senders := make([]string, 0, len(page.Messages))
	for _, m := range page.Messages {
		senders = append(senders, m.Sender)
	}
	assert.True(t, sort.StringsAreSorted(senders), "senders %v", senders)
	// Threads are listed by the sender of their latest message.
	assert.Equal(t, "Barbara Liskov", senders[0])
	assert.Equal(t, "Grace Hopper", senders[len(senders)-1])
}

func TestThreadMarksRead(t *testing.T) {
	c := seededClient(t, false)
	ctx := context.Background()

	before, err := c.UnreadCount(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 9, before)

	th, err := c.Thread(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Week 3 reading list", th.Subject)
	assert.Equal(t, 2, th.Total)
	require.Len(t, th.Messages, 2)
	assert.False(t, th.Messages[0].Read)
	assert.Contains(t, th.Messages[1].Body, "&lt;b&gt;Markup&lt;/b&gt;")
	assert.Contains(t, th.Messages[1].Body, "<br />")

	after, err := c.UnreadCount(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 7, after)

	th, err = c.Thread(ctx, 1)
	require.NoError(t, err)
	assert.True(t, th.Messages[0].Read)
}

func TestUnknownItemIsWarning(t *testing.T) {
	c := seededClient(t, false)

	_, err := c.Thread(context.Background(), 999)
	apiErr := requireAPIError(t, err)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, api.TypeWarning, apiErr.Type)
	assert.Equal(t, "Message item not found", apiErr.Message)
	assert.Equal(t, notice.Warning, apiErr.Severity())
	assert.Equal(t, notice.Warning, notice.FromError(err).Severity)
}

func TestDeleteMessageItem(t *testing.T) {
	c := seededClient(t, false)
	ctx := context.Background()

	text, err := c.DeleteMessageItem(ctx, 2, false)
	require.NoError(t, err)
	assert.Equal(t, "Message deleted!", text)

	th, err := c.Thread(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, th.Total)

	text, err = c.DeleteMessageItem(ctx, 4, true)
	require.NoError(t, err)
	assert.Equal(t, "Conversation deleted!", text)

	page, err := c.Inbox(ctx, api.InboxQuery{PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
}

func TestNotifications(t *testing.T) {
	c := seededClient(t, false)
	ctx := context.Background()

	page, err := c.Notifications(ctx, 0, 6)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Notifications, 3)
	assert.Equal(t, int64(12), page.Notifications[0].ID)
	assert.Equal(t, "https://lms.example.com/calendar", page.Notifications[0].URL)

	require.NoError(t, c.MarkNotificationRead(ctx, 12))
	unread, err := c.UnreadCount(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	text, err := c.DeleteMessageItem(ctx, 12, false)
	require.NoError(t, err)
	assert.Equal(t, "Notification deleted!", text)
}

func TestReplyInfo(t *testing.T) {
	c := seededClient(t, false)

	info, err := c.ReplyInfo(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", info.Sender)
	assert.Equal(t, "Re: Week 3 reading list", info.Subject)
	require.Len(t, info.Recipients, 1)
	assert.Equal(t, model.Recipient{ID: "3", Name: "Grace Hopper", Type: model.RecipientUser}, info.Recipients[0])
}

func TestSearchRecipients(t *testing.T) {
	c := seededClient(t, false)
	ctx := context.Background()

	res, err := c.SearchRecipients(ctx, model.SearchRequest{Query: "a"})
	require.NoError(t, err)
	assert.Equal(t, 12, res.Count)
	assert.Equal(t, 10, res.PerPage)
	assert.Len(t, res.Results, 10)

	res, err = c.SearchRecipients(ctx, model.SearchRequest{Query: "a", Page: 1})
	require.NoError(t, err)
	assert.Len(t, res.Results, 2)

	res, err = c.SearchRecipients(ctx, model.SearchRequest{
		Query:      "cs101",
		Recipients: []model.Recipient{{ID: "CS101-A", Type: model.RecipientGroup}},
	})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "CS101 Lab Group B", res.Results[0].Name)
}

func TestSendMessage(t *testing.T) {
	c := seededClient(t, false)
	ctx := context.Background()

	text, err := c.SendMessage(ctx, model.OutgoingMessage{
		Recipients: []model.Recipient{{ID: "2", Type: model.RecipientUser}},
		Subject:    "Re: Week 3 reading list",
		Body:       "Got it.",
		MIID:       1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Message sent successfully!", text)

	th, err := c.Thread(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, th.Total)
}

func TestTargetAllRequiresSuperUser(t *testing.T) {
	msg := model.OutgoingMessage{TargetAll: true, Subject: "Hello", Body: "everyone"}

	_, err := seededClient(t, false).SendMessage(context.Background(), msg)
	apiErr := requireAPIError(t, err)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, api.TypeError, apiErr.Type)
	assert.Equal(t, notice.Danger, apiErr.Severity(), "server error type lands in danger")

	_, err = seededClient(t, true).SendMessage(context.Background(), msg)
	assert.NoError(t, err)
}

func TestBearerToken(t *testing.T) {
	store := testutil.NewSeededStore(false)
	good := testutil.NewTestServer(t, store, "secret")

	_, err := good.UnreadCount(context.Background(), false)
	require.NoError(t, err)

	bad := api.NewClient(good.BaseURL(), "wrong")
	_, err = bad.Inbox(context.Background(), api.InboxQuery{PerPage: 10})
	assert.True(t, api.IsAuthError(err))
}

func TestRequestHeadersAndFlags(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"successMessage": "Conversation deleted!"})
	}))
	t.Cleanup(srv.Close)

	c := api.NewClient(srv.URL+"/", "tok")
	text, err := c.DeleteMessageItem(context.Background(), 5, true)
	require.NoError(t, err)
	assert.Equal(t, "Conversation deleted!", text)

	require.NotNil(t, got)
	assert.Equal(t, api.PathDeleteItem, got.URL.Path)
	assert.Equal(t, "miid=5&thread", got.URL.RawQuery)
	assert.Equal(t, "XMLHttpRequest", got.Header.Get("X-Requested-With"))
	assert.Equal(t, "Bearer tok", got.Header.Get("Authorization"))
	_, err = uuid.Parse(got.Header.Get("X-Request-Id"))
	assert.NoError(t, err)
}

func TestMalformedErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	t.Cleanup(srv.Close)

	_, err := api.NewClient(srv.URL, "").Inbox(context.Background(), api.InboxQuery{PerPage: 10})
	apiErr := requireAPIError(t, err)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, api.TypeDanger, apiErr.Type)
	assert.Contains(t, apiErr.Message, "Bad Gateway")
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := api.NewClient(url, "").Thread(context.Background(), 1)
	apiErr := requireAPIError(t, err)
	assert.Equal(t, 0, apiErr.Status)
	assert.Equal(t, notice.Danger, apiErr.Severity())
}
