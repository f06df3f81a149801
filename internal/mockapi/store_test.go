package mockapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailterm/internal/model"
)

var t0 = time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC)

func newStore() *Store {
	s := NewStore(1, false)
	s.AddUser(1, "Me", "Myself")
	s.AddUser(2, "Ann", "Archer")
	s.AddUser(3, "Bob", "Baker")
	return s
}

func TestInboxGroupsThreads(t *testing.T) {
	s := newStore()
	first := s.Deliver(2, "Hello", "hi", 0, t0)
	s.Deliver(3, "Re: Hello", "hey", first, t0.Add(time.Hour))
	s.Deliver(3, "Other", "...", 0, t0.Add(30*time.Minute))

	page := s.Inbox(0, 10, model.SortByDate, model.SortDesc)
	require.Equal(t, 2, page.Total)
	assert.Equal(t, "Re: Hello", page.Messages[0].Subject)
	assert.Equal(t, 2, page.Messages[0].Count)
	assert.Equal(t, "Other", page.Messages[1].Subject)

	page = s.Inbox(0, 10, model.SortByDate, model.SortAsc)
	assert.Equal(t, "Other", page.Messages[0].Subject)
}

func TestInboxPageBeyondEnd(t *testing.T) {
	s := newStore()
	s.Deliver(2, "Hello", "hi", 0, t0)

	page := s.Inbox(5, 10, model.SortByDate, model.SortDesc)
	assert.Equal(t, 1, page.Total)
	assert.NotNil(t, page.Messages)
	assert.Empty(t, page.Messages)
}

func TestDeleteLastItemLeavesEmptyInbox(t *testing.T) {
	s := newStore()
	id := s.Deliver(2, "Hello", "hi", 0, t0)

	text, err := s.Delete(id, false)
	require.NoError(t, err)
	assert.Equal(t, "Message deleted!", text)
	assert.Equal(t, 0, s.Inbox(0, 10, model.SortByDate, model.SortDesc).Total)

	_, err = s.Delete(999, false)
	assert.ErrorIs(t, err, errNotFound)
}

func TestSearchExcludesSelectionAndOwner(t *testing.T) {
	s := newStore()
	res := s.Search("", []model.Recipient{{ID: "2", Type: model.RecipientUser}}, 0)

	require.Len(t, res.Results, 1)
	assert.Equal(t, "3", res.Results[0].ID)
	assert.Equal(t, 1, res.Count)
}

func TestRenderBody(t *testing.T) {
	assert.Equal(t, "a &lt;b&gt;<br />c", renderBody("a <b>\r\nc"))
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "hello world", stripTags("<p>hello <b>world</b></p>"))
}

func TestRouterRejectsBadSort(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(newStore(), Options{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/get/inbox/?sort_field=size", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"type":"danger","errorMessage":"invalid sort field"}`, w.Body.String())
}

func TestRouterUnreadCountFlag(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := newStore()
	s.Deliver(2, "Hello", "hi", 0, t0)
	s.Notify("Grades", "posted", "https://example.com", t0)
	s.Notify("Forum", "reply", "https://example.com", t0)
	r := NewRouter(s, Options{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/get/unread/count/?n", nil))
	assert.JSONEq(t, `{"count": 2}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/get/unread/count/", nil))
	assert.JSONEq(t, `{"count": 1}`, w.Body.String())
}
