// Package mockapi is an in-memory implementation of the messaging REST API,
// used for local development and transport tests.
package mockapi

import (
	"errors"
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nhle/mailterm/internal/model"
)

// SearchPerPage is the recipient search page size.
const SearchPerPage = 10

// groupDelimiter joins course and group keys into a group recipient id.
const groupDelimiter = "-"

var (
	errNotFound  = errors.New("Message item not found")
	errForbidden = errors.New("Only super users can send messages to everyone")
)

type user struct {
	ID    int64
	First string
	Last  string
}

func (u user) Name() string {
	return strings.TrimSpace(u.First + " " + u.Last)
}

type group struct {
	Course string
	Group  string
	Name   string
}

type course struct {
	ID   string
	Name string
}

type message struct {
	ID           int64
	Thread       int64
	Sender       int64
	Subject      string
	Body         string
	URL          string
	Sent         time.Time
	Notification bool
	Targets      []model.Recipient
}

// item is the current user's copy of a message.
type item struct {
	ID      int64
	Message *message
	Read    bool
	Deleted bool
}

// Store holds the mailbox of a single signed-in user.
type Store struct {
	mu sync.Mutex

	me        user
	superUser bool
	users     map[int64]user
	groups    []group
	courses   []course
	items     []*item

	nextMessage int64
	nextItem    int64
	now         func() time.Time
}

// NewStore creates an empty mailbox owned by me.
func NewStore(me int64, superUser bool) *Store {
	return &Store{
		me:          user{ID: me},
		superUser:   superUser,
		users:       map[int64]user{},
		nextMessage: 1,
		nextItem:    1,
		now:         time.Now,
	}
}

// AddUser registers a user. The user whose id matches the mailbox owner
// becomes the owner.
func (s *Store) AddUser(id int64, first, last string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user{ID: id, First: first, Last: last}
	s.users[id] = u
	if id == s.me.ID {
		s.me = u
	}
}

// AddGroup registers a group of a course.
func (s *Store) AddGroup(courseID, groupID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = append(s.groups, group{Course: courseID, Group: groupID, Name: name})
}

// AddCourse registers a course.
func (s *Store) AddCourse(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses = append(s.courses, course{ID: id, Name: name})
}

// Deliver puts a message from sender into the owner's inbox and returns the
// item id. A non-zero replyTo item id files it into that item's thread.
func (s *Store) Deliver(sender int64, subject, body string, replyTo int64, sent time.Time) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	thread := int64(0)
	if parent := s.find(replyTo); parent != nil {
		thread = parent.Message.Thread
	}
	return s.add(&message{
		Sender:  sender,
		Subject: subject,
		Body:    body,
		Sent:    sent,
		Targets: []model.Recipient{{ID: strconv.FormatInt(s.me.ID, 10), Type: model.RecipientUser}},
	}, thread, false)
}

// Notify puts a notification into the owner's feed and returns its id.
func (s *Store) Notify(subject, body, url string, sent time.Time) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(&message{
		Subject:      subject,
		Body:         body,
		URL:          url,
		Sent:         sent,
		Notification: true,
	}, 0, false)
}

func (s *Store) add(m *message, thread int64, read bool) int64 {
	m.ID = s.nextMessage
	s.nextMessage++
	if thread == 0 {
		thread = m.ID
	}
	m.Thread = thread

	it := &item{ID: s.nextItem, Message: m, Read: read}
	s.nextItem++
	s.items = append(s.items, it)
	return it.ID
}

func (s *Store) find(miid int64) *item {
	for _, it := range s.items {
		if it.ID == miid {
			return it
		}
	}
	return nil
}

func (s *Store) senderName(m *message) string {
	if u, ok := s.users[m.Sender]; ok {
		return u.Name()
	}
	return ""
}

func sentDisplay(t time.Time) string {
	return t.Format("2 Jan 2006 15:04")
}

// renderBody escapes body and turns newlines into <br> tags.
func renderBody(body string) string {
	escaped := html.EscapeString(body)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return strings.ReplaceAll(escaped, "\n", "<br />")
}

func paginate(n, page, perPage int) (int, int) {
	if perPage <= 0 {
		perPage = 10
	}
	if page < 0 {
		page = 0
	}
	from := page * perPage
	if from > n {
		from = n
	}
	to := from + perPage
	if to > n {
		to = n
	}
	return from, to
}

// Inbox returns one page of threads, represented by their latest message.
func (s *Store) Inbox(page, perPage int, field, dir string) model.InboxPage {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest := map[int64]*item{}
	count := map[int64]int{}
	unread := map[int64]int{}
	for _, it := range s.items {
		m := it.Message
		if m.Notification || it.Deleted {
			continue
		}
		count[m.Thread]++
		if !it.Read {
			unread[m.Thread]++
		}
		if cur, ok := latest[m.Thread]; !ok || m.Sent.After(cur.Message.Sent) {
			latest[m.Thread] = it
		}
	}

	threads := make([]*item, 0, len(latest))
	for _, it := range latest {
		threads = append(threads, it)
	}
	sort.SliceStable(threads, func(i, j int) bool {
		a, b := threads[i].Message, threads[j].Message
		if field == model.SortBySender {
			an, bn := s.senderName(a), s.senderName(b)
			if an != bn {
				if dir == model.SortAsc {
					return an < bn
				}
				return an > bn
			}
		}
		if dir == model.SortAsc {
			return a.Sent.Before(b.Sent)
		}
		return a.Sent.After(b.Sent)
	})

	from, to := paginate(len(threads), page, perPage)
	out := model.InboxPage{Messages: []model.MessageSummary{}, Total: len(threads)}
	for _, it := range threads[from:to] {
		out.Messages = append(out.Messages, model.MessageSummary{
			ID:      it.ID,
			Sender:  s.senderName(it.Message),
			Subject: it.Message.Subject,
			Sent:    sentDisplay(it.Message.Sent),
			Count:   count[it.Message.Thread],
			Unread:  unread[it.Message.Thread],
		})
	}
	return out
}

// Thread returns the undeleted messages of miid's thread, oldest first, and
// marks them read.
func (s *Store) Thread(miid int64) (model.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it := s.find(miid)
	if it == nil {
		return model.Thread{}, errNotFound
	}

	var members []*item
	for _, other := range s.items {
		if other.Message.Thread == it.Message.Thread && !other.Deleted && !other.Message.Notification {
			members = append(members, other)
		}
	}
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Message.Sent.Before(members[j].Message.Sent)
	})

	out := model.Thread{
		Subject:  it.Message.Subject,
		Messages: []model.ThreadMessage{},
		Total:    len(members),
	}
	for _, m := range members {
		out.Messages = append(out.Messages, model.ThreadMessage{
			ID:      m.ID,
			Sender:  s.senderName(m.Message),
			Subject: m.Message.Subject,
			Body:    renderBody(m.Message.Body),
			Sent:    sentDisplay(m.Message.Sent),
			Read:    m.Read,
		})
	}
	for _, m := range members {
		m.Read = true
	}
	return out, nil
}

// Notifications returns one page of the notification feed, newest first.
func (s *Store) Notifications(page, perPage int) model.NotificationPage {
	s.mu.Lock()
	defer s.mu.Unlock()

	var feed []*item
	for _, it := range s.items {
		if it.Message.Notification && !it.Deleted {
			feed = append(feed, it)
		}
	}
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Message.Sent.After(feed[j].Message.Sent)
	})

	from, to := paginate(len(feed), page, perPage)
	out := model.NotificationPage{Notifications: []model.Notification{}, Total: len(feed)}
	for _, it := range feed[from:to] {
		out.Notifications = append(out.Notifications, model.Notification{
			ID:      it.ID,
			Subject: it.Message.Subject,
			Body:    it.Message.Body,
			URL:     it.Message.URL,
			Sent:    sentDisplay(it.Message.Sent),
			Read:    it.Read,
		})
	}
	return out
}

// MarkRead flags a notification as read.
func (s *Store) MarkRead(miid int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it := s.find(miid)
	if it == nil {
		return errNotFound
	}
	it.Read = true
	return nil
}

// ReplyInfo returns the prefill for replying to miid. The original sender
// comes first, followed by the other targets.
func (s *Store) ReplyInfo(miid int64) (model.ReplyInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it := s.find(miid)
	if it == nil {
		return model.ReplyInfo{}, errNotFound
	}
	m := it.Message

	recipients := []model.Recipient{{
		ID:   strconv.FormatInt(m.Sender, 10),
		Name: s.senderName(m),
		Type: model.RecipientUser,
	}}
	for _, t := range m.Targets {
		if t.Type == model.RecipientUser {
			id, _ := strconv.ParseInt(t.ID, 10, 64)
			if id == m.Sender || id == s.me.ID {
				continue
			}
			t.Name = s.users[id].Name()
		}
		recipients = append(recipients, t)
	}

	return model.ReplyInfo{
		Recipients: recipients,
		Subject:    m.Subject,
		Sender:     s.senderName(m),
		Body:       renderBody(m.Body),
	}, nil
}

// Search finds users, groups and courses whose name contains q, minus the
// excluded recipients, and returns one page of them with the total count.
func (s *Store) Search(q string, exclude []model.Recipient, page int) model.SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	skip := map[string]bool{}
	for _, r := range exclude {
		skip[r.Type+":"+r.ID] = true
	}
	match := func(name string) bool {
		return strings.Contains(strings.ToLower(name), strings.ToLower(q))
	}

	var all []model.Recipient
	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		u := s.users[id]
		r := model.Recipient{ID: strconv.FormatInt(id, 10), Name: u.Name(), Type: model.RecipientUser}
		if id != s.me.ID && match(u.Name()) && !skip[r.Type+":"+r.ID] {
			all = append(all, r)
		}
	}
	for _, g := range s.groups {
		r := model.Recipient{ID: g.Course + groupDelimiter + g.Group, Name: g.Name, Type: model.RecipientGroup}
		if match(g.Name) && !skip[r.Type+":"+r.ID] {
			all = append(all, r)
		}
	}
	for _, c := range s.courses {
		r := model.Recipient{ID: c.ID, Name: c.Name, Type: model.RecipientCourse}
		if match(c.Name) && !skip[r.Type+":"+r.ID] {
			all = append(all, r)
		}
	}

	from, to := paginate(len(all), page, SearchPerPage)
	return model.SearchResult{
		Results: append([]model.Recipient{}, all[from:to]...),
		Count:   len(all),
		PerPage: SearchPerPage,
	}
}

// Send records a message from the owner. Replies join the parent's thread.
func (s *Store) Send(msg model.OutgoingMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.TargetAll && !s.superUser {
		return errForbidden
	}

	thread := int64(0)
	if msg.MIID != 0 {
		parent := s.find(msg.MIID)
		if parent == nil {
			return errNotFound
		}
		thread = parent.Message.Thread
	}

	s.add(&message{
		Sender:  s.me.ID,
		Subject: stripTags(msg.Subject),
		Body:    stripTags(msg.Body),
		Sent:    s.now(),
		Targets: msg.Recipients,
	}, thread, true)
	return nil
}

// Delete marks an item, or every item of its thread, as deleted and
// returns the confirmation text.
func (s *Store) Delete(miid int64, thread bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it := s.find(miid)
	if it == nil {
		return "", errNotFound
	}

	if !thread {
		it.Deleted = true
		if it.Message.Notification {
			return "Notification deleted!", nil
		}
		return "Message deleted!", nil
	}

	for _, other := range s.items {
		if other.Message.Thread == it.Message.Thread && !other.Message.Notification {
			other.Deleted = true
		}
	}
	return "Conversation deleted!", nil
}

// UnreadCount counts unread, undeleted messages or notifications.
func (s *Store) UnreadCount(notifications bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, it := range s.items {
		if it.Message.Notification == notifications && !it.Read && !it.Deleted {
			n++
		}
	}
	return n
}

// stripTags removes anything that looks like an HTML tag.
func stripTags(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// String summarises the store for logging.
func (s *Store) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("mailbox of %s: %d items, %d users", s.me.Name(), len(s.items), len(s.users))
}
