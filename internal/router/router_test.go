package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	cases := []struct {
		path string
		want Route
	}{
		{"/", Route{View: Inbox, Path: "/"}},
		{"", Route{View: Inbox, Path: "/"}},
		{"/compose", Route{View: Compose, Path: "/compose"}},
		{"/compose/", Route{View: Compose, Path: "/compose"}},
		{"/notifications", Route{View: Notifications, Path: "/notifications"}},
		{"/read/42", Route{View: Read, ID: 42, Path: "/read/42"}},
		{"/reply/7", Route{View: Reply, ID: 7, Path: "/reply/7"}},
		{"/read/abc", Route{View: Inbox, Path: "/"}},
		{"/read/0", Route{View: Inbox, Path: "/"}},
		{"/read/", Route{View: Inbox, Path: "/"}},
		{"/settings", Route{View: Inbox, Path: "/"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Match(tc.path), "path %q", tc.path)
	}
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/read/3", ReadPath(3))
	assert.Equal(t, "/reply/3", ReplyPath(3))
	assert.Equal(t, Route{View: Reply, ID: 3, Path: "/reply/3"}, Match(ReplyPath(3)))
}

func TestNavigate(t *testing.T) {
	assert.Equal(t, NavigateMsg{Path: "/read/9"}, Navigate("/read/9")())
}
