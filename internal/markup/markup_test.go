package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"line breaks", "Hi,<br /><br />See you<br>soon.", "Hi,\n\nSee you\nsoon."},
		{"entities", "a &lt;b&gt; &amp; &#39;c&#39;", "a <b> & 'c'"},
		{"paragraphs", "<p>one</p><p>two</p>", "one\n\ntwo"},
		{"link", `read <a href="https://x.example/1">this</a> now`, "read this (https://x.example/1) now"},
		{"list", "<ul><li>a</li><li>b</li></ul>", "- a\n- b"},
		{"unknown tags", "<span>kept</span> <b>bold</b>", "kept bold"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ToText(tc.in))
		})
	}
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "> Hi,\n>\n> bye", Quote("Hi,<br /><br />bye"))
	assert.Equal(t, "", Quote(""))
}
