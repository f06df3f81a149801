// Package markup converts the server's HTML message bodies to plain text
// for the terminal.
package markup

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ToText renders an HTML fragment as plain text. Line breaks and block
// elements become newlines, entities are decoded and links keep their
// target in parentheses. Unknown tags are dropped, their text is kept.
func ToText(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))

	var (
		b     strings.Builder
		hrefs []string
	)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or a malformed fragment; keep what was read.
			return tidy(b.String())

		case html.TextToken:
			b.Write(z.Text())

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.Br:
				b.WriteByte('\n')
			case atom.P, atom.Div, atom.Blockquote, atom.Ul, atom.Ol:
				newline(&b)
			case atom.Li:
				newline(&b)
				b.WriteString("- ")
			case atom.A:
				hrefs = append(hrefs, attr(tok, "href"))
			}

		case html.EndTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.P, atom.Div, atom.Blockquote:
				newline(&b)
				b.WriteByte('\n')
			case atom.A:
				if n := len(hrefs); n > 0 {
					if href := hrefs[n-1]; href != "" {
						b.WriteString(" (" + href + ")")
					}
					hrefs = hrefs[:n-1]
				}
			}
		}
	}
}

// Quote prefixes every line of the rendered fragment with "> ", as used
// when replying.
func Quote(fragment string) string {
	text := ToText(fragment)
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight("> "+l, " ")
	}
	return strings.Join(lines, "\n")
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// newline ends the current line unless the builder already sits at the
// start of one.
func newline(b *strings.Builder) {
	s := b.String()
	if s != "" && !strings.HasSuffix(s, "\n") {
		b.WriteByte('\n')
	}
}

// tidy trims trailing spaces from every line, collapses runs of blank lines
// and strips leading and trailing blank lines.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	blank := 0
	for _, l := range lines {
		l = strings.TrimRight(l, " \t\r")
		if l == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, l)
	}
	return strings.Trim(strings.Join(out, "\n"), "\n")
}
