// Package markup normalizes free-form text into the limited HTML subset
// accepted by Telegram captions and messages.
package markup

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// Caption length policy, in runes.
const (
	CaptionLimit = 1024
	SoftLimit    = 1020
	MinCut       = 500
)

// word is the ASCII word class; \w in regexp2 is Unicode-aware.
const word = `[A-Za-z0-9_]`

type rule struct {
	re   *regexp2.Regexp
	repl string
}

var (
	emphasisRules = []rule{
		{regexp2.MustCompile(`\*\*(.+?)\*\*`, regexp2.None), "<b>$1</b>"},
		{regexp2.MustCompile(`__(.+?)__`, regexp2.None), "<b>$1</b>"},
		{regexp2.MustCompile(`(?<!`+word+`)\*([^*\n]+?)\*(?!`+word+`)`, regexp2.None), "<i>$1</i>"},
		{regexp2.MustCompile(`(?<!`+word+`)_([^_\n]+?)_(?!`+word+`)`, regexp2.None), "<i>$1</i>"},
		{regexp2.MustCompile("`([^`\\n]+?)`", regexp2.None), "<code>$1</code>"},
		{regexp2.MustCompile(`^#{1,3}\s+`, regexp2.Multiline), ""},
		{regexp2.MustCompile(`<(?!/?(?:b|i|u|s|code|pre|a)\b)[^>]*>`, regexp2.IgnoreCase), ""},
	}

	balanced = []string{"b", "i", "code"}
	openRe   = map[string]*regexp2.Regexp{}
	closeRe  = map[string]*regexp2.Regexp{}
)

func init() {
	for _, tag := range balanced {
		openRe[tag] = regexp2.MustCompile("<"+tag+">", regexp2.IgnoreCase)
		closeRe[tag] = regexp2.MustCompile("</"+tag+">", regexp2.IgnoreCase)
	}
}

// Sanitize converts markdown emphasis to HTML, strips tags outside the
// allowed set, balances b/i/code tags and trims the result. It never fails.
func Sanitize(raw string) string {
	s := raw
	for _, r := range emphasisRules {
		s = replace(r.re, s, r.repl, -1)
	}
	for _, tag := range balanced {
		opens, closes := count(openRe[tag], s), count(closeRe[tag], s)
		switch {
		case opens > closes:
			s += strings.Repeat("</"+tag+">", opens-closes)
		case closes > opens:
			s = replace(closeRe[tag], s, "", closes-opens)
		}
	}
	return strings.TrimSpace(s)
}

// FitCaption sanitizes text and, when it exceeds CaptionLimit runes, cuts it
// at the last line break past MinCut within SoftLimit (or hard at SoftLimit)
// and sanitizes again.
func FitCaption(text string) string {
	s := Sanitize(text)
	r := []rune(s)
	if len(r) <= CaptionLimit {
		return s
	}
	cut := r[:SoftLimit]
	if i := lastIndex(cut, '\n'); i > MinCut {
		cut = cut[:i]
	}
	// drop a tag split by the cut
	if lt, gt := lastIndex(cut, '<'), lastIndex(cut, '>'); lt > gt {
		cut = cut[:lt]
	}
	return Sanitize(string(cut))
}

func replace(re *regexp2.Regexp, s, repl string, n int) string {
	out, err := re.Replace(s, repl, -1, n)
	if err != nil {
		return s
	}
	return out
}

func count(re *regexp2.Regexp, s string) int {
	n := 0
	m, _ := re.FindStringMatch(s)
	for m != nil {
		n++
		m, _ = re.FindNextMatch(m)
	}
	return n
}

func lastIndex(r []rune, c rune) int {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i] == c {
			return i
		}
	}
	return -1
}
