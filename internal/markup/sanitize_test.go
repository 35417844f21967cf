//go:build !integration

package markup

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"double asterisk bold", "**HEADLINE** text", "<b>HEADLINE</b> text"},
		{"double underscore bold", "__BOLD__", "<b>BOLD</b>"},
		{"backtick code", "Use `code` here", "Use <code>code</code> here"},
		{"unclosed bold", "<b>Unclosed", "<b>Unclosed</b>"},
		{"orphan close", "Extra </b> close", "Extra  close"},
		{"mixed html and markdown", "<b>OK</b> and **also**", "<b>OK</b> and <b>also</b>"},
		{"disallowed div", "<div>bad</div> <b>ok</b>", "bad <b>ok</b>"},
		{"span with attributes", `<span style="c">t</span>`, "t"},
		{"second bold unclosed", "<b>one</b> <b>two", "<b>one</b> <b>two</b>"},
		{"heading marker", "## Heading\nText", "Heading\nText"},
		{"single asterisk italic", "*italic text*", "<i>italic text</i>"},
		{"paragraph stripped", "<p>para</p><b>bold</b>", "para<b>bold</b>"},
		{"strong is not s", "<strong>s</strong>", "s"},
		{"anchor kept", `<a href="url">link</a>`, `<a href="url">link</a>`},
		{"dollar amounts untouched", "Price $20 for **1000**", "Price $20 for <b>1000</b>"},
		{"two bold spans", "**Bold** and **bold2**", "<b>Bold</b> and <b>bold2</b>"},
		{"plain text", "Plain text", "Plain text"},
		{"underscore inside word", "snake_case_name stays", "snake_case_name stays"},
		{"uppercase tags balanced", "<B>loud", "<B>loud</b>"},
		{"trims whitespace", "  \n<i>x</i>\n ", "<i>x</i>"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sanitize(tc.in); got != tc.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitize_Balanced(t *testing.T) {
	inputs := []string{
		"</b></b><b>x",
		"<code>a</code></code><i>b",
		"**a** *b* `c` </i></i>",
		"<b><i><code>deep",
	}
	for _, in := range inputs {
		out := strings.ToLower(Sanitize(in))
		for _, tag := range []string{"b", "i", "code"} {
			o := strings.Count(out, "<"+tag+">")
			c := strings.Count(out, "</"+tag+">")
			if o != c {
				t.Errorf("Sanitize(%q) = %q: %d <%s> vs %d </%s>", in, out, o, tag, c, tag)
			}
		}
		if strings.Contains(out, "<div") || strings.Contains(out, "<span") {
			t.Errorf("disallowed tag survived in %q", out)
		}
	}
}

func TestFitCaption(t *testing.T) {
	t.Run("should keep short captions", func(t *testing.T) {
		if got := FitCaption("**Hi** there"); got != "<b>Hi</b> there" {
			t.Errorf("unexpected caption %q", got)
		}
	})

	t.Run("should cut at the last newline past the minimum", func(t *testing.T) {
		head := strings.Repeat("a", 600)
		in := head + "\n" + strings.Repeat("b", 600)
		got := FitCaption(in)
		if got != head {
			t.Errorf("expected cut at newline, got %d runes", len([]rune(got)))
		}
	})

	t.Run("should hard cut when no newline is past the minimum", func(t *testing.T) {
		in := strings.Repeat("x", 100) + "\n" + strings.Repeat("y", 2000)
		got := FitCaption(in)
		if n := len([]rune(got)); n != SoftLimit {
			t.Errorf("expected %d runes, got %d", SoftLimit, n)
		}
	})

	t.Run("should measure runes and rebalance after the cut", func(t *testing.T) {
		in := "<b>" + strings.Repeat("é", 1100)
		got := FitCaption(in)
		if !strings.HasSuffix(got, "</b>") {
			t.Errorf("expected re-balanced bold, got suffix %q", got[len(got)-8:])
		}
		if n := len([]rune(got)); n > CaptionLimit {
			t.Errorf("caption too long: %d runes", n)
		}
	})
}

func TestPlainText(t *testing.T) {
	in := "<b>DEAL</b> &amp; <a href=\"x\">more</a>\n<code>x</code>"
	if got := PlainText(in); got != "DEAL & more\nx" {
		t.Errorf("PlainText(%q) = %q", in, got)
	}
}
