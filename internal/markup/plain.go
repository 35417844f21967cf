package markup

import (
	"html"
	"strings"

	"github.com/dlclark/regexp2"
)

var anyTag = regexp2.MustCompile(`<[^>]+>`, regexp2.None)

// PlainText drops every tag and unescapes entities, for sends without a parse mode.
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(replace(anyTag, s, "", -1)))
}
