package bookmarklet

import (
	"regexp"
	"strings"
)

// LinkPrefix is the executable-link scheme every normalized code
// string starts with.
const LinkPrefix = "javascript:"

const (
	wrapOpen  = "(function(){try{\n"
	wrapClose = "\n}catch(e){alert('Bookmarklet error: '+e);}})();"
)

// fenceLine matches a whole line that opens or closes a code fence:
// three or more backticks or tildes, optionally followed by an info
// string such as a language tag.
var fenceLine = regexp.MustCompile("(?m)^[ ]{0,3}(?:`{3,}|~{3,}).*$")

// Normalize converts free-form pasted text into canonical executable
// form:
//  1. Trim surrounding whitespace.
//  2. If the text starts with a code fence, drop every fence line and
//     trim again.
//  3. Text already starting with the javascript: prefix is returned
//     verbatim.
//  4. Anything else is wrapped in an IIFE with an alert-on-error guard
//     and given the javascript: prefix.
//
// Step 3 makes Normalize idempotent: its own output always begins with
// LinkPrefix, so a second pass changes nothing. Re-wrapping wrapped
// code would break it.
//
// Empty input still wraps; rejecting blank code is the store's job.
func Normalize(raw string) string {
	text := strings.TrimSpace(raw)
	if hasFencePrefix(text) {
		text = strings.TrimSpace(fenceLine.ReplaceAllString(text, ""))
	}
	if strings.HasPrefix(text, LinkPrefix) {
		return text
	}
	return LinkPrefix + wrapOpen + text + wrapClose
}

// hasFencePrefix reports whether trimmed text begins with a fence
// marker. Fences elsewhere in the text never trigger stripping, so
// code containing backticks survives untouched.
func hasFencePrefix(s string) bool {
	return strings.HasPrefix(s, "```") || strings.HasPrefix(s, "~~~")
}
