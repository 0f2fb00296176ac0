// Package redact replaces anonymization markup in annotation values with
// placeholder tokens.
//
// Annotators mark sensitive spans with one of three bracketed tag forms:
//
//	[anon type="name"]...[/anon]   or [name]...[/name]           -> (NAME)
//	[anon type="<other>"]...[/anon] or [sensitive]...[/sensitive] -> (SENSITIVE)
//
// The enclosed text is discarded outright rather than interpolated into the
// placeholder; echoing even a fragment of a name would defeat anonymization.
// Unterminated or otherwise malformed tags fail to match and pass through as
// plain text.
package redact

import "regexp"

// Matches uses a cheap membership test so the substitution machinery can be
// skipped for the overwhelming majority of annotation values, which carry no
// markup at all.
var pretest = regexp.MustCompile(`\[/?(anon|name|sensitive)`)

var (
	anonName  = regexp.MustCompile(`\[anon type="name"\](.*?)\[/anon\]`)
	plainName = regexp.MustCompile(`\[name\](.*?)\[/name\]`)
	// Any remaining typed span (language, topic, sensitive, ...) collapses to
	// the generic placeholder. Must run after the name form.
	anonOther      = regexp.MustCompile(`\[anon type=".*?"\](.*?)\[/anon\]`)
	plainSensitive = regexp.MustCompile(`\[sensitive\](.*?)\[/sensitive\]`)
)

const (
	namePlaceholder      = "(NAME)"
	sensitivePlaceholder = "(SENSITIVE)"
)

// Matches reports whether s contains any anonymization markup tokens. It is a
// fast pre-check, not a full parse: a string that matches may still come back
// unchanged from Apply if its tags are unterminated.
func Matches(s string) bool {
	return pretest.MatchString(s)
}

// Apply replaces every anonymization-tagged span in s with its placeholder
// and reports whether any replacement occurred. Matching is non-greedy and
// left-to-right; multiple tagged spans in one value are each replaced
// independently. Apply is idempotent: placeholders contain no markup, so a
// second pass changes nothing.
func Apply(s string) (string, bool) {
	if !Matches(s) {
		return s, false
	}

	out := anonName.ReplaceAllString(s, namePlaceholder)
	out = plainName.ReplaceAllString(out, namePlaceholder)
	out = anonOther.ReplaceAllString(out, sensitivePlaceholder)
	out = plainSensitive.ReplaceAllString(out, sensitivePlaceholder)

	return out, out != s
}
