package redact

import (
	"strings"
	"testing"
)

func TestApplyNameForms(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`[name]Bruce[/name] went home`, `(NAME) went home`},
		{`[anon type="name"]Bruce Starlight[/anon] spoke`, `(NAME) spoke`},
		{`said by [name]B.[/name] and [name]C.[/name]`, `said by (NAME) and (NAME)`},
	}
	for _, tc := range cases {
		got, changed := Apply(tc.in)
		if got != tc.want {
			t.Errorf("Apply(%q) = %q, want %q", tc.in, got, tc.want)
		}
		if !changed {
			t.Errorf("Apply(%q) reported no change", tc.in)
		}
		if strings.Contains(got, "Bruce") || strings.Contains(got, "B.") {
			t.Errorf("Apply(%q) leaked captured content: %q", tc.in, got)
		}
	}
}

func TestApplySensitiveForms(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`[sensitive]the incident[/sensitive]`, `(SENSITIVE)`},
		{`[anon type="topic"]land claim[/anon] details`, `(SENSITIVE) details`},
		{`[anon type="language"]loanword[/anon]`, `(SENSITIVE)`},
	}
	for _, tc := range cases {
		got, changed := Apply(tc.in)
		if got != tc.want || !changed {
			t.Errorf("Apply(%q) = (%q, %v), want (%q, true)", tc.in, got, changed, tc.want)
		}
	}
}

func TestApplyNamedBeforeGeneric(t *testing.T) {
	// The name-typed anon form must win over the generic anon rule.
	got, _ := Apply(`[anon type="name"]X[/anon] [anon type="topic"]Y[/anon]`)
	if got != "(NAME) (SENSITIVE)" {
		t.Fatalf("priority order broken: %q", got)
	}
}

func TestApplyUntaggedAndMalformed(t *testing.T) {
	cases := []string{
		"plain text with no markup",
		"[unrelated]bracketed[/unrelated]",
		"[name]unterminated",
		"[anon type=\"topic\"]also unterminated",
	}
	for _, in := range cases {
		got, changed := Apply(in)
		if got != in {
			t.Errorf("Apply(%q) mutated to %q", in, got)
		}
		if changed {
			t.Errorf("Apply(%q) reported a change", in)
		}
	}
}

func TestApplyIdempotent(t *testing.T) {
	once, changed := Apply(`intro [sensitive]secret[/sensitive] outro`)
	if !changed {
		t.Fatal("first pass should change")
	}
	twice, changed := Apply(once)
	if changed || twice != once {
		t.Fatalf("second pass not a no-op: %q -> %q (changed=%v)", once, twice, changed)
	}
}

func TestMatches(t *testing.T) {
	for _, s := range []string{"[anon ", "x [name]y", "[sensitive]", "[/sensitive]"} {
		if !Matches(s) {
			t.Errorf("Matches(%q) = false", s)
		}
	}
	for _, s := range []string{"", "plain", "[other]tag[/other]"} {
		if Matches(s) {
			t.Errorf("Matches(%q) = true", s)
		}
	}
}
