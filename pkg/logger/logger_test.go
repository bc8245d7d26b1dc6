package logger

import (
	"testing"
	"unicode/utf8"
)

func TestRedactEmail(t *testing.T) {
	cases := map[string]string{
		"john.doe@example.com": "jo***@example.com",
		"ab@example.com":       "***@example.com",
		"not-an-email":         "***@***",
	}

	for in, want := range cases {
		if got := RedactEmail(in); got != want {
			t.Errorf("RedactEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRedactEmail_MultibyteLocalPart(t *testing.T) {
	cases := map[string]string{
		"élodie@example.com": "él***@example.com",
		"日本語@example.jp":    "日本***@example.jp",
		"éa@example.com":     "***@example.com",
	}

	for in, want := range cases {
		got := RedactEmail(in)
		if !utf8.ValidString(got) {
			t.Errorf("RedactEmail(%q) = %q is not valid UTF-8", in, got)
		}
		if got != want {
			t.Errorf("RedactEmail(%q) = %q, want %q", in, got, want)
		}
	}
}
