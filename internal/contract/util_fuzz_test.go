package contract

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

// FuzzParseDuration fuzzes threshold parsing with Go and human durations.
func FuzzParseDuration(f *testing.F) {
	for _, seed := range []string{"4h", "90m", "1 hour", "2 days", "  3   weeks ", "0h", "-1h", "", "1 fortnight"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		d, err := ParseDuration(input)
		if err == nil && d <= 0 {
			t.Errorf("ParseDuration(%q) = %v without error", input, d)
		}
	})
}

// FuzzParseRelativeTime fuzzes the "N units ago" parser.
func FuzzParseRelativeTime(f *testing.F) {
	for _, seed := range []string{"1 year ago", "2 months ago", "3 weeks ago", "4 days ago", "5 hours ago", "0 years ago", "ago"} {
		f.Add(seed)
	}

	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	f.Fuzz(func(t *testing.T, input string) {
		got, err := ParseRelativeTime(input, now)
		if err == nil && got.After(now) {
			t.Errorf("ParseRelativeTime(%q) = %v is in the future", input, got)
		}
	})
}

// FuzzParseCommitLog fuzzes the git log record parser.
func FuzzParseCommitLog(f *testing.F) {
	f.Add("abc" + fieldSep + "Alice" + fieldSep + "a@x" + fieldSep + "1700000000" + fieldSep + "p1 p2" + fieldSep + "msg\n" + recordSep)
	f.Add(recordSep + recordSep)
	f.Add("garbage")
	f.Add("")

	f.Fuzz(func(t *testing.T, input string) {
		commits, err := ParseCommitLog([]byte(input))
		if err != nil {
			return
		}
		for _, c := range commits {
			if c.ID != strings.TrimSpace(c.ID) {
				t.Errorf("commit id %q keeps surrounding space", c.ID)
			}
		}
	})
}

// FuzzTruncateText checks that truncated messages fit the requested width.
func FuzzTruncateText(f *testing.F) {
	f.Add("Fix the thing that was broken", 10)
	f.Add("first line\nsecond line", 40)
	f.Add("héllo wörld", 4)
	f.Add("", 0)

	f.Fuzz(func(t *testing.T, text string, maxWidth int) {
		got := TruncateText(text, maxWidth)
		if strings.Contains(got, "\n") {
			t.Errorf("TruncateText(%q) kept a newline", text)
		}
		if maxWidth > 3 && utf8.RuneCountInString(got) > maxWidth {
			t.Errorf("TruncateText(%q, %d) = %q is too wide", text, maxWidth, got)
		}
	})
}
