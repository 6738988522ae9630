package titles

import (
	"regexp"
	"strings"
)

// Separator markers that indicate a title came from X/Twitter. The first
// one found splits the tweet text from the site suffix.
var twitterSeparators = []string{" / X", " | X", " X: ", " - X"}

// Trailing phrases the site appends after the account name.
var twitterNoise = []string{" w serwisie", " on X", " on Twitter"}

// Notification counts like "(3)" show up before or after the account name
// depending on the page.
var notificationCount = regexp.MustCompile(`\s*\(\d+\)\s*`)

// Clean strips control characters and non-characters from a window title,
// keeping only code points in [32, 65533). Cleaning a cleaned string is a
// no-op.
func Clean(title string) string {
	if title == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(title))
	for _, c := range title {
		if c >= 32 && c < 65533 {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// FormatTwitterTitle rewrites an X/Twitter window title into a canonical
// short form: the part before the site separator, minus a leading
// notification-count parenthetical and trailing site noise, tagged with
// " (@X)". Titles without a recognized marker pass through unchanged.
func FormatTwitterTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return title
	}

	rawName := title
	for _, sep := range twitterSeparators {
		if idx := strings.Index(title, sep); idx >= 0 {
			rawName = title[:idx]
			break
		}
	}

	// Strip a leading "(...)" prefix, then any remaining "(3)" style
	// notification counts.
	if strings.HasPrefix(rawName, "(") {
		if closing := strings.Index(rawName, ")"); closing > 0 && closing < len(rawName)-1 {
			rawName = strings.TrimSpace(rawName[closing+1:])
		}
	}
	rawName = notificationCount.ReplaceAllString(rawName, " ")

	for _, word := range twitterNoise {
		if idx := strings.Index(rawName, word); idx >= 0 {
			rawName = rawName[:idx]
		}
	}

	if strings.Contains(title, " X") || strings.Contains(title, "Twitter") {
		return strings.TrimSpace(rawName) + " (@X)"
	}

	return title
}
