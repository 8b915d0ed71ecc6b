package request

import (
	"regexp"
	"strings"
)

// separatorPattern splits "<artist> - <title>". The first group is lazy so the
// first hyphen wins: "A - B - C" yields artist "A" and title "B - C".
var separatorPattern = regexp.MustCompile(`^(.+?)\s*-\s*(.+)$`)

// Parse turns a chat comment into a SongRequest when it starts with prefix.
// The prefix match is exact and case-sensitive. The returned request carries
// only the text fields; sender fields are stamped by the caller via WithSender.
// Returns false when comment is empty or does not start with prefix.
func Parse(comment, prefix string) (SongRequest, bool) {
	if comment == "" || !strings.HasPrefix(comment, prefix) {
		return SongRequest{}, false
	}

	text := strings.TrimSpace(comment[len(prefix):])

	req := SongRequest{
		RawComment:  comment,
		RequestText: text,
		SongTitle:   text,
	}

	if m := separatorPattern.FindStringSubmatch(text); m != nil {
		req.Artist = strings.TrimSpace(m[1])
		req.SongTitle = strings.TrimSpace(m[2])
	}

	return req, true
}
