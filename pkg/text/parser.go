// Package text splits exported chat transcripts into messages and extracts
// the links each sender shared.
package text

import (
	"regexp"
	"strings"
)

var (
	// Bracketed export marker, e.g. "[03.02.24, 9:05:07 PM]". Exports use a
	// narrow no-break space before the meridiem on newer clients.
	delimiterRegex = regexp.MustCompile(`\[(\d{2}[./]\d{2}[./]\d{2}, \d{1,2}:\d{2}:\d{2}[ \x{202F}\x{00A0}](?:AM|PM|am|pm))\]`)

	// Sender prefix, free text, then the first URL in the message body.
	linkRegex = regexp.MustCompile(`(?s)(.+?): (.*?)(https?://\S+)`)
)

// Message is one transcript entry: the timestamp from its delimiter and the
// text up to the next delimiter.
type Message struct {
	Timestamp string
	Body      string
}

// Attribution records who shared a URL and when.
type Attribution struct {
	URL       string
	Sender    string
	Timestamp string
}

// Segment splits a transcript on its timestamp delimiters. Text before the
// first delimiter is discarded and the result preserves transcript order.
func Segment(transcript string) []Message {
	locs := delimiterRegex.FindAllStringSubmatchIndex(transcript, -1)
	if len(locs) == 0 {
		return nil
	}

	messages := make([]Message, 0, len(locs))
	for i, loc := range locs {
		end := len(transcript)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		messages = append(messages, Message{
			Timestamp: transcript[loc[2]:loc[3]],
			Body:      strings.TrimSpace(transcript[loc[1]:end]),
		})
	}
	return messages
}

// Extract returns one attribution per distinct URL in first-seen order.
// A message may carry several "sender: ... url" fragments (quoted or
// forwarded text); each is attributed to the message timestamp. Later
// repeats of a URL keep the first sender and timestamp.
func Extract(messages []Message) []Attribution {
	seen := make(map[string]struct{})
	var out []Attribution

	for _, msg := range messages {
		for _, match := range linkRegex.FindAllStringSubmatch(msg.Body, -1) {
			url := match[3]
			if _, dup := seen[url]; dup {
				continue
			}
			seen[url] = struct{}{}

			out = append(out, Attribution{
				URL:       url,
				Sender:    senderName(match[1]),
				Timestamp: msg.Timestamp,
			})
		}
	}
	return out
}

// senderName reduces the captured prefix to the sender: the text before the
// first colon, or the whole prefix when it has none. Names keep their spaces
// and the "~" marker exports put in front of unsaved contacts. A colon-free
// prefix spanning several lines is a system line running into a link and is
// cut to its first token.
func senderName(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if i := strings.Index(prefix, ":"); i >= 0 {
		return strings.TrimSpace(prefix[:i])
	}
	if strings.Contains(prefix, "\n") {
		if fields := strings.Fields(prefix); len(fields) > 0 {
			return fields[0]
		}
	}
	return prefix
}
