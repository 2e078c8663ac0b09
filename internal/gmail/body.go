package gmail

import (
	"encoding/base64"
	"log/slog"
	"strings"
	"unicode/utf8"

	gmail "google.golang.org/api/gmail/v1"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/mailbridge/gmail-mcp/internal/logging"
)

// decodeErrorSentinel replaces body content whose base64 data cannot be
// decoded. Body extraction never fails; it degrades to this placeholder.
const decodeErrorSentinel = "[Decoding Error]"

// bodySeparator joins sibling body parts of the same kind.
const bodySeparator = "\n---\n"

// ExtractBody folds a message payload tree into a single readable string.
//
// A part carrying inline body data is decoded directly. A multipart container
// is walked child by child: text/plain children land in a plain bucket,
// text/html children in an html bucket, and nested multipart containers are
// recursed into with their yield added to the plain bucket. Plain text wins
// whenever present; html is the fallback. A tree with no readable text yields
// the empty string.
func ExtractBody(part *gmail.MessagePart) string {
	if part == nil {
		return ""
	}

	if part.Body != nil && part.Body.Data != "" {
		return decodeBodyData(part.Body.Data)
	}

	if len(part.Parts) == 0 {
		return ""
	}

	var plainParts, htmlParts []string
	for _, child := range part.Parts {
		switch {
		case child.MimeType == "text/plain":
			if text := ExtractBody(child); text != "" {
				plainParts = append(plainParts, text)
			}
		case child.MimeType == "text/html":
			if text := ExtractBody(child); text != "" {
				htmlParts = append(htmlParts, text)
			}
		case strings.HasPrefix(child.MimeType, "multipart/"):
			// Nested containers resolve their own plain/html choice;
			// whatever they yield counts as readable text here.
			if text := ExtractBody(child); text != "" {
				plainParts = append(plainParts, text)
			}
		}
	}

	if len(plainParts) > 0 {
		return strings.Join(plainParts, bodySeparator)
	}
	if len(htmlParts) > 0 {
		return strings.Join(htmlParts, bodySeparator)
	}
	return ""
}

// decodeBodyData decodes base64url body data into text. The input may arrive
// without padding; it is re-padded to a multiple of 4 before decoding.
// Undecodable base64 yields the sentinel instead of an error.
func decodeBodyData(data string) string {
	if rem := len(data) % 4; rem != 0 {
		data += strings.Repeat("=", 4-rem)
	}

	raw, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		// Some producers use the standard alphabet.
		raw, err = base64.StdEncoding.DecodeString(data)
		if err != nil {
			slog.Error("failed to decode base64 body data", logging.Err(err))
			return decodeErrorSentinel
		}
	}

	return decodeText(raw)
}

// decodeText interprets raw body bytes as UTF-8, falling back to Latin-1 and
// finally to lossy replacement of invalid sequences. The chain never fails.
func decodeText(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}

	slog.Warn("body is not valid UTF-8, decoding as Latin-1")
	decoded, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), raw)
	if err == nil {
		return string(decoded)
	}

	slog.Warn("Latin-1 decoding failed, replacing invalid bytes", logging.Err(err))
	return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
}
