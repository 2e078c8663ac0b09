package gmail

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/mailbridge/gmail-mcp/internal/logging"
)

// ThreadingContext carries the reply addressing and conversation headers
// derived from an original message. InReplyTo and References are empty when
// the original lacks a Message-ID; replies still go out, just unthreaded.
type ThreadingContext struct {
	ReplyTo    string
	Subject    string
	InReplyTo  string
	References string
}

// OutgoingMessage describes a message to assemble for sending. Attachments
// are local file paths; unreadable paths are skipped during assembly.
type OutgoingMessage struct {
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	Body        string
	Attachments []string
	Threading   *ThreadingContext
}

// ResolveThreading derives the reply recipient, subject and threading headers
// from the original message's headers. Missing headers degrade the result,
// they never fail: without a Message-ID the reply simply carries no
// In-Reply-To/References.
func ResolveThreading(original *gmail.Message) *ThreadingContext {
	headers := headerMap(original)

	tc := &ThreadingContext{}

	// Reply-To wins over From when the sender asked for it.
	tc.ReplyTo = headers["reply-to"]
	if tc.ReplyTo == "" {
		tc.ReplyTo = headers["from"]
	}

	subject := headers["subject"]
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}
	tc.Subject = subject

	messageID := headers["message-id"]
	if messageID == "" {
		slog.Warn("original message missing Message-ID header, threading may be affected",
			logging.KeyMessageID, original.Id)
		return tc
	}

	tc.InReplyTo = messageID
	references := headers["references"]
	if !strings.Contains(references, messageID) {
		if references != "" {
			references += " "
		}
		references += messageID
	}
	tc.References = references
	return tc
}

// AssembleRaw builds the RFC 2822 wire form of msg as a multipart/mixed
// message, the plain-text body first and one base64 part per readable
// attachment, and returns it base64url-encoded for the Gmail API.
func AssembleRaw(msg *OutgoingMessage) string {
	var body strings.Builder
	writer := multipart.NewWriter(&body)

	var headers strings.Builder
	headers.WriteString("To: ")
	headers.WriteString(strings.Join(msg.To, ", "))
	headers.WriteString("\r\n")

	if len(msg.Cc) > 0 {
		headers.WriteString("Cc: ")
		headers.WriteString(strings.Join(msg.Cc, ", "))
		headers.WriteString("\r\n")
	}
	if len(msg.Bcc) > 0 {
		headers.WriteString("Bcc: ")
		headers.WriteString(strings.Join(msg.Bcc, ", "))
		headers.WriteString("\r\n")
	}

	headers.WriteString("Subject: ")
	headers.WriteString(encodeRFC2047(msg.Subject))
	headers.WriteString("\r\n")

	if tc := msg.Threading; tc != nil {
		if tc.InReplyTo != "" {
			headers.WriteString("In-Reply-To: ")
			headers.WriteString(tc.InReplyTo)
			headers.WriteString("\r\n")
		}
		if tc.References != "" {
			headers.WriteString("References: ")
			headers.WriteString(tc.References)
			headers.WriteString("\r\n")
		}
	}

	headers.WriteString("MIME-Version: 1.0\r\n")
	headers.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q\r\n", writer.Boundary()))
	headers.WriteString("\r\n")

	textHeader := make(textproto.MIMEHeader)
	textHeader.Set("Content-Type", `text/plain; charset="UTF-8"`)
	if part, err := writer.CreatePart(textHeader); err == nil {
		_, _ = part.Write([]byte(msg.Body))
	}

	for _, path := range msg.Attachments {
		writeAttachmentPart(writer, path)
	}

	_ = writer.Close()

	return base64.URLEncoding.EncodeToString([]byte(headers.String() + body.String()))
}

// writeAttachmentPart appends one file as a base64 attachment part. A file
// that cannot be read is skipped with a warning so the message still goes out
// with the attachments that could be read.
func writeAttachmentPart(writer *multipart.Writer, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("attachment file not readable, skipping", "path", path, logging.Err(err))
		return
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Type", guessContentType(path))
	header.Set("Content-Transfer-Encoding", "base64")
	header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))

	part, err := writer.CreatePart(header)
	if err != nil {
		slog.Warn("failed to create attachment part, skipping", "path", path, logging.Err(err))
		return
	}
	_, _ = part.Write(wrapBase64(data))
}

// encodingExtensions lists filename extensions that name a compression
// encoding rather than a media type. The platform MIME table may map them to
// types like application/gzip; attachments with these extensions always go
// out as octet-stream.
var encodingExtensions = map[string]bool{
	".gz":  true,
	".bz2": true,
	".xz":  true,
	".z":   true,
	".br":  true,
}

// guessContentType guesses a content type from the filename extension.
// Unknown extensions and compression-encoding extensions fall back to
// application/octet-stream.
func guessContentType(path string) string {
	ext := filepath.Ext(path)
	if encodingExtensions[strings.ToLower(ext)] {
		return "application/octet-stream"
	}
	if ctype := mime.TypeByExtension(ext); ctype != "" {
		return ctype
	}
	return "application/octet-stream"
}

// wrapBase64 encodes data as base64 folded to 76-character lines.
func wrapBase64(data []byte) []byte {
	encoded := base64.StdEncoding.EncodeToString(data)

	const lineLen = 76
	var out strings.Builder
	out.Grow(len(encoded) + 2*(len(encoded)/lineLen+1))
	for len(encoded) > lineLen {
		out.WriteString(encoded[:lineLen])
		out.WriteString("\r\n")
		encoded = encoded[lineLen:]
	}
	out.WriteString(encoded)
	return []byte(out.String())
}

// encodeRFC2047 encodes a string for use in email headers according to RFC 2047
// This is necessary for non-ASCII characters (like German umlauts) in subjects
func encodeRFC2047(s string) string {
	// Check if the string contains only ASCII characters
	needsEncoding := false
	for _, r := range s {
		if r > 127 {
			needsEncoding = true
			break
		}
	}

	// If it's all ASCII, return as-is
	if !needsEncoding {
		return s
	}

	// Use Go's mime package which implements RFC 2047 encoding
	return mime.BEncoding.Encode("UTF-8", s)
}
