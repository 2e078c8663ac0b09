package gmail

import (
	"encoding/base64"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gmail "google.golang.org/api/gmail/v1"
)

func messageWithHeaders(headers map[string]string) *gmail.Message {
	var partHeaders []*gmail.MessagePartHeader
	for name, value := range headers {
		partHeaders = append(partHeaders, &gmail.MessagePartHeader{Name: name, Value: value})
	}
	return &gmail.Message{
		Id:      "msg123",
		Payload: &gmail.MessagePart{Headers: partHeaders},
	}
}

func TestResolveThreading(t *testing.T) {
	tests := []struct {
		name           string
		headers        map[string]string
		wantReplyTo    string
		wantSubject    string
		wantInReplyTo  string
		wantReferences string
	}{
		{
			name: "reply-to preferred over from",
			headers: map[string]string{
				"From":       "sender@example.com",
				"Reply-To":   "replies@example.com",
				"Subject":    "Hello",
				"Message-ID": "<a@x>",
			},
			wantReplyTo:    "replies@example.com",
			wantSubject:    "Re: Hello",
			wantInReplyTo:  "<a@x>",
			wantReferences: "<a@x>",
		},
		{
			name: "from fallback when no reply-to",
			headers: map[string]string{
				"From":       "sender@example.com",
				"Subject":    "Hello",
				"Message-ID": "<a@x>",
			},
			wantReplyTo:    "sender@example.com",
			wantSubject:    "Re: Hello",
			wantInReplyTo:  "<a@x>",
			wantReferences: "<a@x>",
		},
		{
			name: "existing Re: prefix reused verbatim",
			headers: map[string]string{
				"From":       "sender@example.com",
				"Subject":    "Re: Hello",
				"Message-ID": "<a@x>",
			},
			wantReplyTo:    "sender@example.com",
			wantSubject:    "Re: Hello",
			wantInReplyTo:  "<a@x>",
			wantReferences: "<a@x>",
		},
		{
			name: "uppercase RE: prefix not duplicated",
			headers: map[string]string{
				"From":       "sender@example.com",
				"Subject":    "RE: Hello",
				"Message-ID": "<a@x>",
			},
			wantReplyTo:    "sender@example.com",
			wantSubject:    "RE: Hello",
			wantInReplyTo:  "<a@x>",
			wantReferences: "<a@x>",
		},
		{
			name: "message-id appended to existing references",
			headers: map[string]string{
				"From":       "sender@example.com",
				"Subject":    "Hello",
				"Message-ID": "<c@z>",
				"References": "<a@x> <b@y>",
			},
			wantReplyTo:    "sender@example.com",
			wantSubject:    "Re: Hello",
			wantInReplyTo:  "<c@z>",
			wantReferences: "<a@x> <b@y> <c@z>",
		},
		{
			name: "message-id already in references not duplicated",
			headers: map[string]string{
				"From":       "sender@example.com",
				"Subject":    "Hello",
				"Message-ID": "<a@x>",
				"References": "<a@x>",
			},
			wantReplyTo:    "sender@example.com",
			wantSubject:    "Re: Hello",
			wantInReplyTo:  "<a@x>",
			wantReferences: "<a@x>",
		},
		{
			name: "missing message-id degrades without threading headers",
			headers: map[string]string{
				"From":       "sender@example.com",
				"Subject":    "Hello",
				"References": "<a@x>",
			},
			wantReplyTo:    "sender@example.com",
			wantSubject:    "Re: Hello",
			wantInReplyTo:  "",
			wantReferences: "",
		},
		{
			name:           "empty headers still resolve",
			headers:        map[string]string{},
			wantReplyTo:    "",
			wantSubject:    "Re: ",
			wantInReplyTo:  "",
			wantReferences: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := ResolveThreading(messageWithHeaders(tt.headers))

			if tc.ReplyTo != tt.wantReplyTo {
				t.Errorf("ReplyTo = %q, want %q", tc.ReplyTo, tt.wantReplyTo)
			}
			if tc.Subject != tt.wantSubject {
				t.Errorf("Subject = %q, want %q", tc.Subject, tt.wantSubject)
			}
			if tc.InReplyTo != tt.wantInReplyTo {
				t.Errorf("InReplyTo = %q, want %q", tc.InReplyTo, tt.wantInReplyTo)
			}
			if tc.References != tt.wantReferences {
				t.Errorf("References = %q, want %q", tc.References, tt.wantReferences)
			}
		})
	}
}

func decodeRaw(t *testing.T, raw string) string {
	t.Helper()
	decoded, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("failed to decode raw message: %v", err)
	}
	return string(decoded)
}

func TestAssembleRaw_Basic(t *testing.T) {
	raw := AssembleRaw(&OutgoingMessage{
		To:      []string{"recipient@example.com"},
		Subject: "Test Subject",
		Body:    "Body content",
	})

	msg := decodeRaw(t, raw)

	wantContains := []string{
		"To: recipient@example.com\r\n",
		"Subject: Test Subject\r\n",
		"MIME-Version: 1.0\r\n",
		"Content-Type: multipart/mixed; boundary=",
		`Content-Type: text/plain; charset="UTF-8"`,
		"Body content",
	}
	for _, want := range wantContains {
		if !strings.Contains(msg, want) {
			t.Errorf("assembled message missing %q\nGot: %v", want, msg)
		}
	}

	if strings.Contains(msg, "In-Reply-To:") || strings.Contains(msg, "References:") {
		t.Errorf("message without threading context should carry no threading headers")
	}
}

func TestAssembleRaw_ThreadingHeaders(t *testing.T) {
	raw := AssembleRaw(&OutgoingMessage{
		To:      []string{"sender@example.com"},
		Subject: "Re: Hello",
		Body:    "Reply body",
		Threading: &ThreadingContext{
			ReplyTo:    "sender@example.com",
			Subject:    "Re: Hello",
			InReplyTo:  "<a@x>",
			References: "<ref@x> <a@x>",
		},
	})

	msg := decodeRaw(t, raw)

	if !strings.Contains(msg, "In-Reply-To: <a@x>\r\n") {
		t.Errorf("assembled reply missing In-Reply-To header:\n%v", msg)
	}
	if !strings.Contains(msg, "References: <ref@x> <a@x>\r\n") {
		t.Errorf("assembled reply missing References header:\n%v", msg)
	}
}

func TestAssembleRaw_SkipsUnreadableAttachments(t *testing.T) {
	dir := t.TempDir()
	readable := filepath.Join(dir, "readable.txt")
	if err := os.WriteFile(readable, []byte("attachment content"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	missing := filepath.Join(dir, "does-not-exist.txt")

	raw := AssembleRaw(&OutgoingMessage{
		To:          []string{"recipient@example.com"},
		Subject:     "With attachments",
		Body:        "Body",
		Attachments: []string{missing, readable},
	})

	msg := decodeRaw(t, raw)

	if got := strings.Count(msg, "Content-Disposition: attachment;"); got != 1 {
		t.Errorf("assembled message has %d attachment parts, want 1", got)
	}
	if !strings.Contains(msg, `filename="readable.txt"`) {
		t.Errorf("assembled message missing readable attachment:\n%v", msg)
	}
	if strings.Contains(msg, "does-not-exist.txt") {
		t.Errorf("unreadable attachment should have been skipped")
	}

	// The payload must round-trip through the base64 body.
	encoded := base64.StdEncoding.EncodeToString([]byte("attachment content"))
	if !strings.Contains(strings.ReplaceAll(msg, "\r\n", ""), encoded) {
		t.Errorf("assembled message missing encoded attachment payload")
	}
}

func TestAssembleRaw_AttachmentContentDisposition(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "..", "report.pdf")
	full := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(full, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	raw := AssembleRaw(&OutgoingMessage{
		To:          []string{"recipient@example.com"},
		Subject:     "Report",
		Body:        "See attached",
		Attachments: []string{path},
	})

	msg := decodeRaw(t, raw)

	// Only the base name lands in the header, never directory components.
	if !strings.Contains(msg, `Content-Disposition: attachment; filename="report.pdf"`) {
		t.Errorf("attachment disposition should use base filename:\n%v", msg)
	}
}

func TestGuessContentType(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantPrefix string
	}{
		{
			name:       "known extension",
			path:       "document.pdf",
			wantPrefix: "application/pdf",
		},
		{
			name:       "text extension",
			path:       "notes.txt",
			wantPrefix: "text/plain",
		},
		{
			name:       "unknown extension falls back to octet-stream",
			path:       "data.xyz123",
			wantPrefix: "application/octet-stream",
		},
		{
			name:       "no extension falls back to octet-stream",
			path:       "README",
			wantPrefix: "application/octet-stream",
		},
		{
			name:       "bzip2 archive falls back to octet-stream",
			path:       "archive.tar.bz2",
			wantPrefix: "application/octet-stream",
		},
		{
			name:       "gzip archive falls back to octet-stream",
			path:       "archive.gz",
			wantPrefix: "application/octet-stream",
		},
		{
			name:       "xz archive falls back to octet-stream",
			path:       "logs.tar.xz",
			wantPrefix: "application/octet-stream",
		},
		{
			name:       "compress extension falls back to octet-stream",
			path:       "dump.Z",
			wantPrefix: "application/octet-stream",
		},
		{
			name:       "brotli extension falls back to octet-stream",
			path:       "page.html.br",
			wantPrefix: "application/octet-stream",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := guessContentType(tt.path)
			if !strings.HasPrefix(got, tt.wantPrefix) {
				t.Errorf("guessContentType(%q) = %q, want prefix %q", tt.path, got, tt.wantPrefix)
			}
		})
	}
}

func TestWrapBase64(t *testing.T) {
	data := make([]byte, 300)
	for i := range data {
		data[i] = byte(i % 251)
	}

	wrapped := string(wrapBase64(data))

	for _, line := range strings.Split(wrapped, "\r\n") {
		if len(line) > 76 {
			t.Errorf("wrapped base64 line length %d exceeds 76", len(line))
		}
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(wrapped, "\r\n", ""))
	if err != nil {
		t.Fatalf("wrapped base64 did not decode: %v", err)
	}
	if string(decoded) != string(data) {
		t.Errorf("wrapped base64 did not round-trip")
	}
}

func TestEncodeRFC2047(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantASCII bool // If true, should return as-is; if false, should be encoded
	}{
		{
			name:      "plain ASCII text",
			input:     "Simple Subject",
			wantASCII: true,
		},
		{
			name:      "German umlauts",
			input:     "Rückerstattung €115 - Überweisung",
			wantASCII: false,
		},
		{
			name:      "Japanese characters",
			input:     "こんにちは",
			wantASCII: false,
		},
		{
			name:      "Emoji",
			input:     "Subject with emoji 🎉",
			wantASCII: false,
		},
		{
			name:      "Empty string",
			input:     "",
			wantASCII: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := encodeRFC2047(tt.input)

			// If ASCII, result should equal input
			if tt.wantASCII {
				if result != tt.input {
					t.Errorf("encodeRFC2047() = %v, want %v (should not encode ASCII)", result, tt.input)
				}
			} else {
				// Should be encoded (starts with =?UTF-8?)
				if !strings.HasPrefix(result, "=?UTF-8?") {
					t.Errorf("encodeRFC2047() = %v, should start with =?UTF-8? for non-ASCII input", result)
				}
				if !strings.HasSuffix(result, "?=") {
					t.Errorf("encodeRFC2047() = %v, should end with ?= for non-ASCII input", result)
				}
			}
		})
	}
}

func TestEncodeRFC2047Roundtrip(t *testing.T) {
	originalSubjects := []string{
		"Rückerstattung €115",
		"Überweisung",
		"Äpfel und Öl",
		"Größe",
	}

	for _, original := range originalSubjects {
		t.Run(original, func(t *testing.T) {
			encoded := encodeRFC2047(original)

			decoder := new(mime.WordDecoder)
			decoded, err := decoder.DecodeHeader(encoded)
			if err != nil {
				t.Fatalf("Failed to decode %v: %v", encoded, err)
			}

			if decoded != original {
				t.Errorf("Roundtrip failed: original=%v, encoded=%v, decoded=%v", original, encoded, decoded)
			}
		})
	}
}
