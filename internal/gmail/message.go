package gmail

import (
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// EmailSummary is the listing view of a message: identifiers plus the handful
// of headers shown in a mailbox listing.
type EmailSummary struct {
	ID       string   `json:"id"`
	ThreadID string   `json:"threadId"`
	Snippet  string   `json:"snippet"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	Subject  string   `json:"subject"`
	Date     string   `json:"date"`
	Labels   []string `json:"labels"`
	Read     bool     `json:"read"`
}

// MessageView is the full view of a message: listing fields plus the decoded
// body and the attachment manifest.
type MessageView struct {
	EmailSummary
	Cc          string            `json:"cc,omitempty"`
	Body        string            `json:"body"`
	Attachments []*AttachmentInfo `json:"attachments,omitempty"`
}

// HeaderValue extracts a single header value from a message payload. Header
// names are matched case-insensitively.
func HeaderValue(m *gmail.Message, header string) string {
	if m == nil || m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if strings.EqualFold(h.Name, header) {
			return h.Value
		}
	}
	return ""
}

// headerMap flattens a message's headers into a map keyed by lower-cased
// header name. Later occurrences of a repeated header overwrite earlier ones.
func headerMap(m *gmail.Message) map[string]string {
	headers := make(map[string]string)
	if m == nil || m.Payload == nil {
		return headers
	}
	for _, h := range m.Payload.Headers {
		headers[strings.ToLower(h.Name)] = h.Value
	}
	return headers
}

// isRead reports whether the label set marks a message as read.
func isRead(labelIDs []string) bool {
	for _, id := range labelIDs {
		if id == "UNREAD" {
			return false
		}
	}
	return true
}

// NewEmailSummary builds the listing view from a metadata-format message.
func NewEmailSummary(msg *gmail.Message) *EmailSummary {
	headers := headerMap(msg)
	return &EmailSummary{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  msg.Snippet,
		From:     headers["from"],
		To:       headers["to"],
		Subject:  headers["subject"],
		Date:     headers["date"],
		Labels:   msg.LabelIds,
		Read:     isRead(msg.LabelIds),
	}
}

// NewMessageView builds the full view from a full-format message, decoding
// the body and scanning the payload tree for attachments.
func NewMessageView(msg *gmail.Message) *MessageView {
	headers := headerMap(msg)
	return &MessageView{
		EmailSummary: *NewEmailSummary(msg),
		Cc:           headers["cc"],
		Body:         ExtractBody(msg.Payload),
		Attachments:  ScanAttachments(msg.Payload),
	}
}
