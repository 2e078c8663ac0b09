package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/mailbridge/gmail-mcp/internal/logging"
)

const (
	// MaxAttachmentSize defines the maximum attachment size in bytes (25MB)
	MaxAttachmentSize = 25 * 1024 * 1024
)

// AttachmentInfo describes one attachment-like part of a message payload.
// AttachmentID is empty for inline-only parts; such parts cannot be fetched
// separately and callers must not assume otherwise.
type AttachmentInfo struct {
	PartID       string `json:"partId"`
	AttachmentID string `json:"attachmentId,omitempty"`
	Filename     string `json:"filename"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
}

// ScanAttachments walks a payload tree in pre-order and returns a descriptor
// for every part that resolves to a filename, either through the part's own
// filename attribute or a filename token in its Content-Disposition header.
// The disposition type does not matter: inline parts with filenames count.
// Children are always traversed, whether or not the parent qualified.
func ScanAttachments(payload *gmail.MessagePart) []*AttachmentInfo {
	var attachments []*AttachmentInfo
	walkParts(payload, func(part *gmail.MessagePart) {
		filename := attachmentFilename(part)
		if filename == "" {
			return
		}
		info := &AttachmentInfo{
			PartID:   part.PartId,
			Filename: filename,
			MimeType: part.MimeType,
		}
		if part.Body != nil {
			info.AttachmentID = part.Body.AttachmentId
			info.Size = part.Body.Size
		}
		attachments = append(attachments, info)
	})
	return attachments
}

// attachmentFilename resolves the filename that qualifies a part as an
// attachment: the filename attribute when set, otherwise the first
// filename= token in a Content-Disposition header with surrounding quotes
// and whitespace stripped.
func attachmentFilename(part *gmail.MessagePart) string {
	if part.Filename != "" {
		return part.Filename
	}
	disposition := partHeader(part, "Content-Disposition")
	if disposition == "" {
		return ""
	}
	const token = "filename="
	idx := strings.Index(disposition, token)
	if idx < 0 {
		return ""
	}
	value := disposition[idx+len(token):]
	return strings.Trim(strings.TrimSpace(value), `"'`)
}

// partHeader returns a part's header value by case-insensitive name.
func partHeader(part *gmail.MessagePart, name string) string {
	for _, h := range part.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// walkParts recursively walks a message payload tree in pre-order.
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}

	fn(part)

	for _, subpart := range part.Parts {
		walkParts(subpart, fn)
	}
}

// ListAttachments fetches a message and returns its attachment manifest.
func (c *Client) ListAttachments(ctx context.Context, messageID string) ([]*AttachmentInfo, error) {
	msg, err := c.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	return ScanAttachments(msg.Payload), nil
}

// GetAttachmentData fetches an attachment's content and decodes it to raw
// bytes. Not-found, other API failures and decode failures are logged
// distinctly; all of them surface as a nil result with an error.
func (c *Client) GetAttachmentData(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	if messageID == "" {
		return nil, fmt.Errorf("messageID is required")
	}
	if attachmentID == "" {
		return nil, fmt.Errorf("attachmentID is required")
	}

	attachment, err := c.svc.Messages.Attachments.Get("me", messageID, attachmentID).Context(ctx).Do()
	if err != nil {
		err = classifyError("get attachment", attachmentID, err)
		if IsNotFound(err) {
			c.logger().Warn("attachment not found",
				logging.KeyAttachmentID, attachmentID,
				logging.KeyMessageID, messageID)
		} else {
			c.logger().Error("failed to fetch attachment",
				logging.KeyAttachmentID, attachmentID,
				logging.KeyMessageID, messageID,
				logging.Err(err))
		}
		return nil, err
	}

	if attachment.Data == "" {
		err := fmt.Errorf("no data in attachment %s of message %s", attachmentID, messageID)
		c.logger().Error("attachment response carries no data",
			logging.KeyAttachmentID, attachmentID,
			logging.KeyMessageID, messageID)
		return nil, err
	}

	if attachment.Size > MaxAttachmentSize {
		return nil, fmt.Errorf("attachment size %d exceeds maximum size %d", attachment.Size, MaxAttachmentSize)
	}

	data, err := decodeAttachmentData(attachment.Data)
	if err != nil {
		c.logger().Error("failed to decode attachment data",
			logging.KeyAttachmentID, attachmentID,
			logging.KeyMessageID, messageID,
			logging.Err(err))
		return nil, fmt.Errorf("failed to decode attachment data: %w", err)
	}

	return data, nil
}

// decodeAttachmentData decodes the base64url payload of an attachment fetch,
// re-padding unpadded input and tolerating the standard alphabet.
func decodeAttachmentData(data string) ([]byte, error) {
	if rem := len(data) % 4; rem != 0 {
		data += strings.Repeat("=", 4-rem)
	}
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, err
		}
	}
	return decoded, nil
}

// SaveAttachment fetches an attachment and writes its decoded bytes below
// dir, using the sanitized original filename. It returns the path written.
func (c *Client) SaveAttachment(ctx context.Context, messageID, attachmentID, filename, dir string) (string, error) {
	data, err := c.GetAttachmentData(ctx, messageID, attachmentID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, SanitizeFilename(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write attachment to %s: %w", path, err)
	}

	c.logger().Info("saved attachment",
		logging.KeyAttachmentID, attachmentID,
		logging.KeyMessageID, messageID,
		"path", path,
		"bytes", len(data))
	return path, nil
}

// SanitizeFilename sanitizes a filename to prevent path traversal attacks
func SanitizeFilename(filename string) string {
	// Remove path separators and other potentially dangerous characters
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	filename = strings.ReplaceAll(filename, "..", "_")
	return filename
}
