package gmail

import (
	"context"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/mailbridge/gmail-mcp/internal/logging"
)

// ListDrafts lists a single page of drafts with their full messages. A draft
// whose detail fetch fails is skipped; the rest are still returned.
func (c *Client) ListDrafts(ctx context.Context, maxResults int64) ([]*gmail.Draft, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	res, err := c.svc.Drafts.List("me").MaxResults(maxResults).Context(ctx).Do()
	if err != nil {
		return nil, classifyError("list drafts", "", err)
	}

	drafts := make([]*gmail.Draft, 0, len(res.Drafts))
	for _, ref := range res.Drafts {
		draft, err := c.svc.Drafts.Get("me", ref.Id).Format("full").Context(ctx).Do()
		if err != nil {
			c.logger().Error("failed to fetch draft details, skipping",
				logging.KeyDraftID, ref.Id,
				logging.Err(err))
			continue
		}
		drafts = append(drafts, draft)
	}

	return drafts, nil
}

// GetDraft retrieves one draft in full format.
func (c *Client) GetDraft(ctx context.Context, draftID string) (*gmail.Draft, error) {
	draft, err := c.svc.Drafts.Get("me", draftID).Format("full").Context(ctx).Do()
	if err != nil {
		err = classifyError("get draft", draftID, err)
		if IsNotFound(err) {
			c.logger().Warn("draft not found", logging.KeyDraftID, draftID)
		} else {
			c.logger().Error("failed to get draft", logging.KeyDraftID, draftID, logging.Err(err))
		}
		return nil, err
	}
	return draft, nil
}

// CreateDraft creates a new plain-text draft.
func (c *Client) CreateDraft(ctx context.Context, to, subject, body string) (*gmail.Draft, error) {
	if to == "" {
		return nil, fmt.Errorf("recipient is required")
	}

	raw := AssembleRaw(&OutgoingMessage{
		To:      []string{to},
		Subject: subject,
		Body:    body,
	})

	draft, err := c.svc.Drafts.Create("me", &gmail.Draft{
		Message: &gmail.Message{Raw: raw},
	}).Context(ctx).Do()
	if err != nil {
		return nil, classifyError("create draft", "", err)
	}

	c.logger().Info("created draft", logging.KeyDraftID, draft.Id)
	return draft, nil
}

// UpdateDraft replaces the message of an existing draft.
func (c *Client) UpdateDraft(ctx context.Context, draftID, to, subject, body string) (*gmail.Draft, error) {
	if draftID == "" {
		return nil, fmt.Errorf("draftID is required")
	}

	raw := AssembleRaw(&OutgoingMessage{
		To:      []string{to},
		Subject: subject,
		Body:    body,
	})

	draft, err := c.svc.Drafts.Update("me", draftID, &gmail.Draft{
		Message: &gmail.Message{Raw: raw},
	}).Context(ctx).Do()
	if err != nil {
		err = classifyError("update draft", draftID, err)
		if IsNotFound(err) {
			c.logger().Warn("draft not found for update", logging.KeyDraftID, draftID)
		} else {
			c.logger().Error("failed to update draft", logging.KeyDraftID, draftID, logging.Err(err))
		}
		return nil, err
	}
	return draft, nil
}

// DeleteDraft permanently deletes a draft.
func (c *Client) DeleteDraft(ctx context.Context, draftID string) error {
	err := c.svc.Drafts.Delete("me", draftID).Context(ctx).Do()
	if err != nil {
		err = classifyError("delete draft", draftID, err)
		if IsNotFound(err) {
			c.logger().Warn("draft not found for deletion", logging.KeyDraftID, draftID)
		} else {
			c.logger().Error("failed to delete draft", logging.KeyDraftID, draftID, logging.Err(err))
		}
		return err
	}
	return nil
}

// SendDraft sends an existing draft and returns the sent message id.
func (c *Client) SendDraft(ctx context.Context, draftID string) (string, error) {
	sent, err := c.svc.Drafts.Send("me", &gmail.Draft{Id: draftID}).Context(ctx).Do()
	if err != nil {
		err = classifyError("send draft", draftID, err)
		if IsNotFound(err) {
			c.logger().Warn("draft not found for sending", logging.KeyDraftID, draftID)
		} else {
			c.logger().Error("failed to send draft", logging.KeyDraftID, draftID, logging.Err(err))
		}
		return "", err
	}
	return sent.Id, nil
}
