package gmail

import (
	"context"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/mailbridge/gmail-mcp/internal/google"
	"github.com/mailbridge/gmail-mcp/internal/logging"
)

// Client wraps the Gmail Users service for one account.
type Client struct {
	svc     *gmail.UsersService
	account string
	log     logging.Logger
}

// logger returns the client's logger, falling back to the process default
// when none was injected.
func (c *Client) logger() logging.Logger {
	if c.log != nil {
		return c.log
	}
	return logging.DefaultLogger()
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// HasTokenForAccount checks if a valid OAuth token exists for the specified account
func HasTokenForAccount(account string) bool {
	return google.HasTokenForAccount(account)
}

// GetAuthURLForAccount returns the OAuth authorization URL for an account.
func GetAuthURLForAccount(account string) string {
	return google.GetAuthURLForAccount(account)
}

// NewClientForAccount creates a new Gmail client with OAuth2 authentication
// for a specific account. A token for the account must already be stored.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	httpClient, err := google.GetHTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{
		svc:     svc.Users,
		account: account,
		log:     logging.DefaultLogger(),
	}, nil
}

// NewClient creates a new Gmail client for the default account.
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, "default")
}

// ListMessages lists a single page of messages matching the query and
// returns a listing view per message. A detail fetch that fails only skips
// that message; the aggregate carries everything that succeeded.
func (c *Client) ListMessages(ctx context.Context, query string, labelIDs []string, maxResults int64) ([]*EmailSummary, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	req := c.svc.Messages.List("me").MaxResults(maxResults).Context(ctx)
	if query != "" {
		req = req.Q(query)
	}
	if len(labelIDs) > 0 {
		req = req.LabelIds(labelIDs...)
	}

	res, err := req.Do()
	if err != nil {
		return nil, classifyError("list messages", "", err)
	}

	summaries := make([]*EmailSummary, 0, len(res.Messages))
	for _, ref := range res.Messages {
		msg, err := c.svc.Messages.Get("me", ref.Id).Format("metadata").Context(ctx).Do()
		if err != nil {
			c.logger().Error("failed to fetch message details, skipping",
				logging.KeyMessageID, ref.Id,
				logging.Err(err))
			continue
		}
		summaries = append(summaries, NewEmailSummary(msg))
	}

	return summaries, nil
}

// GetMessage retrieves a message in full format, payload tree included.
func (c *Client) GetMessage(ctx context.Context, messageID string) (*gmail.Message, error) {
	msg, err := c.svc.Messages.Get("me", messageID).Format("full").Context(ctx).Do()
	if err != nil {
		err = classifyError("get message", messageID, err)
		if IsNotFound(err) {
			c.logger().Warn("message not found", logging.KeyMessageID, messageID)
		} else {
			c.logger().Error("failed to get message", logging.KeyMessageID, messageID, logging.Err(err))
		}
		return nil, err
	}
	return msg, nil
}

// GetMessageView retrieves a message and builds its full view with decoded
// body and attachment manifest.
func (c *Client) GetMessageView(ctx context.Context, messageID string) (*MessageView, error) {
	msg, err := c.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	return NewMessageView(msg), nil
}

// SendMessage assembles and sends a new message, returning the sent id.
func (c *Client) SendMessage(ctx context.Context, msg *OutgoingMessage) (string, error) {
	if len(msg.To) == 0 {
		return "", fmt.Errorf("at least one recipient is required")
	}
	if msg.Body == "" {
		return "", fmt.Errorf("body is required")
	}

	return c.sendRaw(ctx, AssembleRaw(msg), "")
}

// ReplyToMessage fetches the original message, resolves threading from its
// headers and sends the reply on the original thread.
func (c *Client) ReplyToMessage(ctx context.Context, messageID, body string, attachments []string) (string, error) {
	if messageID == "" {
		return "", fmt.Errorf("messageID is required")
	}
	if body == "" {
		return "", fmt.Errorf("body is required")
	}

	original, err := c.svc.Messages.Get("me", messageID).Format("metadata").Context(ctx).Do()
	if err != nil {
		return "", classifyError("get original message", messageID, err)
	}

	tc := ResolveThreading(original)
	if tc.ReplyTo == "" {
		return "", fmt.Errorf("original message %s has no Reply-To or From header", messageID)
	}

	out := &OutgoingMessage{
		To:          []string{tc.ReplyTo},
		Subject:     tc.Subject,
		Body:        body,
		Attachments: attachments,
		Threading:   tc,
	}

	return c.sendRaw(ctx, AssembleRaw(out), original.ThreadId)
}

// sendRaw submits an assembled base64url message, attaching it to an
// existing thread when threadID is set.
func (c *Client) sendRaw(ctx context.Context, raw, threadID string) (string, error) {
	gmailMsg := &gmail.Message{Raw: raw}
	if threadID != "" {
		gmailMsg.ThreadId = threadID
	}

	sent, err := c.svc.Messages.Send("me", gmailMsg).Context(ctx).Do()
	if err != nil {
		return "", classifyError("send message", "", err)
	}
	return sent.Id, nil
}

// TrashMessage moves a message to the trash.
func (c *Client) TrashMessage(ctx context.Context, messageID string) error {
	_, err := c.svc.Messages.Trash("me", messageID).Context(ctx).Do()
	if err != nil {
		err = classifyError("trash message", messageID, err)
		if IsNotFound(err) {
			c.logger().Warn("message not found for deletion", logging.KeyMessageID, messageID)
		} else {
			c.logger().Error("failed to trash message", logging.KeyMessageID, messageID, logging.Err(err))
		}
		return err
	}
	return nil
}

// BatchTrashResult reports the outcome of a batch trash call. The underlying
// endpoint gives no per-message status, so the result is always all-or-nothing.
type BatchTrashResult struct {
	Success   int      `json:"success"`
	Failed    int      `json:"failed"`
	FailedIDs []string `json:"failed_ids"`
}

// BatchTrashMessages moves several messages to the trash in one call. On any
// API failure every requested id is reported failed; the endpoint cannot
// partially succeed. The result is populated even when err is non-nil.
func (c *Client) BatchTrashMessages(ctx context.Context, messageIDs []string) (*BatchTrashResult, error) {
	if len(messageIDs) == 0 {
		return &BatchTrashResult{FailedIDs: []string{}}, nil
	}

	err := c.svc.Messages.BatchModify("me", &gmail.BatchModifyMessagesRequest{
		Ids:            messageIDs,
		AddLabelIds:    []string{"TRASH"},
		RemoveLabelIds: []string{"INBOX"},
	}).Context(ctx).Do()
	if err != nil {
		err = classifyError("batch trash messages", "", err)
		c.logger().Error("batch trash failed, treating all messages as failed",
			"count", len(messageIDs),
			logging.Err(err))
		return &BatchTrashResult{
			Failed:    len(messageIDs),
			FailedIDs: messageIDs,
		}, err
	}

	c.logger().Info("batch trashed messages", "count", len(messageIDs))
	return &BatchTrashResult{
		Success:   len(messageIDs),
		FailedIDs: []string{},
	}, nil
}

// ModifyMessageLabels adds and removes labels on a message and returns the
// updated message. With nothing to add or remove it performs no API call and
// returns nil.
func (c *Client) ModifyMessageLabels(ctx context.Context, messageID string, addLabelIDs, removeLabelIDs []string) (*gmail.Message, error) {
	if len(addLabelIDs) == 0 && len(removeLabelIDs) == 0 {
		c.logger().Warn("no labels provided to add or remove", logging.KeyMessageID, messageID)
		return nil, nil
	}

	msg, err := c.svc.Messages.Modify("me", messageID, &gmail.ModifyMessageRequest{
		AddLabelIds:    addLabelIDs,
		RemoveLabelIds: removeLabelIDs,
	}).Context(ctx).Do()
	if err != nil {
		err = classifyError("modify message labels", messageID, err)
		switch {
		case IsNotFound(err):
			c.logger().Error("message not found for label modification", logging.KeyMessageID, messageID)
		case IsInvalidArgument(err):
			c.logger().Error("bad request modifying labels, check label IDs",
				logging.KeyMessageID, messageID,
				logging.Err(err))
		default:
			c.logger().Error("failed to modify message labels",
				logging.KeyMessageID, messageID,
				logging.Err(err))
		}
		return nil, err
	}
	return msg, nil
}
