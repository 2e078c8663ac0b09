package gmail

import (
	"context"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/mailbridge/gmail-mcp/internal/logging"
)

// LabelOptions carries the optional visibility settings for creating or
// updating a label. Empty fields keep the API defaults.
type LabelOptions struct {
	// LabelListVisibility is one of labelShow, labelShowIfUnread, labelHide.
	LabelListVisibility string
	// MessageListVisibility is one of show, hide.
	MessageListVisibility string
}

// ListLabels returns all labels in the account, system and user labels alike.
func (c *Client) ListLabels(ctx context.Context) ([]*gmail.Label, error) {
	res, err := c.svc.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return nil, classifyError("list labels", "", err)
	}
	return res.Labels, nil
}

// GetLabel retrieves one label with its message and thread counts.
func (c *Client) GetLabel(ctx context.Context, labelID string) (*gmail.Label, error) {
	label, err := c.svc.Labels.Get("me", labelID).Context(ctx).Do()
	if err != nil {
		err = classifyError("get label", labelID, err)
		if IsNotFound(err) {
			c.logger().Warn("label not found", logging.KeyLabelID, labelID)
		} else {
			c.logger().Error("failed to get label", logging.KeyLabelID, labelID, logging.Err(err))
		}
		return nil, err
	}
	return label, nil
}

// CreateLabel creates a new user label. A conflict error means a label of
// that name already exists.
func (c *Client) CreateLabel(ctx context.Context, name string, opts *LabelOptions) (*gmail.Label, error) {
	if name == "" {
		return nil, fmt.Errorf("label name is required")
	}

	label := &gmail.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}
	if opts != nil {
		if opts.LabelListVisibility != "" {
			label.LabelListVisibility = opts.LabelListVisibility
		}
		if opts.MessageListVisibility != "" {
			label.MessageListVisibility = opts.MessageListVisibility
		}
	}

	created, err := c.svc.Labels.Create("me", label).Context(ctx).Do()
	if err != nil {
		err = classifyError("create label", name, err)
		if IsConflict(err) {
			c.logger().Warn("label may already exist", "name", name)
		} else {
			c.logger().Error("failed to create label", "name", name, logging.Err(err))
		}
		return nil, err
	}

	c.logger().Info("created label", "name", name, logging.KeyLabelID, created.Id)
	return created, nil
}

// UpdateLabel patches an existing user label's name and visibility.
func (c *Client) UpdateLabel(ctx context.Context, labelID, name string, opts *LabelOptions) (*gmail.Label, error) {
	label := &gmail.Label{Name: name}
	if opts != nil {
		label.LabelListVisibility = opts.LabelListVisibility
		label.MessageListVisibility = opts.MessageListVisibility
	}

	updated, err := c.svc.Labels.Patch("me", labelID, label).Context(ctx).Do()
	if err != nil {
		err = classifyError("update label", labelID, err)
		if IsNotFound(err) {
			c.logger().Warn("label not found for update", logging.KeyLabelID, labelID)
		} else {
			c.logger().Error("failed to update label", logging.KeyLabelID, labelID, logging.Err(err))
		}
		return nil, err
	}
	return updated, nil
}

// DeleteLabel removes a user label. System labels cannot be deleted.
func (c *Client) DeleteLabel(ctx context.Context, labelID string) error {
	err := c.svc.Labels.Delete("me", labelID).Context(ctx).Do()
	if err != nil {
		err = classifyError("delete label", labelID, err)
		if IsNotFound(err) {
			c.logger().Warn("label not found for deletion", logging.KeyLabelID, labelID)
		} else {
			c.logger().Error("failed to delete label", logging.KeyLabelID, labelID, logging.Err(err))
		}
		return err
	}

	c.logger().Info("deleted label", logging.KeyLabelID, labelID)
	return nil
}
