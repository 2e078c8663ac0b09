package gmail_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mailbridge/gmail-mcp/internal/gmail"
	"github.com/mailbridge/gmail-mcp/internal/instrumentation"
	"github.com/mailbridge/gmail-mcp/internal/server"
	"github.com/mailbridge/gmail-mcp/internal/tools/batch"
	"github.com/mailbridge/gmail-mcp/internal/tools/common"
)

// RegisterEmailTools registers email-related tools with the MCP server.
// Write operations (send, reply, trash, label changes) are skipped in
// read-only mode.
func RegisterEmailTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// List emails tool
	listEmailsTool := mcp.NewTool("gmail_list_emails",
		mcp.WithDescription("List recent emails from the Gmail mailbox"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("label",
			mcp.Description("Label ID to filter by (e.g., 'INBOX', 'SENT', 'UNREAD')"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of emails to return (default: 10)"),
		),
	)

	s.AddTool(listEmailsTool, common.InstrumentedToolHandlerWithService(
		"gmail_list_emails", instrumentation.ServiceGmail, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEmails(ctx, request, sc)
		}))

	// Search emails tool
	searchEmailsTool := mcp.NewTool("gmail_search_emails",
		mcp.WithDescription("Search emails using Gmail query syntax"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Gmail search query (e.g., 'from:user@example.com has:attachment')"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of emails to return (default: 10)"),
		),
	)

	s.AddTool(searchEmailsTool, common.InstrumentedToolHandlerWithService(
		"gmail_search_emails", instrumentation.ServiceGmail, instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchEmails(ctx, request, sc)
		}))

	// Get email tool
	getEmailTool := mcp.NewTool("gmail_get_email",
		mcp.WithDescription("Get the full content of an email including the decoded body and attachment list"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("emailId",
			mcp.Required(),
			mcp.Description("The ID of the email to retrieve"),
		),
	)

	s.AddTool(getEmailTool, common.InstrumentedToolHandlerWithService(
		"gmail_get_email", instrumentation.ServiceGmail, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEmail(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	// Send email tool
	sendEmailTool := mcp.NewTool("gmail_send_email",
		mcp.WithDescription("Send a new email, optionally with file attachments"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient email address (string) or array of addresses"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Plain-text email body"),
		),
		mcp.WithString("cc",
			mcp.Description("CC email address (string) or array of addresses"),
		),
		mcp.WithString("bcc",
			mcp.Description("BCC email address (string) or array of addresses"),
		),
		mcp.WithString("attachmentPaths",
			mcp.Description("Local file path (string) or array of paths to attach"),
		),
	)

	s.AddTool(sendEmailTool, common.InstrumentedToolHandlerWithService(
		"gmail_send_email", instrumentation.ServiceGmail, instrumentation.OperationSend, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendEmail(ctx, request, sc)
		}))

	// Reply tool
	replyTool := mcp.NewTool("gmail_reply_to_email",
		mcp.WithDescription("Reply to an email, preserving conversation threading"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("emailId",
			mcp.Required(),
			mcp.Description("The ID of the email to reply to"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Plain-text reply body"),
		),
		mcp.WithString("attachmentPaths",
			mcp.Description("Local file path (string) or array of paths to attach"),
		),
	)

	s.AddTool(replyTool, common.InstrumentedToolHandlerWithService(
		"gmail_reply_to_email", instrumentation.ServiceGmail, instrumentation.OperationSend, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReplyToEmail(ctx, request, sc)
		}))

	// Delete (trash) email tool
	deleteEmailTool := mcp.NewTool("gmail_delete_email",
		mcp.WithDescription("Move an email to the trash"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("emailId",
			mcp.Required(),
			mcp.Description("The ID of the email to trash"),
		),
	)

	s.AddTool(deleteEmailTool, common.InstrumentedToolHandlerWithService(
		"gmail_delete_email", instrumentation.ServiceGmail, instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteEmail(ctx, request, sc)
		}))

	// Batch delete tool
	deleteEmailsTool := mcp.NewTool("gmail_delete_emails",
		mcp.WithDescription("Move multiple emails to the trash in a single batch call"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("emailIds",
			mcp.Required(),
			mcp.Description("Email ID (string) or array of email IDs to trash"),
		),
	)

	s.AddTool(deleteEmailsTool, common.InstrumentedToolHandlerWithService(
		"gmail_delete_emails", instrumentation.ServiceGmail, instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteEmails(ctx, request, sc)
		}))

	// Modify labels tool
	modifyLabelsTool := mcp.NewTool("gmail_modify_labels",
		mcp.WithDescription("Add and/or remove labels on an email"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("emailId",
			mcp.Required(),
			mcp.Description("The ID of the email to modify"),
		),
		mcp.WithString("addLabels",
			mcp.Description("Label ID (string) or array of label IDs to add"),
		),
		mcp.WithString("removeLabels",
			mcp.Description("Label ID (string) or array of label IDs to remove"),
		),
	)

	s.AddTool(modifyLabelsTool, common.InstrumentedToolHandlerWithService(
		"gmail_modify_labels", instrumentation.ServiceGmail, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleModifyLabels(ctx, request, sc)
		}))

	return nil
}

func maxResultsFromArgs(args map[string]interface{}) int64 {
	maxResults := int64(10)
	if maxResultsVal, ok := args["maxResults"]; ok {
		if maxResultsFloat, ok := maxResultsVal.(float64); ok {
			maxResults = int64(maxResultsFloat)
		}
	}
	return maxResults
}

// optionalStringOrArray parses an argument that may be absent, a single
// string, or an array of strings. Absent yields nil without error.
func optionalStringOrArray(args map[string]interface{}, key string) ([]string, error) {
	val, ok := args[key]
	if !ok || val == nil {
		return nil, nil
	}
	return batch.ParseStringOrArray(val, key)
}

func handleListEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	var labelIDs []string
	if labelVal, ok := args["label"].(string); ok && labelVal != "" {
		labelIDs = []string{labelVal}
	}

	client, errResult := getClientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	emails, err := client.ListMessages(ctx, "", labelIDs, maxResultsFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list emails: %v", err)), nil
	}

	jsonBytes, err := json.MarshalIndent(emails, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format results: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Found %d email(s):\n%s", len(emails), string(jsonBytes))), nil
}

func handleSearchEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	client, errResult := getClientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	emails, err := client.ListMessages(ctx, query, nil, maxResultsFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search emails: %v", err)), nil
	}

	jsonBytes, err := json.MarshalIndent(emails, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format results: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Found %d email(s) matching %q:\n%s", len(emails), query, string(jsonBytes))), nil
}

func handleGetEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	emailID, ok := args["emailId"].(string)
	if !ok || emailID == "" {
		return mcp.NewToolResultError("emailId is required"), nil
	}

	client, errResult := getClientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	view, err := client.GetMessageView(ctx, emailID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get email: %v", err)), nil
	}

	jsonBytes, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format results: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func handleSendEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	to, err := batch.ParseStringOrArray(args["to"], "to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	subject, _ := args["subject"].(string)
	body, ok := args["body"].(string)
	if !ok || body == "" {
		return mcp.NewToolResultError("body is required"), nil
	}

	cc, err := optionalStringOrArray(args, "cc")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bcc, err := optionalStringOrArray(args, "bcc")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	attachments, err := optionalStringOrArray(args, "attachmentPaths")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, errResult := getClientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	msgID, err := client.SendMessage(ctx, &gmail.OutgoingMessage{
		To:          to,
		Cc:          cc,
		Bcc:         bcc,
		Subject:     subject,
		Body:        body,
		Attachments: attachments,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to send email: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Email sent successfully. Message ID: %s", msgID)), nil
}

func handleReplyToEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	emailID, ok := args["emailId"].(string)
	if !ok || emailID == "" {
		return mcp.NewToolResultError("emailId is required"), nil
	}

	body, ok := args["body"].(string)
	if !ok || body == "" {
		return mcp.NewToolResultError("body is required"), nil
	}

	attachments, err := optionalStringOrArray(args, "attachmentPaths")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, errResult := getClientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	msgID, err := client.ReplyToMessage(ctx, emailID, body, attachments)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to reply to email: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Reply sent successfully. Message ID: %s", msgID)), nil
}

func handleDeleteEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	emailID, ok := args["emailId"].(string)
	if !ok || emailID == "" {
		return mcp.NewToolResultError("emailId is required"), nil
	}

	client, errResult := getClientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	if err := client.TrashMessage(ctx, emailID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete email: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Email %s moved to trash", emailID)), nil
}

func handleDeleteEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	emailIDs, err := batch.ParseStringOrArray(args["emailIds"], "emailIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, errResult := getClientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	result, err := client.BatchTrashMessages(ctx, emailIDs)

	jsonBytes, marshalErr := json.MarshalIndent(result, "", "  ")
	if marshalErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format results: %v", marshalErr)), nil
	}

	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Batch trash failed:\n%s", string(jsonBytes))), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Moved %d email(s) to trash:\n%s", result.Success, string(jsonBytes))), nil
}

func handleModifyLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	emailID, ok := args["emailId"].(string)
	if !ok || emailID == "" {
		return mcp.NewToolResultError("emailId is required"), nil
	}

	addLabels, err := optionalStringOrArray(args, "addLabels")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	removeLabels, err := optionalStringOrArray(args, "removeLabels")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(addLabels) == 0 && len(removeLabels) == 0 {
		return mcp.NewToolResultText("No labels to add or remove, nothing to do"), nil
	}

	client, errResult := getClientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	msg, err := client.ModifyMessageLabels(ctx, emailID, addLabels, removeLabels)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to modify labels: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Labels updated for email %s. Current labels: %v", emailID, msg.LabelIds)), nil
}
