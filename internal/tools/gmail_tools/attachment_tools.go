package gmail_tools

import (
	"context"
	"encoding/base64"
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

// RegisterAttachmentTools registers attachment-related tools with the MCP
// server. Both tools are read operations and are available in read-only mode.
func RegisterAttachmentTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// List attachments tool
	listAttachmentsTool := mcp.NewTool("gmail_list_attachments",
		mcp.WithDescription("List all attachments in a Gmail message"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the Gmail message"),
		),
	)

	s.AddTool(listAttachmentsTool, common.InstrumentedToolHandlerWithService(
		"gmail_list_attachments", instrumentation.ServiceGmail, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListAttachments(ctx, request, sc)
		}))

	// Get attachment tool
	getAttachmentTool := mcp.NewTool("gmail_get_attachment",
		mcp.WithDescription("Download an attachment, either to a local directory or inline as base64"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the Gmail message"),
		),
		mcp.WithString("attachmentId",
			mcp.Required(),
			mcp.Description("The ID of the attachment, as returned by gmail_list_attachments"),
		),
		mcp.WithString("filename",
			mcp.Description("Filename to save as (required when downloadPath is set)"),
		),
		mcp.WithString("downloadPath",
			mcp.Description("Local directory to save the attachment to. When omitted, the content is returned base64-encoded."),
		),
	)

	s.AddTool(getAttachmentTool, common.InstrumentedToolHandlerWithService(
		"gmail_get_attachment", instrumentation.ServiceGmail, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetAttachment(ctx, request, sc)
		}))

	// Get message bodies tool
	getMessageBodiesTool := mcp.NewTool("gmail_get_message_bodies",
		mcp.WithDescription("Extract the decoded text body from one or more Gmail messages"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("messageIds",
			mcp.Required(),
			mcp.Description("Message ID (string) or array of message IDs"),
		),
	)

	s.AddTool(getMessageBodiesTool, common.InstrumentedToolHandlerWithService(
		"gmail_get_message_bodies", instrumentation.ServiceGmail, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetMessageBodies(ctx, request, sc)
		}))

	return nil
}

func handleListAttachments(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	messageID, ok := args["messageId"].(string)
	if !ok || messageID == "" {
		return mcp.NewToolResultError("messageId is required"), nil
	}

	client, errResult := getClientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	attachments, err := client.ListAttachments(ctx, messageID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list attachments: %v", err)), nil
	}

	if len(attachments) == 0 {
		return mcp.NewToolResultText("No attachments found in message"), nil
	}

	// Convert attachments to JSON for structured output
	type attachmentOutput struct {
		AttachmentID string `json:"attachmentId,omitempty"`
		Filename     string `json:"filename"`
		MimeType     string `json:"mimeType"`
		Size         int64  `json:"size"`
		SizeHuman    string `json:"sizeHuman"`
	}

	outputs := make([]attachmentOutput, len(attachments))
	for i, att := range attachments {
		outputs[i] = attachmentOutput{
			AttachmentID: att.AttachmentID,
			Filename:     att.Filename,
			MimeType:     att.MimeType,
			Size:         att.Size,
			SizeHuman:    formatSize(att.Size),
		}
	}

	jsonBytes, err := json.MarshalIndent(outputs, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format results: %v", err)), nil
	}

	result := fmt.Sprintf("Found %d attachment(s):\n%s", len(attachments), string(jsonBytes))
	return mcp.NewToolResultText(result), nil
}

func handleGetAttachment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	messageID, ok := args["messageId"].(string)
	if !ok || messageID == "" {
		return mcp.NewToolResultError("messageId is required"), nil
	}

	attachmentID, ok := args["attachmentId"].(string)
	if !ok || attachmentID == "" {
		return mcp.NewToolResultError("attachmentId is required"), nil
	}

	client, errResult := getClientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	if downloadPath, ok := args["downloadPath"].(string); ok && downloadPath != "" {
		filename, ok := args["filename"].(string)
		if !ok || filename == "" {
			return mcp.NewToolResultError("filename is required when downloadPath is set"), nil
		}

		path, err := client.SaveAttachment(ctx, messageID, attachmentID, filename, downloadPath)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to save attachment: %v", err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Attachment saved to %s", path)), nil
	}

	data, err := client.GetAttachmentData(ctx, messageID, attachmentID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get attachment: %v", err)), nil
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	result := fmt.Sprintf("Attachment content (base64, %d bytes):\n%s", len(data), encoded)
	return mcp.NewToolResultText(result), nil
}

func handleGetMessageBodies(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	messageIDs, err := batch.ParseStringOrArray(args["messageIds"], "messageIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, errResult := getClientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	results := batch.ProcessBatch(messageIDs, func(messageID string) (string, error) {
		msg, err := client.GetMessage(ctx, messageID)
		if err != nil {
			return "", err
		}
		body := gmail.ExtractBody(msg.Payload)
		return fmt.Sprintf("Message body (%d bytes):\n%s", len(body), body), nil
	})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

// formatSize formats a byte size into human-readable format
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
