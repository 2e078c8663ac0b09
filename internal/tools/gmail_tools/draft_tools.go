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
	"github.com/mailbridge/gmail-mcp/internal/tools/common"
)

// draftSummary is the compact JSON shape returned by the draft listing tools.
type draftSummary struct {
	ID      string `json:"id"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Snippet string `json:"snippet,omitempty"`
}

// RegisterDraftTools registers draft management tools with the MCP server.
// Create, update, delete and send are skipped in read-only mode.
func RegisterDraftTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// List drafts tool
	listDraftsTool := mcp.NewTool("gmail_list_drafts",
		mcp.WithDescription("List drafts in the Gmail account"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of drafts to return (default: 10)"),
		),
	)

	s.AddTool(listDraftsTool, common.InstrumentedToolHandlerWithService(
		"gmail_list_drafts", instrumentation.ServiceGmail, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListDrafts(ctx, request, sc)
		}))

	// Get draft tool
	getDraftTool := mcp.NewTool("gmail_get_draft",
		mcp.WithDescription("Get the content of a draft"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("draftId",
			mcp.Required(),
			mcp.Description("The ID of the draft to retrieve"),
		),
	)

	s.AddTool(getDraftTool, common.InstrumentedToolHandlerWithService(
		"gmail_get_draft", instrumentation.ServiceGmail, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetDraft(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	// Create draft tool
	createDraftTool := mcp.NewTool("gmail_create_draft",
		mcp.WithDescription("Create a new email draft"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient email address"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Plain-text email body"),
		),
	)

	s.AddTool(createDraftTool, common.InstrumentedToolHandlerWithService(
		"gmail_create_draft", instrumentation.ServiceGmail, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateDraft(ctx, request, sc)
		}))

	// Update draft tool
	updateDraftTool := mcp.NewTool("gmail_update_draft",
		mcp.WithDescription("Replace the content of an existing draft"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("draftId",
			mcp.Required(),
			mcp.Description("The ID of the draft to update"),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient email address"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Plain-text email body"),
		),
	)

	s.AddTool(updateDraftTool, common.InstrumentedToolHandlerWithService(
		"gmail_update_draft", instrumentation.ServiceGmail, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateDraft(ctx, request, sc)
		}))

	// Delete draft tool
	deleteDraftTool := mcp.NewTool("gmail_delete_draft",
		mcp.WithDescription("Permanently delete a draft"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("draftId",
			mcp.Required(),
			mcp.Description("The ID of the draft to delete"),
		),
	)

	s.AddTool(deleteDraftTool, common.InstrumentedToolHandlerWithService(
		"gmail_delete_draft", instrumentation.ServiceGmail, instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteDraft(ctx, request, sc)
		}))

	// Send draft tool
	sendDraftTool := mcp.NewTool("gmail_send_draft",
		mcp.WithDescription("Send an existing draft"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("draftId",
			mcp.Required(),
			mcp.Description("The ID of the draft to send"),
		),
	)

	s.AddTool(sendDraftTool, common.InstrumentedToolHandlerWithService(
		"gmail_send_draft", instrumentation.ServiceGmail, instrumentation.OperationSend, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSendDraft(ctx, request, sc)
		}))

	return nil
}

func handleListDrafts(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	client, errResult := getClientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	drafts, err := client.ListDrafts(ctx, maxResultsFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list drafts: %v", err)), nil
	}

	summaries := make([]*draftSummary, 0, len(drafts))
	for _, draft := range drafts {
		s := &draftSummary{ID: draft.Id}
		if draft.Message != nil {
			s.To = gmail.HeaderValue(draft.Message, "To")
			s.Subject = gmail.HeaderValue(draft.Message, "Subject")
			s.Snippet = draft.Message.Snippet
		}
		summaries = append(summaries, s)
	}

	jsonBytes, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format results: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Found %d draft(s):\n%s", len(summaries), string(jsonBytes))), nil
}

func handleGetDraft(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	draftID, ok := args["draftId"].(string)
	if !ok || draftID == "" {
		return mcp.NewToolResultError("draftId is required"), nil
	}

	client, errResult := getClientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	draft, err := client.GetDraft(ctx, draftID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get draft: %v", err)), nil
	}

	view := map[string]interface{}{
		"id": draft.Id,
	}
	if draft.Message != nil {
		view["to"] = gmail.HeaderValue(draft.Message, "To")
		view["cc"] = gmail.HeaderValue(draft.Message, "Cc")
		view["subject"] = gmail.HeaderValue(draft.Message, "Subject")
		view["body"] = gmail.ExtractBody(draft.Message.Payload)
	}

	jsonBytes, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format results: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func handleCreateDraft(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	to, ok := args["to"].(string)
	if !ok || to == "" {
		return mcp.NewToolResultError("to is required"), nil
	}

	subject, _ := args["subject"].(string)
	body, _ := args["body"].(string)

	client, errResult := getClientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	draft, err := client.CreateDraft(ctx, to, subject, body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create draft: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Draft created successfully. Draft ID: %s", draft.Id)), nil
}

func handleUpdateDraft(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	draftID, ok := args["draftId"].(string)
	if !ok || draftID == "" {
		return mcp.NewToolResultError("draftId is required"), nil
	}

	to, ok := args["to"].(string)
	if !ok || to == "" {
		return mcp.NewToolResultError("to is required"), nil
	}

	subject, _ := args["subject"].(string)
	body, _ := args["body"].(string)

	client, errResult := getClientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	draft, err := client.UpdateDraft(ctx, draftID, to, subject, body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update draft: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Draft %s updated successfully", draft.Id)), nil
}

func handleDeleteDraft(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	draftID, ok := args["draftId"].(string)
	if !ok || draftID == "" {
		return mcp.NewToolResultError("draftId is required"), nil
	}

	client, errResult := getClientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	if err := client.DeleteDraft(ctx, draftID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete draft: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Draft %s deleted", draftID)), nil
}

func handleSendDraft(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	draftID, ok := args["draftId"].(string)
	if !ok || draftID == "" {
		return mcp.NewToolResultError("draftId is required"), nil
	}

	client, errResult := getClientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	msgID, err := client.SendDraft(ctx, draftID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to send draft: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Draft sent successfully. Message ID: %s", msgID)), nil
}
