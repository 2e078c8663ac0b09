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

// RegisterLabelTools registers label management tools with the MCP server.
// Create, update and delete are skipped in read-only mode.
func RegisterLabelTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// List labels tool
	listLabelsTool := mcp.NewTool("gmail_list_labels",
		mcp.WithDescription("List all labels in the Gmail account, system and user labels alike"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(listLabelsTool, common.InstrumentedToolHandlerWithService(
		"gmail_list_labels", instrumentation.ServiceGmail, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListLabels(ctx, request, sc)
		}))

	// Get label tool
	getLabelTool := mcp.NewTool("gmail_get_label",
		mcp.WithDescription("Get a label with its message and thread counts"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("labelId",
			mcp.Required(),
			mcp.Description("The ID of the label to retrieve"),
		),
	)

	s.AddTool(getLabelTool, common.InstrumentedToolHandlerWithService(
		"gmail_get_label", instrumentation.ServiceGmail, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetLabel(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	// Create label tool
	createLabelTool := mcp.NewTool("gmail_create_label",
		mcp.WithDescription("Create a new user label"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the label to create"),
		),
		mcp.WithString("labelListVisibility",
			mcp.Description("Label list visibility: labelShow, labelShowIfUnread or labelHide (default: labelShow)"),
		),
		mcp.WithString("messageListVisibility",
			mcp.Description("Message list visibility: show or hide (default: show)"),
		),
	)

	s.AddTool(createLabelTool, common.InstrumentedToolHandlerWithService(
		"gmail_create_label", instrumentation.ServiceGmail, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateLabel(ctx, request, sc)
		}))

	// Update label tool
	updateLabelTool := mcp.NewTool("gmail_update_label",
		mcp.WithDescription("Update a user label's name and visibility"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("labelId",
			mcp.Required(),
			mcp.Description("The ID of the label to update"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("New name for the label"),
		),
		mcp.WithString("labelListVisibility",
			mcp.Description("Label list visibility: labelShow, labelShowIfUnread or labelHide"),
		),
		mcp.WithString("messageListVisibility",
			mcp.Description("Message list visibility: show or hide"),
		),
	)

	s.AddTool(updateLabelTool, common.InstrumentedToolHandlerWithService(
		"gmail_update_label", instrumentation.ServiceGmail, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateLabel(ctx, request, sc)
		}))

	// Delete label tool
	deleteLabelTool := mcp.NewTool("gmail_delete_label",
		mcp.WithDescription("Delete a user label. System labels cannot be deleted."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("labelId",
			mcp.Required(),
			mcp.Description("The ID of the label to delete"),
		),
	)

	s.AddTool(deleteLabelTool, common.InstrumentedToolHandlerWithService(
		"gmail_delete_label", instrumentation.ServiceGmail, instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteLabel(ctx, request, sc)
		}))

	return nil
}

func labelOptionsFromArgs(args map[string]interface{}) *gmail.LabelOptions {
	opts := &gmail.LabelOptions{}
	if v, ok := args["labelListVisibility"].(string); ok {
		opts.LabelListVisibility = v
	}
	if v, ok := args["messageListVisibility"].(string); ok {
		opts.MessageListVisibility = v
	}
	return opts
}

func handleListLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	client, errResult := getClientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	labels, err := client.ListLabels(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list labels: %v", err)), nil
	}

	jsonBytes, err := json.MarshalIndent(labels, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format results: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Found %d label(s):\n%s", len(labels), string(jsonBytes))), nil
}

func handleGetLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	labelID, ok := args["labelId"].(string)
	if !ok || labelID == "" {
		return mcp.NewToolResultError("labelId is required"), nil
	}

	client, errResult := getClientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	label, err := client.GetLabel(ctx, labelID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get label: %v", err)), nil
	}

	jsonBytes, err := json.MarshalIndent(label, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format results: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func handleCreateLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	client, errResult := getClientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	label, err := client.CreateLabel(ctx, name, labelOptionsFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create label: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created label %q with ID %s", label.Name, label.Id)), nil
}

func handleUpdateLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	labelID, ok := args["labelId"].(string)
	if !ok || labelID == "" {
		return mcp.NewToolResultError("labelId is required"), nil
	}

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	client, errResult := getClientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	label, err := client.UpdateLabel(ctx, labelID, name, labelOptionsFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update label: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Updated label %s to %q", label.Id, label.Name)), nil
}

func handleDeleteLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := getAccountFromArgs(args)

	labelID, ok := args["labelId"].(string)
	if !ok || labelID == "" {
		return mcp.NewToolResultError("labelId is required"), nil
	}

	client, errResult := getClientForAccount(ctx, sc, account)
	if errResult != nil {
		return errResult, nil
	}

	if err := client.DeleteLabel(ctx, labelID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete label: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted label %s", labelID)), nil
}
