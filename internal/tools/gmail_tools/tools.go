package gmail_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mailbridge/gmail-mcp/internal/gmail"
	"github.com/mailbridge/gmail-mcp/internal/server"
)

// getAccountFromArgs extracts the account name from request arguments, defaulting to "default"
func getAccountFromArgs(args map[string]interface{}) string {
	account := "default"
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		account = accountVal
	}
	return account
}

// getClientForAccount returns the cached Gmail client for the account, creating
// it on first use. When the account has no token, the second return value is an
// error tool result explaining how to authenticate; the caller returns it as-is.
func getClientForAccount(ctx context.Context, sc *server.ServerContext, account string) (*gmail.Client, *mcp.CallToolResult) {
	client := sc.GmailClientForAccount(account)
	if client != nil {
		return client, nil
	}

	if !gmail.HasTokenForAccount(account) {
		authURL := gmail.GetAuthURLForAccount(account)
		errorMsg := fmt.Sprintf(`Google OAuth token not found for account "%s". To authorize access:

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account
3. Grant access to Gmail
4. Copy the authorization code

5. Provide the authorization code to your AI agent
   The agent will use the google_save_auth_code tool with account="%s" to complete authentication.

Note: You only need to authorize once. The tokens will be automatically refreshed.`, account, authURL, account)
		return nil, mcp.NewToolResultError(errorMsg)
	}

	client, err := gmail.NewClientForAccount(ctx, account)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("Failed to create Gmail client for account %s: %v", account, err))
	}
	sc.SetGmailClientForAccount(account, client)
	return client, nil
}

// RegisterGmailTools registers all Gmail-related tools with the MCP server
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// Register email tools (write operations require !readOnly)
	if err := RegisterEmailTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register email tools: %w", err)
	}

	// Register label tools
	if err := RegisterLabelTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register label tools: %w", err)
	}

	// Register draft tools
	if err := RegisterDraftTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register draft tools: %w", err)
	}

	// Register attachment tools (read-only)
	if err := RegisterAttachmentTools(s, sc); err != nil {
		return fmt.Errorf("failed to register attachment tools: %w", err)
	}

	return nil
}
