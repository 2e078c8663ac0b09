package common

import (
	"context"
)

// GetAccountFromArgs extracts the account name from request arguments.
// Falls back to "default" when no account was provided.
//
// The context parameter is kept so transports that carry an authenticated
// identity can take precedence here without changing call sites.
func GetAccountFromArgs(_ context.Context, args map[string]interface{}) string {
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return "default"
}
