// Package google provides OAuth2 authentication and token management for Google APIs.
//
// Tokens are stored on disk per account under the user cache directory
// (~/.cache/gmail-mcp/ on Linux). Each account gets its own token file, so
// several Google accounts can be authorized side by side.
package google
