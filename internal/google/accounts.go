package google

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// validateAccountName rejects account names that could escape the token
// directory or produce surprising file names. Valid names consist of letters,
// digits, hyphens and underscores.
func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name must not be empty")
	}
	for _, r := range account {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return fmt.Errorf("account name %q contains invalid character %q", account, r)
		}
	}
	return nil
}

// getTokenFilePath returns the token file path for the given account
func getTokenFilePath(account string) string {
	return filepath.Join(tokenCacheDir(), fmt.Sprintf("google-%s.token", account))
}

// HasTokenForAccount checks if a stored OAuth token exists for the specified account
func HasTokenForAccount(account string) bool {
	if err := validateAccountName(account); err != nil {
		return false
	}
	_, err := os.ReadFile(getTokenFilePath(account))
	return err == nil
}

// GetAuthURLForAccount returns the OAuth URL for user authorization of the
// specified account
func GetAuthURLForAccount(account string) string {
	conf := getOAuthConfig()
	return conf.AuthCodeURL(account, oauth2.AccessTypeOffline)
}

// SaveTokenForAccount exchanges an authorization code for tokens and saves
// them under the specified account name
func SaveTokenForAccount(ctx context.Context, account string, authCode string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}

	conf := getOAuthConfig()
	t, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	if _, err := ensureCacheDir(); err != nil {
		return err
	}

	tokenData := t.AccessToken + " " + t.RefreshToken
	if err := os.WriteFile(getTokenFilePath(account), []byte(tokenData), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// GetTokenSourceForAccount returns an OAuth2 token source backed by the
// stored token of the specified account
func GetTokenSourceForAccount(ctx context.Context, account string) (oauth2.TokenSource, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}

	conf := getOAuthConfig()

	slurp, err := os.ReadFile(getTokenFilePath(account))
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s", account)
	}

	f := strings.Fields(strings.TrimSpace(string(slurp)))
	if len(f) != 2 {
		return nil, fmt.Errorf("invalid token format for account %s", account)
	}

	ts := conf.TokenSource(ctx, &oauth2.Token{
		AccessToken:  f[0],
		TokenType:    "Bearer",
		RefreshToken: f[1],
		Expiry:       time.Unix(1, 0),
	})

	// Validate the token
	if _, err := ts.Token(); err != nil {
		log.Printf("Cached token invalid for account %s: %v", account, err)
		return nil, fmt.Errorf("cached token is invalid: %w", err)
	}

	return ts, nil
}

// GetHTTPClientForAccount returns an HTTP client configured with OAuth2
// authentication for the specified account
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors
func GetHTTPClientForAccount(ctx context.Context, account string) (*http.Client, error) {
	ts, err := GetTokenSourceForAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	client := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	baseTransport := &http.Transport{
		ForceAttemptHTTP2: false,
	}
	transport.Base = baseTransport

	return client, nil
}

// MigrateDefaultToken moves a legacy single-account token file to the
// per-account naming scheme. Running it when no legacy file exists is a no-op.
func MigrateDefaultToken() error {
	oldTokenFile := filepath.Join(tokenCacheDir(), "google.token")
	if _, err := os.Stat(oldTokenFile); os.IsNotExist(err) {
		return nil
	}

	newTokenFile := getTokenFilePath("default")
	if _, err := os.Stat(newTokenFile); err == nil {
		// Both exist, keep the per-account file and drop the legacy one
		return os.Remove(oldTokenFile)
	}

	if err := os.Rename(oldTokenFile, newTokenFile); err != nil {
		return fmt.Errorf("failed to migrate default token: %w", err)
	}
	return nil
}

// GetAuthenticationErrorMessage returns the user-facing message for a missing
// or invalid token, including the steps to authenticate the account.
func GetAuthenticationErrorMessage(account string) string {
	return fmt.Sprintf("No valid Google OAuth token found for account %q. "+
		"Please authenticate: call google_get_auth_url with account=%q, "+
		"visit the URL, then call google_save_auth_code with the code.",
		account, account)
}
