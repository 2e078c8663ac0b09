// Package gmail provides a client for interacting with the Gmail API.
//
// This package offers the email operations the MCP tools are built on:
//   - Listing and searching messages, with metadata summaries
//   - Reading messages with MIME body decoding and attachment scanning
//   - Sending, replying (with conversation threading), trashing and
//     label modification
//   - Label management (list, create, update, delete)
//   - Draft management (list, get, create, update, delete, send)
//   - Attachment download and saving to disk
//
// Message bodies arrive base64url-encoded inside a MIME part tree; ExtractBody
// walks that tree preferring text/plain over text/html and tolerates malformed
// encodings. ScanAttachments walks the same tree collecting every part that
// names a file. ResolveThreading and AssembleRaw build outgoing replies that
// thread correctly in the recipient's mail client.
//
// Authentication:
// This package uses the unified Google OAuth token from the google package.
// Tokens are loaded from the file system (~/.cache/gmail-mcp/).
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := gmail.NewClient(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// List messages matching a query
//	emails, err := client.ListMessages(ctx, "in:inbox", nil, 10)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Send an email
//	msgID, err := client.SendMessage(ctx, &gmail.OutgoingMessage{
//	    To:      []string{"recipient@example.com"},
//	    Subject: "Hello",
//	    Body:    "This is a test email",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
package gmail
