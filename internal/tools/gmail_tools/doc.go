// Package gmail_tools provides MCP (Model Context Protocol) tools for interacting with Gmail.
//
// This package exposes Gmail functionality through MCP tools that can be called by
// AI agents or other MCP clients. It provides capabilities for:
//
// Email Management:
//   - gmail_list_emails: List recent emails, optionally filtered by label
//   - gmail_search_emails: Search emails using Gmail query syntax
//   - gmail_get_email: Get a full email with decoded body and attachment list
//   - gmail_send_email: Send a new email, optionally with attachments
//   - gmail_reply_to_email: Reply to an email, preserving threading
//   - gmail_delete_email: Move an email to the trash
//   - gmail_delete_emails: Move multiple emails to the trash in one batch call
//   - gmail_modify_labels: Add and/or remove labels on an email
//
// Label Management:
//   - gmail_list_labels, gmail_get_label
//   - gmail_create_label, gmail_update_label, gmail_delete_label
//
// Draft Management:
//   - gmail_list_drafts, gmail_get_draft
//   - gmail_create_draft, gmail_update_draft, gmail_delete_draft, gmail_send_draft
//
// Attachment Management:
//   - gmail_list_attachments: List all attachments in a message
//   - gmail_get_attachment: Download an attachment to disk or return it as base64
//   - gmail_get_message_bodies: Extract decoded text bodies from one or more messages
//
// Write operations are not registered when the server runs in read-only mode.
//
// All tools accept an optional "account" argument so multiple Google accounts
// can be used side by side. The Gmail client for each account is created
// lazily from the stored OAuth token and cached in the server context; when
// no token exists, the tool responds with the authorization URL and
// instructions for the google_save_auth_code tool.
//
// Example usage of attachment tools:
//
//	// List attachments in a message
//	gmail_list_attachments(messageId: "msg123")
//
//	// Get attachment content as base64
//	gmail_get_attachment(messageId: "msg123", attachmentId: "att456")
//
//	// Save an attachment to a local directory
//	gmail_get_attachment(messageId: "msg123", attachmentId: "att456",
//		filename: "report.pdf", downloadPath: "/tmp/attachments")
//
// Security Considerations:
//   - Attachment size is limited to 25MB (MaxAttachmentSize)
//   - Filenames are sanitized to prevent path traversal attacks
//   - OAuth2 tokens are securely stored and refreshed automatically
package gmail_tools
