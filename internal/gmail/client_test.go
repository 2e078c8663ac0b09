package gmail

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/mailbridge/gmail-mcp/internal/logging"
)

// newTestClient builds a Client whose service talks to an httptest server
// instead of the real Gmail API.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := gmail.NewService(context.Background(),
		option.WithEndpoint(srv.URL),
		option.WithoutAuthentication())
	if err != nil {
		t.Fatalf("failed to create Gmail service: %v", err)
	}

	return &Client{
		svc:     svc.Users,
		account: "test",
		log:     logging.NewSlogAdapter(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
}

func TestBatchTrashMessages_AllSucceed(t *testing.T) {
	ids := []string{"msg1", "msg2", "msg3"}

	var gotReq gmail.BatchModifyMessagesRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/messages/batchModify") {
			t.Errorf("unexpected request path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode batch modify request: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	result, err := client.BatchTrashMessages(context.Background(), ids)
	if err != nil {
		t.Fatalf("BatchTrashMessages() error = %v", err)
	}

	if result.Success != len(ids) || result.Failed != 0 {
		t.Errorf("result = {success: %d, failed: %d}, want {success: %d, failed: 0}",
			result.Success, result.Failed, len(ids))
	}
	if result.FailedIDs == nil || len(result.FailedIDs) != 0 {
		t.Errorf("FailedIDs = %v, want empty non-nil slice", result.FailedIDs)
	}

	if len(gotReq.Ids) != len(ids) {
		t.Errorf("request carried %d ids, want %d", len(gotReq.Ids), len(ids))
	}
	if len(gotReq.AddLabelIds) != 1 || gotReq.AddLabelIds[0] != "TRASH" {
		t.Errorf("AddLabelIds = %v, want [TRASH]", gotReq.AddLabelIds)
	}
	if len(gotReq.RemoveLabelIds) != 1 || gotReq.RemoveLabelIds[0] != "INBOX" {
		t.Errorf("RemoveLabelIds = %v, want [INBOX]", gotReq.RemoveLabelIds)
	}
}

func TestBatchTrashMessages_FailureReportsAllIDs(t *testing.T) {
	ids := []string{"msg1", "msg2"}

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"code":500,"message":"backend error"}}`)
	}))

	result, err := client.BatchTrashMessages(context.Background(), ids)
	if err == nil {
		t.Fatal("BatchTrashMessages() error = nil, want error")
	}

	// Never a partial outcome: the one call failing fails every id.
	if result.Success != 0 || result.Failed != len(ids) {
		t.Errorf("result = {success: %d, failed: %d}, want {success: 0, failed: %d}",
			result.Success, result.Failed, len(ids))
	}
	if len(result.FailedIDs) != len(ids) {
		t.Fatalf("FailedIDs = %v, want all requested ids", result.FailedIDs)
	}
	for i, id := range ids {
		if result.FailedIDs[i] != id {
			t.Errorf("FailedIDs[%d] = %q, want %q", i, result.FailedIDs[i], id)
		}
	}
}

func TestBatchTrashMessages_EmptyNoCall(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected API call %s %s", r.Method, r.URL.Path)
	}))

	result, err := client.BatchTrashMessages(context.Background(), nil)
	if err != nil {
		t.Fatalf("BatchTrashMessages() error = %v", err)
	}
	if result.Success != 0 || result.Failed != 0 {
		t.Errorf("result = {success: %d, failed: %d}, want zeroes", result.Success, result.Failed)
	}
	if result.FailedIDs == nil || len(result.FailedIDs) != 0 {
		t.Errorf("FailedIDs = %v, want empty non-nil slice", result.FailedIDs)
	}
}

func TestModifyMessageLabels_EmptyNoCall(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected API call %s %s", r.Method, r.URL.Path)
	}))

	msg, err := client.ModifyMessageLabels(context.Background(), "msg1", nil, nil)
	if err != nil {
		t.Fatalf("ModifyMessageLabels() error = %v", err)
	}
	if msg != nil {
		t.Errorf("ModifyMessageLabels() = %v, want nil message for a no-op", msg)
	}
}

func TestModifyMessageLabels_Success(t *testing.T) {
	var gotReq gmail.ModifyMessageRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/messages/msg1/modify") {
			t.Errorf("unexpected request path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode modify request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg1","labelIds":["STARRED","INBOX"]}`)
	}))

	msg, err := client.ModifyMessageLabels(context.Background(), "msg1", []string{"STARRED"}, []string{"UNREAD"})
	if err != nil {
		t.Fatalf("ModifyMessageLabels() error = %v", err)
	}
	if msg.Id != "msg1" {
		t.Errorf("modified message id = %q, want msg1", msg.Id)
	}
	if len(gotReq.AddLabelIds) != 1 || gotReq.AddLabelIds[0] != "STARRED" {
		t.Errorf("AddLabelIds = %v, want [STARRED]", gotReq.AddLabelIds)
	}
	if len(gotReq.RemoveLabelIds) != 1 || gotReq.RemoveLabelIds[0] != "UNREAD" {
		t.Errorf("RemoveLabelIds = %v, want [UNREAD]", gotReq.RemoveLabelIds)
	}
}

func TestModifyMessageLabels_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":404,"message":"Not Found"}}`)
	}))

	_, err := client.ModifyMessageLabels(context.Background(), "missing", []string{"STARRED"}, nil)
	if err == nil {
		t.Fatal("ModifyMessageLabels() error = nil, want not-found error")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false, want true", err)
	}
}
