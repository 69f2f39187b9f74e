package qc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dossier/internal/domain/models/organizer"
)

func TestBulkApprove(t *testing.T) {
	var gotPath string
	var gotIDs []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var body struct {
			IDs []string `json:"ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotIDs = body.IDs
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if err := client.BulkApprove(context.Background(), []string{"doc-1", "doc-2"}); err != nil {
		t.Fatalf("BulkApprove() error = %v", err)
	}

	if gotPath != "/bulk-approve" {
		t.Errorf("path = %q, want /bulk-approve", gotPath)
	}
	if len(gotIDs) != 2 || gotIDs[0] != "doc-1" {
		t.Errorf("ids = %v", gotIDs)
	}
}

func TestBulkApproveEmptySelection(t *testing.T) {
	client := NewClient("http://unused")
	if err := client.BulkApprove(context.Background(), nil); err == nil {
		t.Error("empty id set should fail without a network call")
	}
}

func TestBulkApproveServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "pipeline overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.BulkApprove(context.Background(), []string{"doc-1"})
	if err == nil {
		t.Fatal("non-2xx response should be an error")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error should carry the status code, got %v", err)
	}
}

func TestAdvise(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/advise" {
			t.Errorf("path = %q, want /advise", r.URL.Path)
		}
		var req organizer.AdvisoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.DocumentID != "doc-1" || req.ModuleID != "m3" {
			t.Errorf("request = %+v", req)
		}

		resp := organizer.Advisory{
			DocumentID: req.DocumentID,
			ModuleID:   req.ModuleID,
			Status:     "warning",
			Guidance: []organizer.Finding{
				{Rule: "module-mismatch", Severity: "warning", Message: "Clinical reports usually live in m5.", Suggestion: "m5"},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	advisory, err := client.Advise(context.Background(), organizer.AdvisoryRequest{
		DocumentID:      "doc-1",
		ModuleID:        "m3",
		DocumentType:    "clinical-study-report",
		DocumentTitle:   "Study 001",
		ExistingModules: []string{"m3", "m5"},
		Region:          "us",
	})
	if err != nil {
		t.Fatalf("Advise() error = %v", err)
	}

	if advisory.Status != "warning" {
		t.Errorf("status = %q", advisory.Status)
	}
	if len(advisory.Guidance) != 1 || advisory.Guidance[0].Rule != "module-mismatch" {
		t.Errorf("guidance = %+v", advisory.Guidance)
	}
}

func TestAdviseMalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>gateway error</html>"},
		{"missing ids", `{"status":"ok","guidance":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL)
			if _, err := client.Advise(context.Background(), organizer.AdvisoryRequest{
				DocumentID: "doc-1",
				ModuleID:   "m1",
			}); err == nil {
				t.Error("malformed response should be an error")
			}
		})
	}
}

func TestAdviseContextCancelled(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL)
	if _, err := client.Advise(ctx, organizer.AdvisoryRequest{DocumentID: "doc-1", ModuleID: "m1"}); err == nil {
		t.Error("cancelled context should abort the request")
	}
}
