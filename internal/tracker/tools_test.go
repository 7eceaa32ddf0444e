package tracker

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/trackops/issuegate/internal/domain"
	"github.com/trackops/issuegate/internal/tool"
)

func toolByName(t *testing.T, client *Client, name string) tool.Tool {
	t.Helper()
	for _, tl := range Tools(client) {
		if tl.Name() == name {
			return tl
		}
	}
	t.Fatalf("tool %s not found", name)
	return nil
}

func TestTools_Names(t *testing.T) {
	client := NewClient("key")
	want := map[string]bool{
		"listIssues": true, "getIssue": true, "createIssue": true,
		"updateIssue": true, "searchIssues": true, "listTeams": true,
		"addComment": true,
	}
	tools := Tools(client)
	if len(tools) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(tools))
	}
	for _, tl := range tools {
		if !want[tl.Name()] {
			t.Errorf("unexpected tool %q", tl.Name())
		}
	}
}

func TestValidators(t *testing.T) {
	client := NewClient("key")

	tests := []struct {
		tool    string
		params  domain.Params
		wantErr bool
	}{
		{"listIssues", domain.Params{"teamId": "T1", "first": float64(10)}, false},
		{"listIssues", domain.Params{}, false},
		{"listIssues", domain.Params{"teamId": 42}, true},
		{"listIssues", domain.Params{"first": float64(0)}, true},
		{"listIssues", domain.Params{"first": float64(2.5)}, true},
		{"getIssue", domain.Params{"id": "ISS-1"}, false},
		{"getIssue", domain.Params{}, true},
		{"createIssue", domain.Params{"teamId": "T1", "title": "bug"}, false},
		{"createIssue", domain.Params{"teamId": "T1"}, true}, // missing title
		{"createIssue", domain.Params{"teamId": "T1", "title": ""}, true},
		{"createIssue", domain.Params{"teamId": "T1", "title": "bug", "priority": float64(9)}, true},
		{"updateIssue", domain.Params{"id": "ISS-1", "title": "new"}, false},
		{"updateIssue", domain.Params{"title": "new"}, true},
		{"searchIssues", domain.Params{"query": "crash"}, false},
		{"searchIssues", domain.Params{}, true},
		{"listTeams", domain.Params{}, false},
		{"addComment", domain.Params{"issueId": "ISS-1", "body": "done"}, false},
		{"addComment", domain.Params{"issueId": "ISS-1"}, true},
	}

	for _, tt := range tests {
		tl := toolByName(t, client, tt.tool)
		err := tl.Validate(tt.params)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s.Validate(%v) error = %v, wantErr %v", tt.tool, tt.params, err, tt.wantErr)
			continue
		}
		if err != nil {
			var toolErr *domain.ToolError
			if !errors.As(err, &toolErr) || toolErr.Code != domain.ErrorCodeInvalidArguments {
				t.Errorf("%s: expected INVALID_ARGUMENTS, got %v", tt.tool, err)
			}
		}
	}
}

func TestListIssues_ReturnsIssuesSubtree(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"issues": {"nodes": []}}}`))
	}))
	defer srv.Close()

	client := NewClient("key", WithBaseURL(srv.URL))
	tl := toolByName(t, client, "listIssues")

	result, err := tl.Invoke(context.Background(), domain.Params{"teamId": "T1", "first": float64(10)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	issues, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("expected issues object, got %T", result)
	}
	if nodes := issues["nodes"].([]any); len(nodes) != 0 {
		t.Errorf("expected empty nodes, got %v", nodes)
	}
}

func TestCreateIssue_ReturnsPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"issueCreate": {"success": true, "issue": {"id": "ISS-1", "identifier": "PLT-1", "title": "bug"}}}}`))
	}))
	defer srv.Close()

	client := NewClient("key", WithBaseURL(srv.URL))
	tl := toolByName(t, client, "createIssue")

	result, err := tl.Invoke(context.Background(), domain.Params{"teamId": "T1", "title": "bug"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	payload := result.(map[string]any)
	if payload["success"] != true {
		t.Errorf("unexpected payload: %v", payload)
	}
}
