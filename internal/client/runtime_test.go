package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/drewfead/copilot/internal/config"
	"github.com/drewfead/copilot/internal/errclass"
	"github.com/drewfead/copilot/internal/response"
)

func TestRuntimeGenerateStreamsRows(t *testing.T) {
	var op gqlRequest
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&op); err != nil {
			t.Errorf("Request did not decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `{"data":{"generateCopilotResponse":{"kind":"text_message","message_id":"m1","status":"PENDING","role":"assistant"}}}`)
		fmt.Fprintln(w, `{"data":{"generateCopilotResponse":{"kind":"text_message","message_id":"m1","status":"PENDING","content":"hi"}}}`)
		fmt.Fprintln(w, `{"data":{"generateCopilotResponse":{"kind":"text_message","message_id":"m1","status":"SUCCESS"}}}`)
	}))
	defer srv.Close()

	m := newTestManager(t, config.Options{RuntimeURL: srv.URL, PublicAPIKey: "ck_pub_abc"})
	outs, err := m.Resolve("").GenerateResponse(context.Background(), &GenerateRequest{ThreadID: "t1"})
	if err != nil {
		t.Fatalf("GenerateResponse failed: %v", err)
	}

	if op.OperationName != "generateCopilotResponse" {
		t.Errorf("Operation name = %q", op.OperationName)
	}
	if auth != "Bearer ck_pub_abc" {
		t.Errorf("Authorization header = %q", auth)
	}
	if len(outs) != 3 {
		t.Fatalf("Expected 3 outputs, got %d", len(outs))
	}
	if outs[1].Content != "hi" || outs[2].Status != response.StatusSuccess {
		t.Errorf("Unexpected outputs: %+v", outs)
	}
}

func TestRuntimeGenerateErrorRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `{"errors":[{"message":"agent \"planner\" is unknown","extensions":{"code":"AGENT_NOT_FOUND"}}]}`)
	}))
	defer srv.Close()

	m := newTestManager(t, config.Options{RuntimeURL: srv.URL})
	_, err := m.Resolve("").GenerateResponse(context.Background(), &GenerateRequest{AgentName: "planner"})

	se := errclass.AsStructured(err)
	if se == nil {
		t.Fatalf("Expected structured error, got %v", err)
	}
	// A recognized extensions.code maps straight into the taxonomy.
	if se.Code != errclass.CodeAgentNotFound {
		t.Errorf("Expected AGENT_NOT_FOUND, got %s", se.Code)
	}
}

func TestRuntimeAvailableAgents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"availableAgents":{"agents":[{"name":"planner","id":"ag_1"}]}}}`)
	}))
	defer srv.Close()

	m := newTestManager(t, config.Options{RuntimeURL: srv.URL})
	agents, err := m.Resolve("").AvailableAgents(context.Background())
	if err != nil {
		t.Fatalf("AvailableAgents failed: %v", err)
	}
	if len(agents) != 1 || agents[0].Name != "planner" || agents[0].ID != "ag_1" {
		t.Errorf("Unexpected agents: %+v", agents)
	}
}

func TestRuntimeLoadAgentState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"loadAgentState":{"threadId":"t1","threadExists":true,"state":{"step":4}}}}`)
	}))
	defer srv.Close()

	m := newTestManager(t, config.Options{RuntimeURL: srv.URL})
	state, err := m.Resolve("").LoadAgentState(context.Background(), "planner", "t1")
	if err != nil {
		t.Fatalf("LoadAgentState failed: %v", err)
	}
	if !state.ThreadExists || state.ThreadID != "t1" {
		t.Errorf("Unexpected state: %+v", state)
	}
}

func TestRuntimeGraphQLErrorOnQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errors":[{"message":"status 401: invalid api key"}]}`)
	}))
	defer srv.Close()

	m := newTestManager(t, config.Options{RuntimeURL: srv.URL})
	_, err := m.Resolve("").AvailableAgents(context.Background())

	se := errclass.AsStructured(err)
	if se == nil {
		t.Fatalf("Expected structured error, got %v", err)
	}
	// No extensions.code, so the message text is classified.
	if se.Code != errclass.CodeAPINotFound {
		t.Errorf("Expected API_NOT_FOUND, got %s", se.Code)
	}
}
