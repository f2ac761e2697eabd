package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/drewfead/copilot/internal/config"
	"github.com/drewfead/copilot/internal/errclass"
	"github.com/drewfead/copilot/internal/eventlog"
	"github.com/drewfead/copilot/internal/logging"
	"github.com/drewfead/copilot/internal/message"
	"github.com/drewfead/copilot/internal/response"
	"github.com/drewfead/copilot/pkg/agui"
)

// maxEventLine bounds a single protocol event on the wire. Large agent
// state snapshots fit comfortably; anything bigger is a broken stream.
const maxEventLine = 10 * 1024 * 1024

// AgentClient talks directly to an ag_ui agent server over HTTP, reading
// newline-delimited protocol events off the generate endpoint.
type AgentClient struct {
	agentName  string
	baseURL    string
	httpClient *http.Client
	headers    map[string]string
	threadID   string

	reporter *errclass.Reporter
	recorder *eventlog.Recorder
}

func newAgentClient(agentName, baseURL string, opts *config.Options, reporter *errclass.Reporter, rec *eventlog.Recorder) *AgentClient {
	return &AgentClient{
		agentName:  agentName,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(opts.Credentials),
		headers:    opts.Headers,
		threadID:   opts.ThreadID,
		reporter:   reporter,
		recorder:   rec,
	}
}

func (c *AgentClient) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerClientVersion, ClientVersion)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

func (c *AgentClient) envelope(greq *GenerateRequest) generateEnvelope {
	threadID := greq.ThreadID
	if threadID == "" {
		threadID = c.threadID
	}
	if threadID == "" {
		threadID = uuid.NewString()
	}

	agentName := greq.AgentName
	if agentName == "" {
		agentName = c.agentName
	}

	return generateEnvelope{
		Data: generateData{
			ThreadID:  threadID,
			RunID:     greq.RunID,
			AgentName: agentName,
			State:     greq.State,
			Messages:  message.ToWire(greq.Messages, greq.Actions),
			Actions:   message.ToolsFromActions(greq.Actions),
		},
		Properties: greq.Properties,
	}
}

// GenerateResponse runs a generate invocation to completion.
func (c *AgentClient) GenerateResponse(ctx context.Context, greq *GenerateRequest) ([]response.Output, error) {
	stream, err := c.AsStream(ctx, greq)
	if err != nil {
		return nil, err
	}
	return response.Collect(ctx, stream)
}

// AsStream issues the generate request and returns the incremental stream.
// Configuration and marshalling failures surface synchronously; everything
// after the request leaves the building arrives through the stream.
func (c *AgentClient) AsStream(ctx context.Context, greq *GenerateRequest) (*response.Stream, error) {
	ctx, cancel := context.WithCancel(ctx)
	stream := response.NewStream(cancel)

	env := c.envelope(greq)
	body, err := json.Marshal(env)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}

	url := c.baseURL + "/generate"
	req, err := c.newRequest(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "application/x-ndjson")

	go c.readResponse(ctx, req, env.Data.ThreadID, stream)
	return stream, nil
}

func (c *AgentClient) readResponse(ctx context.Context, req *http.Request, threadID string, stream *response.Stream) {
	url := req.URL.String()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.fail(stream, err)
		return
	}
	defer resp.Body.Close()

	c.checkVersion(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.fail(stream, errclass.Transport(url, resp.StatusCode, readErrorBody(resp.Body)))
		return
	}

	translator := response.NewTranslator(url)

	if !isEventStream(resp.Header.Get("Content-Type")) {
		// Non-streaming servers answer with one JSON document.
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			c.fail(stream, err)
			return
		}
		if raw = bytes.TrimSpace(raw); len(raw) > 0 {
			c.deliver(ctx, translator, stream, threadID, url, raw)
		}
		stream.Complete()
		return
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventLine)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		raw := append([]byte(nil), line...)
		if !c.deliver(ctx, translator, stream, threadID, url, raw) {
			// Either the stream already failed or the caller cancelled;
			// Complete is a no-op in the first case.
			stream.Complete()
			return
		}
	}

	if err := scanner.Err(); err != nil {
		c.fail(stream, err)
		return
	}
	stream.Complete()
}

// deliver parses, journals, translates, and pushes one raw event. Returns
// false when the read loop should stop.
func (c *AgentClient) deliver(ctx context.Context, tr *response.Translator, stream *response.Stream, threadID, url string, raw []byte) bool {
	ev, err := agui.ParseEvent(raw)
	if err != nil {
		c.fail(stream, errclass.Protocol(url, fmt.Sprintf("malformed event: %v", err)))
		return false
	}

	if err := c.recorder.Record(ctx, threadID, c.agentName, ev, raw); err != nil {
		logging.Warn("event journal append failed", "error", err)
	}

	out, err := tr.Translate(ev)
	if err != nil {
		c.fail(stream, err)
		return false
	}
	if out == nil {
		return true
	}
	return stream.Push(*out)
}

func (c *AgentClient) fail(stream *response.Stream, err error) {
	c.reporter.Report(err)
	stream.Fail(err)
}

func (c *AgentClient) checkVersion(resp *http.Response) {
	if v := resp.Header.Get(headerRuntimeVersion); v != "" && v != ClientVersion {
		c.reporter.Report(errclass.VersionMismatch(ClientVersion, v))
	}
}

// AvailableAgents lists agents from the server's discovery endpoint.
func (c *AgentClient) AvailableAgents(ctx context.Context) ([]Agent, error) {
	url := c.baseURL + "/agents"
	req, err := c.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errclass.Classify(err)
	}
	defer resp.Body.Close()

	c.checkVersion(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errclass.Transport(url, resp.StatusCode, readErrorBody(resp.Body))
	}

	var out agentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errclass.Protocol(url, fmt.Sprintf("malformed agent listing: %v", err))
	}
	return out.Agents, nil
}

// LoadAgentState fetches the persisted state for a thread.
func (c *AgentClient) LoadAgentState(ctx context.Context, agentName, threadID string) (*AgentState, error) {
	if agentName == "" {
		agentName = c.agentName
	}

	body, err := json.Marshal(agentStateRequest{ThreadID: threadID, AgentName: agentName})
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/agent-state"
	req, err := c.newRequest(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errclass.Classify(err)
	}
	defer resp.Body.Close()

	c.checkVersion(resp)

	if resp.StatusCode == http.StatusNotFound {
		return nil, errclass.AgentNotFound(agentName)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errclass.Transport(url, resp.StatusCode, readErrorBody(resp.Body))
	}

	var state AgentState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, errclass.Protocol(url, fmt.Sprintf("malformed agent state: %v", err))
	}
	return &state, nil
}

func (c *AgentClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func isEventStream(contentType string) bool {
	return strings.Contains(contentType, "ndjson") ||
		strings.Contains(contentType, "jsonl") ||
		strings.Contains(contentType, "event-stream")
}

// readErrorBody extracts a short diagnostic from a failed response.
func readErrorBody(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return "request failed"
	}
	return string(bytes.TrimSpace(raw))
}
