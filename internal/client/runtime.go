package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/drewfead/copilot/internal/config"
	"github.com/drewfead/copilot/internal/errclass"
	"github.com/drewfead/copilot/internal/message"
	"github.com/drewfead/copilot/internal/response"
)

// GraphQL documents sent to the runtime server. The runtime owns the
// schema; this client only preserves the shape of variables and results.
const (
	generateMutation = `mutation generateCopilotResponse($data: GenerateCopilotResponseInput!, $properties: JSONObject) {
  generateCopilotResponse(data: $data, properties: $properties) @stream {
    kind
    message_id
    status
    role
    content
    action_name
    args
    agent_name
    node_name
    state
    running
    name
    value
  }
}`

	availableAgentsQuery = `query availableAgents {
  availableAgents {
    agents {
      name
      id
      description
    }
  }
}`

	loadAgentStateQuery = `query loadAgentState($data: LoadAgentStateInput!) {
  loadAgentState(data: $data) {
    threadId
    threadExists
    state
    messages
  }
}`
)

// RuntimeClient talks to a GraphQL runtime server. Generate responses
// arrive as newline-delimited GraphQL execution payloads; listing and
// state loading are single-shot queries.
type RuntimeClient struct {
	url        string
	httpClient *http.Client
	headers    map[string]string
	apiKey     string
	threadID   string

	reporter *errclass.Reporter
}

func newRuntimeClient(opts *config.Options, reporter *errclass.Reporter) *RuntimeClient {
	return &RuntimeClient{
		url:        opts.RuntimeURL,
		httpClient: newHTTPClient(opts.Credentials),
		headers:    opts.Headers,
		apiKey:     opts.PublicAPIKey,
		threadID:   opts.ThreadID,
		reporter:   reporter,
	}
}

// gqlRequest is one GraphQL operation on the wire.
type gqlRequest struct {
	OperationName string `json:"operationName"`
	Query         string `json:"query"`
	Variables     any    `json:"variables,omitempty"`
}

type gqlError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

// generateRow is one execution payload of the streamed generate mutation.
type generateRow struct {
	Data struct {
		GenerateCopilotResponse *response.Output `json:"generateCopilotResponse"`
	} `json:"data"`
	Errors []gqlError `json:"errors"`
}

func (c *RuntimeClient) newRequest(ctx context.Context, op gqlRequest) (*http.Request, error) {
	body, err := json.Marshal(op)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerClientVersion, ClientVersion)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// GenerateResponse runs the generate mutation to completion.
func (c *RuntimeClient) GenerateResponse(ctx context.Context, greq *GenerateRequest) ([]response.Output, error) {
	stream, err := c.AsStream(ctx, greq)
	if err != nil {
		return nil, err
	}
	return response.Collect(ctx, stream)
}

// AsStream issues the generate mutation and returns the incremental stream.
func (c *RuntimeClient) AsStream(ctx context.Context, greq *GenerateRequest) (*response.Stream, error) {
	ctx, cancel := context.WithCancel(ctx)
	stream := response.NewStream(cancel)

	threadID := greq.ThreadID
	if threadID == "" {
		threadID = c.threadID
	}
	if threadID == "" {
		threadID = uuid.NewString()
	}

	op := gqlRequest{
		OperationName: "generateCopilotResponse",
		Query:         generateMutation,
		Variables: map[string]any{
			"data": generateData{
				ThreadID:  threadID,
				RunID:     greq.RunID,
				AgentName: greq.AgentName,
				State:     greq.State,
				Messages:  message.ToWire(greq.Messages, greq.Actions),
				Actions:   message.ToolsFromActions(greq.Actions),
			},
			"properties": greq.Properties,
		},
	}

	req, err := c.newRequest(ctx, op)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "application/x-ndjson")

	go c.readResponse(req, stream)
	return stream, nil
}

func (c *RuntimeClient) readResponse(req *http.Request, stream *response.Stream) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.fail(stream, err)
		return
	}
	defer resp.Body.Close()

	c.checkVersion(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.fail(stream, errclass.Transport(c.url, resp.StatusCode, readErrorBody(resp.Body)))
		return
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventLine)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var row generateRow
		if err := json.Unmarshal(line, &row); err != nil {
			c.fail(stream, errclass.Protocol(c.url, fmt.Sprintf("malformed execution payload: %v", err)))
			return
		}
		if len(row.Errors) > 0 {
			c.fail(stream, c.structured(row.Errors[0]))
			return
		}
		if row.Data.GenerateCopilotResponse == nil {
			continue
		}
		if !stream.Push(*row.Data.GenerateCopilotResponse) {
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

// structured maps a GraphQL error into the taxonomy. A recognized
// extensions.code is used directly; anything else goes through Classify.
func (c *RuntimeClient) structured(gerr gqlError) *errclass.StructuredError {
	switch code := errclass.Code(gerr.Extensions.Code); code {
	case errclass.CodeConfiguration, errclass.CodeTransport, errclass.CodeProtocol,
		errclass.CodeVersionMismatch, errclass.CodeAPINotFound,
		errclass.CodeRemoteEndpointNotFound, errclass.CodeAgentNotFound:
		return &errclass.StructuredError{
			Code:       code,
			Message:    gerr.Message,
			Visibility: errclass.VisibilityBanner,
			URL:        c.url,
		}
	}
	se := errclass.Classify(fmt.Errorf("%s", gerr.Message))
	se.URL = c.url
	return se
}

func (c *RuntimeClient) fail(stream *response.Stream, err error) {
	c.reporter.Report(err)
	stream.Fail(err)
}

func (c *RuntimeClient) checkVersion(resp *http.Response) {
	if v := resp.Header.Get(headerRuntimeVersion); v != "" && v != ClientVersion {
		c.reporter.Report(errclass.VersionMismatch(ClientVersion, v))
	}
}

// do executes a single-shot query and decodes data into out.
func (c *RuntimeClient) do(ctx context.Context, op gqlRequest, out any) error {
	req, err := c.newRequest(ctx, op)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errclass.Classify(err)
	}
	defer resp.Body.Close()

	c.checkVersion(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errclass.Transport(c.url, resp.StatusCode, readErrorBody(resp.Body))
	}

	var payload struct {
		Data   json.RawMessage `json:"data"`
		Errors []gqlError      `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return errclass.Protocol(c.url, fmt.Sprintf("malformed response: %v", err))
	}
	if len(payload.Errors) > 0 {
		return c.structured(payload.Errors[0])
	}
	if err := json.Unmarshal(payload.Data, out); err != nil {
		return errclass.Protocol(c.url, fmt.Sprintf("malformed data payload: %v", err))
	}
	return nil
}

// AvailableAgents lists agents known to the runtime.
func (c *RuntimeClient) AvailableAgents(ctx context.Context) ([]Agent, error) {
	var data struct {
		AvailableAgents struct {
			Agents []Agent `json:"agents"`
		} `json:"availableAgents"`
	}
	op := gqlRequest{OperationName: "availableAgents", Query: availableAgentsQuery}
	if err := c.do(ctx, op, &data); err != nil {
		return nil, err
	}
	return data.AvailableAgents.Agents, nil
}

// LoadAgentState fetches the persisted state for a thread.
func (c *RuntimeClient) LoadAgentState(ctx context.Context, agentName, threadID string) (*AgentState, error) {
	var data struct {
		LoadAgentState *AgentState `json:"loadAgentState"`
	}
	op := gqlRequest{
		OperationName: "loadAgentState",
		Query:         loadAgentStateQuery,
		Variables: map[string]any{
			"data": agentStateRequest{ThreadID: threadID, AgentName: agentName},
		},
	}
	if err := c.do(ctx, op, &data); err != nil {
		return nil, err
	}
	if data.LoadAgentState == nil {
		return nil, errclass.AgentNotFound(agentName)
	}
	return data.LoadAgentState, nil
}

func (c *RuntimeClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

var _ Client = (*RuntimeClient)(nil)
var _ Client = (*AgentClient)(nil)
