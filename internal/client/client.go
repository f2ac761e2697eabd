// Package client selects and drives a copilot backend: either a GraphQL
// runtime server or one or more direct ag_ui agent servers, behind a single
// capability interface.
package client

import (
	"context"
	"net/http"
	"net/http/cookiejar"

	"github.com/drewfead/copilot/internal/response"
)

// Client is the uniform capability interface over both backend modes.
// Configuration is immutable once a client is constructed; changing it
// means constructing a new client.
type Client interface {
	// GenerateResponse runs one generate invocation to completion and
	// returns the collected output records.
	GenerateResponse(ctx context.Context, req *GenerateRequest) ([]response.Output, error)

	// AsStream runs one generate invocation and returns the incremental
	// stream. The caller consumes it via Outputs or Subscribe and may
	// cancel it at any point.
	AsStream(ctx context.Context, req *GenerateRequest) (*response.Stream, error)

	// AvailableAgents lists the agents the backend can route to.
	AvailableAgents(ctx context.Context) ([]Agent, error)

	// LoadAgentState fetches the persisted state for a thread.
	LoadAgentState(ctx context.Context, agentName, threadID string) (*AgentState, error)

	Close() error
}

// newHTTPClient builds the transport for one backend. The credentials mode
// mirrors fetch semantics: "omit" disables cookie handling; any other mode
// keeps a per-client jar so session cookies issued by the backend ride
// along on subsequent requests.
func newHTTPClient(credentials string) *http.Client {
	c := &http.Client{}
	if credentials != "omit" {
		jar, _ := cookiejar.New(nil)
		c.Jar = jar
	}
	return c
}

// noopClient is returned when the client is explicitly disabled. Every
// operation resolves empty without touching the network.
type noopClient struct{}

func (noopClient) GenerateResponse(context.Context, *GenerateRequest) ([]response.Output, error) {
	return nil, nil
}

func (noopClient) AsStream(context.Context, *GenerateRequest) (*response.Stream, error) {
	s := response.NewStream(nil)
	s.Complete()
	return s, nil
}

func (noopClient) AvailableAgents(context.Context) ([]Agent, error) {
	return nil, nil
}

func (noopClient) LoadAgentState(context.Context, string, string) (*AgentState, error) {
	return nil, nil
}

func (noopClient) Close() error {
	return nil
}
