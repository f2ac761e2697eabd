package client

import (
	"github.com/drewfead/copilot/internal/config"
	"github.com/drewfead/copilot/internal/errclass"
	"github.com/drewfead/copilot/internal/eventlog"
)

// DefaultEndpoint is the endpoint-map key that serves agents without an
// entry of their own.
const DefaultEndpoint = "default"

// Manager owns the session's clients and routes agent names to them. It is
// constructed once per configuration; reconfiguring means constructing a
// new Manager.
type Manager struct {
	runtime Client            // set in runtime mode
	agents  map[string]Client // set in direct-agent mode
	noop    bool

	reporter *errclass.Reporter
}

// New validates opts and constructs the Manager. Each invalid option
// combination is a distinct configuration error raised synchronously;
// nothing touches the network here.
func New(opts *config.Options, rec *eventlog.Recorder) (*Manager, error) {
	if err := validate(opts); err != nil {
		return nil, err
	}

	reporter := errclass.NewReporter(opts.OnError, opts.OnWarning, opts.ShowDevConsole)
	m := &Manager{reporter: reporter}

	switch {
	case !opts.IsEnabled():
		m.noop = true

	case opts.RuntimeURL != "":
		m.runtime = newRuntimeClient(opts, reporter)

	case opts.AgentEndpoints != nil:
		m.agents = make(map[string]Client, len(opts.AgentEndpoints))
		for name, url := range opts.AgentEndpoints {
			m.agents[name] = newAgentClient(name, url, opts, reporter, rec)
		}

	case opts.AgentURL != "":
		m.agents = map[string]Client{
			DefaultEndpoint: newAgentClient("", opts.AgentURL, opts, reporter, rec),
		}

	default:
		return nil, errclass.Configuration("no runtime or agent endpoint configured")
	}

	return m, nil
}

func validate(opts *config.Options) error {
	hasDirect := opts.AgentURL != "" || opts.AgentEndpoints != nil

	if opts.RuntimeURL != "" && hasDirect {
		return errclass.Configuration("runtime_url and agent endpoints are mutually exclusive")
	}
	if opts.AgentEndpoints != nil && len(opts.AgentEndpoints) == 0 {
		return errclass.Configuration("agent_endpoints must name at least one agent")
	}
	if opts.AgentURL != "" && opts.AgentEndpoints != nil {
		return errclass.Configuration("agent_url and agent_endpoints are mutually exclusive")
	}
	if opts.PublicAPIKey != "" && opts.RuntimeURL == "" {
		return errclass.Configuration("public_api_key requires a runtime_url; direct agent endpoints do not accept one")
	}
	return nil
}

// Resolve returns the client serving the named agent. An empty name, or a
// name with no entry of its own, falls back to the "default" endpoint. A
// nil result means no client is available for that agent; it is not an
// error and callers must handle it explicitly.
func (m *Manager) Resolve(agentName string) Client {
	if m.noop {
		return noopClient{}
	}
	if m.runtime != nil {
		return m.runtime
	}
	if c, ok := m.agents[agentName]; ok && agentName != "" {
		return c
	}
	if c, ok := m.agents[DefaultEndpoint]; ok {
		return c
	}
	return nil
}

// Reporter exposes the session's error funnel so embedding code can route
// its own failures through the same deduplication.
func (m *Manager) Reporter() *errclass.Reporter {
	return m.reporter
}

// Close closes every constructed client.
func (m *Manager) Close() error {
	var firstErr error
	if m.runtime != nil {
		firstErr = m.runtime.Close()
	}
	for _, c := range m.agents {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
