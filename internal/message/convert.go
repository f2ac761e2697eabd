package message

import (
	"github.com/google/uuid"

	"github.com/drewfead/copilot/pkg/agui"
)

// ToWire converts internal messages to the agent wire format.
//
// Agent state and image messages degrade to empty assistant messages: the
// wire model has no slot for their payloads, and callers needing full
// fidelity must carry them through forwarded properties instead. The
// actions slice resolves action names for results whose invocation is not
// part of the same slice.
func ToWire(messages []*Message, actions []Action) []agui.Message {
	// Action execution ids seen so far, for naming tool results.
	actionNames := make(map[string]string)
	known := make(map[string]bool, len(actions))
	for _, a := range actions {
		known[a.Name] = true
	}

	wire := make([]agui.Message, 0, len(messages))
	for _, m := range messages {
		switch m.Kind {
		case KindText:
			wire = append(wire, agui.Message{
				ID:      m.ID,
				Role:    wireRole(m.Role),
				Content: m.Text,
			})

		case KindActionExecution:
			actionNames[m.ID] = m.Action.Name
			wire = append(wire, agui.Message{
				ID:   m.ID,
				Role: agui.RoleAssistant,
				ToolCalls: []agui.ToolCall{{
					// A fresh id, never the envelope's own: the envelope id
					// and the tool-call id live in different namespaces and
					// must not collide.
					ID:   uuid.NewString(),
					Type: "function",
					Function: agui.Function{
						Name:      m.Action.Name,
						Arguments: m.Action.Arguments,
					},
				}},
			})

		case KindResult:
			name := m.Result.ActionName
			if name == "" {
				name = actionNames[m.Result.ActionExecutionID]
			}
			if name != "" && len(known) > 0 && !known[name] {
				// Result for an action the caller no longer offers; still
				// forwarded, the agent decides what to do with it.
				name = ""
			}
			wire = append(wire, agui.Message{
				ID:         m.ID,
				Role:       agui.RoleTool,
				Content:    m.Result.Value,
				ToolCallID: m.Result.ActionExecutionID,
				Name:       name,
			})

		case KindAgentState, KindImage:
			wire = append(wire, agui.Message{
				ID:   m.ID,
				Role: agui.RoleAssistant,
			})
		}
	}
	return wire
}

// FromWire reconstructs internal messages from wire messages.
//
// Assistant messages carrying tool calls yield one ActionExecution per
// call (id = tool-call id, name and raw arguments preserved) plus a
// separate text message when content is also present. Tool-role messages
// yield results keyed by their tool-call id. Everything else becomes text.
func FromWire(wire []agui.Message) []*Message {
	out := make([]*Message, 0, len(wire))
	for _, w := range wire {
		if w.Role == agui.RoleTool {
			out = append(out, &Message{
				ID:   idOrNew(w.ID),
				Kind: KindResult,
				Result: &ActionDone{
					ActionExecutionID: w.ToolCallID,
					ActionName:        w.Name,
					Value:             w.Content,
				},
			})
			continue
		}

		if w.Content != "" || len(w.ToolCalls) == 0 {
			out = append(out, &Message{
				ID:   idOrNew(w.ID),
				Kind: KindText,
				Role: internalRole(w.Role),
				Text: w.Content,
			})
		}

		for _, tc := range w.ToolCalls {
			out = append(out, &Message{
				ID:   idOrNew(tc.ID),
				Kind: KindActionExecution,
				Action: &ActionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
	}
	return out
}

// ToolsFromActions converts action definitions to wire tool descriptors.
func ToolsFromActions(actions []Action) []agui.Tool {
	tools := make([]agui.Tool, 0, len(actions))
	for _, a := range actions {
		tools = append(tools, agui.Tool{
			Type: "function",
			Function: agui.ToolDefined{
				Name:        a.Name,
				Description: a.Description,
				Parameters:  objectSchemaFrom(a.Parameters),
			},
		})
	}
	return tools
}

func objectSchemaFrom(params []Parameter) agui.ParameterSchema {
	schema := agui.ParameterSchema{
		Type:       "object",
		Properties: make(map[string]agui.Property, len(params)),
	}
	for _, p := range params {
		typ := p.Type
		if typ == "" {
			typ = "string"
		}
		schema.Properties[p.Name] = agui.Property{
			Type:        typ,
			Description: p.Description,
		}
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	return schema
}

func wireRole(r Role) string {
	switch r {
	case RoleUser:
		return agui.RoleUser
	case RoleAssistant:
		return agui.RoleAssistant
	case RoleSystem:
		return agui.RoleSystem
	case RoleDeveloper:
		return agui.RoleDeveloper
	default:
		return agui.RoleUser
	}
}

func internalRole(r string) Role {
	switch r {
	case agui.RoleAssistant:
		return RoleAssistant
	case agui.RoleSystem:
		return RoleSystem
	case agui.RoleDeveloper:
		return RoleDeveloper
	default:
		return RoleUser
	}
}

func idOrNew(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}
