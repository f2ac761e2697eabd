package client

// ClientVersion is the protocol version this client was built against. It
// is sent on every request and compared with the version the backend
// reports; a mismatch is a warning, never a failure.
const ClientVersion = "1.50.1"

const (
	headerClientVersion  = "X-Copilot-Client-Version"
	headerRuntimeVersion = "X-Copilot-Runtime-Version"
)
