package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope carries the client action. The monitor stream is
// server-push; ping is the only inbound action.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventActivity Event = "activity"
	EventPong     Event = "pong"
)

// ActivityResponse relays one monitor event from the exam's activity channel.
// Payload is the raw published JSON, forwarded untouched.
type ActivityResponse struct {
	Event   Event  `json:"event"`
	Payload string `json:"payload"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
