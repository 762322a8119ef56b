package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeDeadline = 10 * time.Second
	// A monitor connection with no inbound ping for this long is dead.
	readDeadline = 5 * time.Minute
)

// WriteTyped sends a typed response payload with a write deadline, so a
// stalled client cannot block the relay loop.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	return conn.WriteJSON(v)
}

// ReadJSON reads and decodes one inbound message with a read deadline.
func ReadJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(readDeadline))
	return conn.ReadJSON(v)
}
