package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"connect/internal/pkg/errs"
	"connect/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a command sent by the client.
	maxMessageSize = 8192

	// sendQueueSize bounds the events waiting to be written.
	sendQueueSize = 64
)

var (
	errClientClosed = errors.New("client closed")
	errQueueFull    = errors.New("client send queue full")
)

// Client is the WebSocket side of a workspace. It implements Sink.
type Client struct {
	// underlying WebSocket connection object.
	conn *websocket.Conn

	// a buffered channel used to queue events waiting to be sent to the client.
	send chan []byte

	// done is closed when the connection should shut down.
	done      chan struct{}
	closeOnce sync.Once

	logger zerolog.Logger
}

// NewClient wraps an upgraded connection.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
		logger: logx.Component("WSClient").With().Str("remote_addr", conn.RemoteAddr().String()).Logger(),
	}
}

// Send implements Sink. Events are dropped when the queue is full.
func (c *Client) Send(evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		c.logger.Error().Err(err).Str("event", string(evt.Type)).Msg("Error marshaling event")
		return err
	}

	select {
	case <-c.done:
		return errClientClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Str("event", string(evt.Type)).Msg("Client send channel full, dropping event")
		return errQueueFull
	}
}

// Close implements Sink. Queued events are flushed before the close frame is written.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// ReadPump reads commands until the connection fails or is closed, passing each to handle.
// It handles heartbeats (Pong) and closes the client on exit.
func (c *Client) ReadPump(handle func(Command)) {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
			cerr := errs.NewError(errs.ErrInvalidJSONFormat)
			_ = c.Send(Event{Type: EvtError, Payload: ErrorPayload{Code: cerr.Code, Message: cerr.Message}})
			continue
		}

		handle(cmd)
	}
}

// WritePump writes queued events and periodic pings until the client is closed.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case data := <-c.send:
			if !c.write(websocket.TextMessage, data) {
				return
			}

		case <-ticker.C:
			if !c.write(websocket.PingMessage, nil) {
				return
			}

		case <-c.done:
			c.flush()
			c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "workspace closed"))
			return
		}
	}
}

// flush writes whatever is still queued.
func (c *Client) flush() {
	for {
		select {
		case data := <-c.send:
			if !c.write(websocket.TextMessage, data) {
				return
			}
		default:
			return
		}
	}
}

// write sends one frame. It returns false when the WritePump loop should terminate.
func (c *Client) write(messageType int, data []byte) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if err := c.conn.WriteMessage(messageType, data); err != nil {
		c.logger.Debug().Err(err).Int("message_type", messageType).Msg("Error writing message")
		return false
	}
	return true
}

// Serve runs a workspace over an upgraded connection until either side closes it.
func Serve(ctx context.Context, conn *websocket.Conn, deps Deps, token string) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client := NewClient(conn)
	go client.WritePump()

	ws := New(deps, client)
	defer ws.Close()

	if cerr := ws.Start(ctx, token); cerr != nil {
		_ = client.Send(Event{Type: EvtSessionEnded, Payload: SessionEndedPayload{Message: cerr.Message}})
		client.Close()
		return
	}

	client.ReadPump(func(cmd Command) {
		ws.Handle(ctx, cmd)
	})
}
