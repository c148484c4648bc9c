package ws

import (
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/tunequiz/tunequiz/internal/model"
	"github.com/tunequiz/tunequiz/internal/protocol"
	"github.com/tunequiz/tunequiz/internal/services/session"
)

const sendBufferSize = 32

// Client is one websocket connection to a session
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan protocol.Message
	playerID model.PlayerID
	logger   *slog.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan protocol.Message, sendBufferSize),
		logger: logger,
	}
}

// readPump reads client messages and hands them to the session until the
// connection drops. A dropped connection marks the player disconnected;
// their score is kept for a rejoin.
func (c *Client) readPump(orch *session.Orchestrator) {
	defer func() {
		c.hub.unregister(c)
		if c.playerID != "" {
			if err := orch.HandleLeave(c.playerID); err != nil {
				c.logger.Warn("leave failed",
					slog.String("player_id", string(c.playerID)),
					slog.String("error", err.Error()),
				)
			}
		}
	}()

	for {
		var msg protocol.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		c.dispatch(orch, msg)
	}
}

// writePump drains the send channel onto the connection.
// It exits when the hub closes the channel.
func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (c *Client) dispatch(orch *session.Orchestrator, msg protocol.Message) {
	var err error

	switch msg.Type {
	case protocol.TypeJoin:
		var payload protocol.JoinPayload
		if err = msg.DecodePayload(&payload); err != nil {
			break
		}
		var id model.PlayerID
		if id, err = orch.HandleJoin(payload.Name); err == nil {
			c.hub.Bind(c, id)
		}

	case protocol.TypeRejoin:
		var payload protocol.RejoinPayload
		if err = msg.DecodePayload(&payload); err != nil {
			break
		}
		if err = orch.HandleRejoin(payload.PlayerID); err == nil {
			c.hub.Bind(c, payload.PlayerID)
		}

	case protocol.TypeLeave:
		if c.playerID != "" {
			err = orch.HandleLeave(c.playerID)
		}

	case protocol.TypeSubmit:
		if c.playerID == "" {
			err = model.ErrUnknownPlayer
			break
		}
		var payload protocol.SubmitPayload
		if err = msg.DecodePayload(&payload); err != nil {
			break
		}
		err = orch.HandleSubmit(c.playerID, payload.Field, payload.Text)

	case protocol.TypeAdvance:
		if c.playerID == "" {
			err = model.ErrUnknownPlayer
			break
		}
		err = orch.Advance()

	case protocol.TypeRepeat:
		if c.playerID == "" {
			err = model.ErrUnknownPlayer
			break
		}
		err = orch.HandleRepeat()

	default:
		c.reply(protocol.MustNew(protocol.TypeError, protocol.ErrorPayload{
			Code:    protocol.CodeBadMessage,
			Message: "unknown message type: " + string(msg.Type),
		}))
		return
	}

	if err != nil {
		c.reply(protocol.ErrorMessage(err))
	}
}

// reply queues a message for this client only
func (c *Client) reply(msg protocol.Message) {
	c.hub.sendClient(c, msg)
}
