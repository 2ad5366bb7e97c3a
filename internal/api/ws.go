package api

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/postureperfect/avatar-server/domain/entities"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Same policy as the CORS middleware on the REST routes.
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Streaming frame types sent to the client.
const (
	frameSegment = "segment"
	frameDone    = "done"
	frameError   = "error"
)

// StreamFrame is one websocket message from server to client.
type StreamFrame struct {
	Type     string                   `json:"type"`
	Segment  *entities.MessageSegment `json:"segment,omitempty"`
	Segments int                      `json:"segments,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

// chatWebSocket streams segments progressively instead of buffering the
// whole response like POST /chat does. A frontend can start the avatar
// talking as soon as the first chunk resolves. Segment order matches chunk
// order; a pipeline failure ends the exchange with an error frame, so a
// client that needs atomicity should discard segments unless a done frame
// arrives.
func chatWebSocket(c echo.Context, pipeline ChatPipeline, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}
	defer conn.Close()

	ctx := c.Request().Context()

	for {
		var req ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("WebSocket read failed", zap.Error(err))
			}
			return nil
		}

		count := 0
		err := pipeline.ChatStream(ctx, req.Message, func(segment entities.MessageSegment) error {
			count++
			return conn.WriteJSON(StreamFrame{Type: frameSegment, Segment: &segment})
		})
		if err != nil {
			logger.Error("Chat stream failed", zap.Error(err))
			if writeErr := conn.WriteJSON(StreamFrame{Type: frameError, Error: "Internal Server Error"}); writeErr != nil {
				return nil
			}
			continue
		}

		if err := conn.WriteJSON(StreamFrame{Type: frameDone, Segments: count}); err != nil {
			return nil
		}
	}
}
