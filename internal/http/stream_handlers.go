package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"roadside-service/internal/tracking"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = pongWait * 9 / 10
	maxClientMessage = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// trackLive streams tracking updates of one request over a websocket.
func (h *Handler) trackLive(c *gin.Context) {
	code := c.Param("code")
	// unknown codes get a plain 404 instead of an upgraded connection
	if _, err := h.requests.GetByTrackingCode(c.Request.Context(), code); err != nil {
		h.handleError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := watchPeer(c.Request.Context(), conn)
	defer cancel()

	err = h.tracking.Follow(ctx, code, func(update tracking.Update) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(update)
	})
	h.closeStream(conn, err)
}

// streamChanges relays change events of ?table= the caller may see.
func (h *Handler) streamChanges(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	sub, err := h.changeFeed.Subscribe(c.Request.Context(), principal, c.Query("table"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	defer sub.Unsubscribe()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := watchPeer(c.Request.Context(), conn)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			h.closeStream(conn, ctx.Err())
			return
		case event, ok := <-sub.Events():
			if !ok {
				h.closeStream(conn, nil)
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				h.closeStream(conn, err)
				return
			}
		}
	}
}

// watchPeer keeps conn alive with pings and returns a context that ends once
// the peer disconnects or stops answering.
func watchPeer(parent context.Context, conn *websocket.Conn) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	conn.SetReadLimit(maxClientMessage)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	return ctx, cancel
}

func (h *Handler) closeStream(conn *websocket.Conn, err error) {
	code, reason := websocket.CloseNormalClosure, ""
	if err != nil && !errors.Is(err, context.Canceled) {
		if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
			h.log.Warn().Err(err).Msg("stream ended")
		}
		code, reason = websocket.CloseInternalServerErr, "stream ended"
	}
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
}
