package httphandler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum size of the conversion request frame.
	maxMessageSize = maxBodyBytes
)

// wsStreamSink sends conversion fragments as JSON chunk frames. Only the
// relay goroutine writes data frames.
type wsStreamSink struct {
	conn *websocket.Conn
}

func (s *wsStreamSink) Begin() error { return nil }

func (s *wsStreamSink) Send(fragment string) error {
	return s.write(StreamMessage{Type: "chunk", Data: fragment})
}

func (s *wsStreamSink) write(msg StreamMessage) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(msg)
}

func (h *Handler) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
}

// checkOrigin accepts non-browser clients, same-host pages, and the
// configured allowed origin.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if h.allowedOrigin != "" && origin == h.allowedOrigin {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

// Stream runs a conversion over a WebSocket. The client sends one request
// frame and receives chunk frames followed by a done or error frame. Closing
// the socket cancels the upstream conversion.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader().Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response.
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))

	sink := &wsStreamSink{conn: conn}

	var req ConvertRequest
	if err := conn.ReadJSON(&req); err != nil {
		if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			_ = sink.write(StreamMessage{Type: "error", Status: http.StatusBadRequest, Message: "invalid request frame"})
		}
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	readerDone := make(chan struct{})
	go h.readUntilClosed(conn, cancel, readerDone)
	go pingUntilDone(ctx, conn)

	user, _ := userFromContext(r.Context())
	res, err := h.converter.Convert(ctx, req.toModel(), sink)

	switch {
	case err == nil:
		_ = sink.write(StreamMessage{Type: "done"})
		h.logger.Info("websocket conversion completed", "user_id", user.ID, "fragments", res.Fragments)
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		h.logger.Info("websocket conversion canceled by client", "user_id", user.ID)
	case res.Started:
		h.logger.Error("websocket conversion interrupted", "user_id", user.ID, "error", err)
		_ = sink.write(StreamMessage{Type: "error", Message: "conversion interrupted"})
	default:
		status, msg := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("websocket conversion failed", "user_id", user.ID, "error", err)
		}
		_ = sink.write(StreamMessage{Type: "error", Status: status, Message: msg})
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))

	cancel()
	_ = conn.Close()
	<-readerDone
}

// readUntilClosed drains client frames and cancels the conversion when the
// peer closes the socket or stops answering pings.
func (h *Handler) readUntilClosed(conn *websocket.Conn, cancel context.CancelFunc, done chan<- struct{}) {
	defer close(done)
	defer cancel()

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("websocket read ended", "error", err)
			}
			return
		}
	}
}

func pingUntilDone(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
