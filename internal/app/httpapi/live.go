package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/R3E-Network/payee_manager/internal/app/manager/views"
	svcerrors "github.com/R3E-Network/payee_manager/internal/errors"
	"github.com/R3E-Network/payee_manager/internal/httputil"
)

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = (livePongWait * 9) / 10
)

// liveMessage is pushed to /live subscribers. Type is "state" or "error".
type liveMessage struct {
	Type  string                  `json:"type"`
	State *views.BrowseModel      `json:"state,omitempty"`
	Error *httputil.ErrorResponse `json:"error,omitempty"`
}

// liveCommand is sent by subscribers. The only command is {"type":"sort"}.
type liveCommand struct {
	Type  string `json:"type"`
	Field string `json:"field"`
}

// liveFeed queues outgoing messages. Consecutive state messages collapse to
// the newest so a slow client never blocks a dispatch.
type liveFeed struct {
	mu      sync.Mutex
	pending []liveMessage
	signal  chan struct{}
}

func newLiveFeed() *liveFeed {
	return &liveFeed{signal: make(chan struct{}, 1)}
}

func (f *liveFeed) push(msg liveMessage) {
	f.mu.Lock()
	if n := len(f.pending); n > 0 && msg.Type == "state" && f.pending[n-1].Type == "state" {
		f.pending[n-1] = msg
	} else {
		f.pending = append(f.pending, msg)
	}
	f.mu.Unlock()

	select {
	case f.signal <- struct{}{}:
	default:
	}
}

func (f *liveFeed) drain() []liveMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.pending
	f.pending = nil
	return out
}

func stateMessage(m views.BrowseModel) liveMessage {
	return liveMessage{Type: "state", State: &m}
}

func errorMessage(err error) liveMessage {
	svcErr := svcerrors.GetServiceError(err)
	if svcErr == nil {
		svcErr = svcerrors.Internal("internal error", err)
	}
	return liveMessage{Type: "error", Error: &httputil.ErrorResponse{
		Code:    string(svcErr.Code),
		Message: svcErr.Message,
		Details: svcErr.Details,
	}}
}

func closeLive(conn *websocket.Conn) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
		time.Now().Add(liveWriteWait))
}

// live streams browse models to a websocket client after every dispatch and
// accepts sort commands from it. The connection closes when the session is
// unmounted.
func (h *handler) live(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).WithField("session_id", sess.ID).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	view := views.NewBrowseView(sess.Store)
	feed := newLiveFeed()
	feed.push(stateMessage(view.Render()))
	stop := view.Watch(func(m views.BrowseModel) { feed.push(stateMessage(m)) })
	defer stop()

	log := h.log.WithField("session_id", sess.ID)
	log.Debug("live subscriber attached")

	_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var cmd liveCommand
			if err := conn.ReadJSON(&cmd); err != nil {
				return
			}
			switch cmd.Type {
			case "sort":
				if _, err := view.Sort(cmd.Field); err != nil {
					feed.push(errorMessage(err))
				}
			default:
				feed.push(errorMessage(svcerrors.InvalidInput("unknown command").WithDetails("type", cmd.Type)))
			}
		}
	}()

	ticker := time.NewTicker(livePingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			log.Debug("live subscriber detached")
			return
		case <-sess.Store.Done():
			log.Debug("session closed, detaching live subscriber")
			closeLive(conn)
			return
		case <-ticker.C:
			if _, err := h.app.Sessions.Get(sess.ID); err != nil {
				closeLive(conn)
				return
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait)); err != nil {
				return
			}
		case <-feed.signal:
			for _, msg := range feed.drain() {
				_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
				if err := conn.WriteJSON(msg); err != nil {
					log.WithError(err).Debug("live write failed")
					return
				}
			}
		}
	}
}
