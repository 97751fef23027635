package export

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"MySketchBoard/internal/match"
	"MySketchBoard/internal/state"
)

// LiveSearch keeps a websocket open to /ws/search and ranks the drawing
// after every stroke.
type LiveSearch struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// DialLiveSearch connects to the live search of the server at endpoint.
func DialLiveSearch(ctx context.Context, endpoint string) (*LiveSearch, error) {
	u, err := url.Parse(strings.TrimSuffix(endpoint, "/") + "/ws/search")
	if err != nil {
		return nil, fmt.Errorf("export: bad endpoint %q: %w", endpoint, err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("export: dial %s: %w", u, err)
	}
	return &LiveSearch{conn: conn}, nil
}

// Rank sends the strokes and waits for the ranked reply. Cancelling ctx
// or reaching its deadline aborts the exchange; the session is unusable
// afterwards.
func (l *LiveSearch) Rank(ctx context.Context, pairs []state.EndpointPair, k int) ([]match.Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	deadline, _ := ctx.Deadline()
	_ = l.conn.SetWriteDeadline(deadline)
	_ = l.conn.SetReadDeadline(deadline)
	stop := context.AfterFunc(ctx, func() {
		_ = l.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	if err := l.conn.WriteJSON(match.Request{Strokes: pairs, K: k}); err != nil {
		return nil, fmt.Errorf("export: send live search: %w", err)
	}
	var resp match.Response
	if err := l.conn.ReadJSON(&resp); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return nil, fmt.Errorf("export: read live search: %w", err)
	}
	return resp.Results, nil
}

// Close ends the session. It does not wait for a Rank in flight: closing
// the connection makes the pending read fail.
func (l *LiveSearch) Close() error {
	_ = l.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return l.conn.Close()
}
