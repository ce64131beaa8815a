package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/adapters/surface"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/usecases"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/pkg/geospatial"
)

// wsAction is a message from the client renderer to its map session.
type wsAction struct {
	Action   string            `json:"action"` // ready | viewport | search | click | close_popup | set_view | toggle_view | refresh
	Camera   geospatial.Camera `json:"camera,omitempty"`
	Viewport domain.Viewport   `json:"viewport,omitempty"`
	Query    string            `json:"query,omitempty"`
	Key      *domain.EntityKey `json:"key,omitempty"`
	Mode     domain.ViewMode   `json:"mode,omitempty"`
}

// wsTransport serializes render commands onto one WebSocket connection.
type wsTransport struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (t *wsTransport) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *wsTransport) ping() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.WriteMessage(websocket.PingMessage, nil)
}

// MapSessionHandler returns a handler that hosts one map session per
// connected client. The server owns all map state; the client renders the
// commands it receives and reports camera moves and marker clicks back.
func MapSessionHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("map client connected", "remote", remoteAddr)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		transport := &wsTransport{conn: c}
		surf := surface.New(transport)
		session := usecases.NewMapSession(deps.Store, surf, deps.Camera, nil)
		defer session.Teardown()

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := transport.ping(); err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var a wsAction
			if err := json.Unmarshal(msg, &a); err != nil {
				_ = transport.Send(map[string]string{"error": "invalid JSON"})
				continue
			}

			switch a.Action {
			case "ready":
				surf.HandleReady(a.Camera, a.Viewport)
				session.HandleSurfaceReady()

			case "viewport":
				surf.HandleViewport(a.Camera, a.Viewport)

			case "search":
				session.ApplyFilter(a.Query)

			case "click":
				if a.Key == nil {
					_ = transport.Send(map[string]string{"error": "click requires a key"})
					continue
				}
				session.HandleMarkerClick(*a.Key)

			case "close_popup":
				session.ClosePopup()

			case "set_view":
				if a.Mode != domain.ViewMode2D && a.Mode != domain.ViewMode3D {
					_ = transport.Send(map[string]string{"error": "mode must be 2d or 3d"})
					continue
				}
				session.SetViewMode(a.Mode)

			case "toggle_view":
				session.ToggleViewMode()

			case "refresh":
				// A failed fetch keeps the previous snapshot visible.
				if err := deps.Store.Refresh(ctx); err != nil {
					_ = transport.Send(map[string]string{"error": err.Error()})
				}

			default:
				_ = transport.Send(map[string]string{"error": "unknown action: " + a.Action})
			}
		}

		slog.Info("map client disconnected", "remote", remoteAddr)
	}
}
