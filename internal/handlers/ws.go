// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Sumit112234/sixteen-parchi/internal/auth"
	"github.com/Sumit112234/sixteen-parchi/internal/middleware"
	"github.com/Sumit112234/sixteen-parchi/internal/session"
)

// WSHandler upgrades /ws connections and runs them until disconnect.
// A valid auth_token cookie links the connection to an account; guests
// connect without one.
func WSHandler(logger *logrus.Logger, s *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remoteAddr := r.RemoteAddr

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"parchi"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "parchi" {
			c.Close(BadSubprotocolError, "client must speak the parchi subprotocol")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		conn := session.NewConn(cancel)

		// Optional account link from the session cookie.
		if token := extractCookieToken(r.Header.Get("Cookie"), "auth_token"); token != "" {
			sub, err := auth.AuthenticateJWT(token)
			if err != nil {
				logger.Warnf("rejecting stale auth token from %s: %v", remoteAddr, err)
				c.Close(InvalidAuthTokenError, "invalid auth token")
				cancel()
				return
			}
			if accountID, err := uuid.Parse(sub); err == nil {
				conn.AccountID = accountID
			}
		}

		s.Sessions.Add(conn)
		middleware.LogWebSocketConnect(logger, remoteAddr, r.URL.Path)

		go writePump(ctx, c, conn, logger)
		readPump(ctx, c, conn, s, logger)

		s.Disconnect(conn)
		cancel()
		middleware.LogWebSocketDisconnect(logger, remoteAddr, r.URL.Path, nil)
	}
}

// readPump decodes incoming frames and hands them to the dispatcher.
// Blocks until the connection dies.
func readPump(ctx context.Context, c *websocket.Conn, conn *session.Conn, s *GameServer, logger *logrus.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		typ, msg, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				logger.Infof("connection %v closed normally", conn.ID)
			} else if !strings.Contains(err.Error(), "context canceled") {
				logger.Warnf("connection %v read error: %v (CloseStatus: %d)", conn.ID, err, closeStatus)
			}
			return
		}

		if typ != websocket.MessageText {
			logger.Warnf("connection %v sent non-text message type %d, ignoring", conn.ID, typ)
			continue
		}

		s.HandleMessage(ctx, conn, msg)
	}
}

// writePump drains the connection's out channel onto the socket and
// pings periodically so dead peers get detected.
func writePump(ctx context.Context, c *websocket.Conn, conn *session.Conn, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-conn.Out:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Warnf("connection %v: failed to marshal %s event: %v", conn.ID, ev.Type, err)
				continue
			}

			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("connection %v write error: %v", conn.ID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("connection %v ping failed, assuming disconnect: %v", conn.ID, err)
				return
			}
		}
	}
}
