// internal/handlers/game_server.go
package handlers

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Sumit112234/sixteen-parchi/internal/persistence"
	"github.com/Sumit112234/sixteen-parchi/internal/room"
	"github.com/Sumit112234/sixteen-parchi/internal/session"
)

// GameServer owns the two process-wide registries (rooms and
// connections) and the persistence gateway. All mutation of either
// registry happens inside dispatcher handlers.
type GameServer struct {
	Rooms    *room.Store
	Sessions *session.Registry
	Gateway  persistence.Gateway
	Logger   *logrus.Logger
}

func NewGameServer(gw persistence.Gateway, logger *logrus.Logger) *GameServer {
	if logger == nil {
		logger = logrus.New()
	}
	return &GameServer{
		Rooms:    room.NewStore(),
		Sessions: session.NewRegistry(),
		Gateway:  gw,
		Logger:   logger,
	}
}

// wireRoom attaches the transport and persistence callbacks to a new
// room. The room computes its own recipient set; delivery goes through
// the session registry so the engine never touches a socket.
func (s *GameServer) wireRoom(r *room.Room) {
	r.BroadcastFn = func(ids []uuid.UUID, ev room.Event) {
		s.Sessions.SendToAll(ids, ev)
	}
	r.BroadcastToPlayerFn = func(id uuid.UUID, ev room.Event) {
		s.Sessions.SendTo(id, ev)
	}
	r.OnRoundWon = func(res room.RoundResult) {
		persistence.SaveRoundAsync(s.Gateway, s.Logger, res)
	}
}

// broadcastRoomList pushes the current room directory to every
// connection. Sent whenever the directory-visible state changes.
func (s *GameServer) broadcastRoomList() {
	s.Sessions.Broadcast(room.Event{
		Type:  room.EventRoomList,
		Rooms: s.Rooms.Snapshots(),
	})
}
