// internal/handlers/dispatch.go
package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Sumit112234/sixteen-parchi/internal/ai"
	"github.com/Sumit112234/sixteen-parchi/internal/models"
	"github.com/Sumit112234/sixteen-parchi/internal/room"
	"github.com/Sumit112234/sixteen-parchi/internal/session"
)

const gatewayTimeout = 5 * time.Second

// HandleMessage dispatches one client message. It runs on the
// connection's read loop, so messages from a single connection are
// processed in arrival order.
func (s *GameServer) HandleMessage(ctx context.Context, conn *session.Conn, data []byte) {
	var env clientEnvelope
	if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
		s.sendError(conn, "invalid message")
		return
	}

	switch env.Type {
	case "ping":
		conn.Send(room.Event{Type: room.EventPong})
		return
	case "announceIdentity":
		s.handleAnnounceIdentity(conn, data)
		return
	}

	// Everything else needs an announced identity. Messages from
	// connections we do not know are stale or hostile; drop them.
	if conn.Player == nil {
		return
	}

	switch env.Type {
	case "createRoom":
		s.handleCreateRoom(conn, data)
	case "joinRoom":
		s.handleJoinRoom(ctx, conn, data)
	case "leaveRoom":
		s.leaveCurrentRoom(conn)
	case "startGame":
		s.handleRoomAction(conn, data, true, func(r *room.Room) error {
			return r.Start(conn.Player.ID)
		})
	case "passCard":
		var p passCardPayload
		if err := json.Unmarshal(data, &p); err != nil {
			s.sendError(conn, "invalid passCard payload")
			return
		}
		if r, ok := s.currentRoom(conn, p.RoomID); ok {
			s.replyOnError(conn, r.PassCard(conn.Player.ID, p.CardIndex))
		}
	case "autoPassCard":
		s.handleRoomAction(conn, data, false, func(r *room.Room) error {
			return r.AutoPass(conn.Player.ID)
		})
	case "resetGame":
		s.handleRoomAction(conn, data, true, func(r *room.Room) error {
			return r.Reset(conn.Player.ID)
		})
	case "sendMessage":
		var p chatPayload
		if err := json.Unmarshal(data, &p); err != nil || p.Text == "" {
			return
		}
		if r, ok := s.currentRoom(conn, p.RoomID); ok {
			r.AppendChat(conn.Player.ID, p.Text)
		}
	case "addAIPlayer":
		var p addAIPayload
		if err := json.Unmarshal(data, &p); err != nil {
			s.sendError(conn, "invalid addAIPlayer payload")
			return
		}
		if r, ok := s.currentRoom(conn, p.RoomID); ok {
			_, err := r.AddAI(conn.Player.ID, ai.ParseDifficulty(p.Difficulty))
			if s.replyOnError(conn, err) {
				s.broadcastRoomList()
			}
		}
	case "removeAIPlayer":
		var p removeAIPayload
		if err := json.Unmarshal(data, &p); err != nil {
			s.sendError(conn, "invalid removeAIPlayer payload")
			return
		}
		aiID, err := uuid.Parse(p.AIID)
		if err != nil {
			return
		}
		if r, ok := s.currentRoom(conn, p.RoomID); ok {
			if s.replyOnError(conn, r.RemoveAI(conn.Player.ID, aiID)) {
				s.broadcastRoomList()
			}
		}
	case "updateCardDesign":
		var p designPayload
		if err := json.Unmarshal(data, &p); err != nil {
			s.sendError(conn, "invalid updateCardDesign payload")
			return
		}
		conn.Player.CardDesign = p.Design
		if r, ok := s.currentRoom(conn, p.RoomID); ok {
			r.UpdateCardDesign(conn.Player.ID, p.Design)
		}
	case "createPrivateRoom":
		s.handleCreatePrivateRoom(ctx, conn, data)
	case "joinPrivateRoom":
		s.handleJoinPrivateRoom(ctx, conn, data)
	default:
		s.sendError(conn, "unknown message type: "+env.Type)
	}
}

func (s *GameServer) handleAnnounceIdentity(conn *session.Conn, data []byte) {
	var p identityPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Name == "" {
		s.sendError(conn, "invalid announceIdentity payload")
		return
	}

	accountID := conn.AccountID
	if accountID == uuid.Nil && p.AccountID != "" {
		if parsed, err := uuid.Parse(p.AccountID); err == nil {
			accountID = parsed
		}
	}

	conn.Player = &models.Player{
		ID:         conn.ID,
		Name:       p.Name,
		AvatarID:   p.AvatarID,
		AccountID:  accountID,
		CardDesign: p.CardDesign,
	}

	conn.Send(room.Event{Type: room.EventPlayerInfo, Self: conn.Player})
	conn.Send(room.Event{Type: room.EventRoomList, Rooms: s.Rooms.Snapshots()})
}

func (s *GameServer) handleCreateRoom(conn *session.Conn, data []byte) {
	var p createRoomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Name == "" {
		s.sendError(conn, "invalid createRoom payload")
		return
	}

	s.leaveCurrentRoom(conn)

	r := room.New(p.Name, p.MaxPlayers, p.TurnDuration, conn.Player)
	s.wireRoom(r)
	s.Rooms.Add(r)
	conn.Player.RoomID = r.ID

	snap := r.Snapshot()
	conn.Send(room.Event{Type: room.EventJoinedRoom, Room: &snap, History: r.ChatLog()})
	s.broadcastRoomList()
}

func (s *GameServer) handleJoinRoom(ctx context.Context, conn *session.Conn, data []byte) {
	var p joinRoomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		s.sendError(conn, "invalid joinRoom payload")
		return
	}
	roomID, err := uuid.Parse(p.RoomID)
	if err != nil {
		return
	}
	r, ok := s.Rooms.Get(roomID)
	if !ok {
		return
	}

	// Already there: leaving first would delete a sole-occupant room
	// out from under the player, so just re-ack.
	if conn.Player.RoomID == roomID {
		snap := r.Snapshot()
		conn.Send(room.Event{Type: room.EventJoinedRoom, Room: &snap, History: r.ChatLog()})
		return
	}

	snap := r.Snapshot()
	if snap.Private && !conn.Validated[roomID] {
		s.sendError(conn, room.ErrInvalidCredential.Message)
		return
	}

	s.leaveCurrentRoom(conn)

	if p.AsSpectator {
		r.AddSpectator(conn.Player)
	} else if err := r.AddMember(conn.Player); err != nil {
		s.replyOnError(conn, err)
		return
	}
	conn.Player.RoomID = roomID

	snap = r.Snapshot()
	conn.Send(room.Event{Type: room.EventJoinedRoom, Room: &snap, History: r.ChatLog()})
	s.broadcastRoomList()
}

func (s *GameServer) handleCreatePrivateRoom(ctx context.Context, conn *session.Conn, data []byte) {
	var p secretPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Secret == "" {
		s.sendError(conn, "invalid createPrivateRoom payload")
		return
	}
	roomID, err := uuid.Parse(p.RoomID)
	if err != nil {
		return
	}
	r, ok := s.Rooms.Get(roomID)
	if !ok {
		return
	}
	if r.Snapshot().CreatorID != conn.Player.ID {
		s.replyOnError(conn, room.ErrNotRoomCreator)
		return
	}

	gwCtx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()
	if err := s.Gateway.StoreRoomCredential(gwCtx, roomID, p.Secret, conn.Player.AccountID); err != nil {
		s.Logger.Warnf("failed to store credential for room %s: %v", roomID, err)
		s.sendError(conn, "could not make room private")
		return
	}

	r.MarkPrivate(true)
	conn.Validated[roomID] = true
	conn.Send(room.Event{Type: room.EventPrivateRoomCreated, RoomID: roomID.String()})
	s.broadcastRoomList()
}

func (s *GameServer) handleJoinPrivateRoom(ctx context.Context, conn *session.Conn, data []byte) {
	var p secretPayload
	if err := json.Unmarshal(data, &p); err != nil {
		s.sendError(conn, "invalid joinPrivateRoom payload")
		return
	}
	roomID, err := uuid.Parse(p.RoomID)
	if err != nil {
		return
	}

	gwCtx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()
	ok, err := s.Gateway.ValidateRoomCredential(gwCtx, roomID, p.Secret)
	if err != nil {
		s.Logger.Warnf("failed to validate credential for room %s: %v", roomID, err)
		s.sendError(conn, "could not validate room password")
		return
	}
	if !ok {
		s.replyOnError(conn, room.ErrInvalidCredential)
		return
	}

	conn.Validated[roomID] = true
	conn.Send(room.Event{Type: room.EventPrivateRoomValidated, RoomID: roomID.String()})
}

// handleRoomAction covers the intents that carry only a roomId and map
// to a single room method. refreshList re-broadcasts the room
// directory on success, for actions that change what it shows.
func (s *GameServer) handleRoomAction(conn *session.Conn, data []byte, refreshList bool, fn func(*room.Room) error) {
	var p roomActionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		s.sendError(conn, "invalid payload")
		return
	}
	if r, ok := s.currentRoom(conn, p.RoomID); ok {
		if s.replyOnError(conn, fn(r)) && refreshList {
			s.broadcastRoomList()
		}
	}
}

// leaveCurrentRoom removes the player from whatever room they occupy,
// deleting the room if it emptied. Used for the leave intent, for
// room switches and for disconnects.
func (s *GameServer) leaveCurrentRoom(conn *session.Conn) {
	p := conn.Player
	if p == nil || p.RoomID == uuid.Nil {
		return
	}
	roomID := p.RoomID
	p.RoomID = uuid.Nil

	r, ok := s.Rooms.Get(roomID)
	if !ok {
		return
	}
	if empty := r.Remove(p.ID); empty {
		s.Rooms.Delete(roomID)
		if r.Snapshot().Private {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), gatewayTimeout)
				defer cancel()
				if err := s.Gateway.DeleteRoomCredential(ctx, roomID); err != nil {
					s.Logger.Warnf("failed to delete credential for room %s: %v", roomID, err)
				}
			}()
		}
	}
	conn.Send(room.Event{Type: room.EventLeftRoom, RoomID: roomID.String()})
	s.broadcastRoomList()
}

// Disconnect cleans up after a connection's read loop exits.
func (s *GameServer) Disconnect(conn *session.Conn) {
	s.leaveCurrentRoom(conn)
	s.Sessions.Remove(conn.ID)
}

// currentRoom resolves the room the payload names, requiring it to be
// the one the player is actually in. Mismatches are stale client
// state, not errors.
func (s *GameServer) currentRoom(conn *session.Conn, roomIDStr string) (*room.Room, bool) {
	roomID, err := uuid.Parse(roomIDStr)
	if err != nil || conn.Player.RoomID != roomID {
		return nil, false
	}
	return s.Rooms.Get(roomID)
}

// replyOnError sends a guard failure back to the offending connection
// only. Returns true when err was nil and the action took effect.
func (s *GameServer) replyOnError(conn *session.Conn, err error) bool {
	if err == nil {
		return true
	}
	s.sendError(conn, err.Error())
	return false
}

func (s *GameServer) sendError(conn *session.Conn, msg string) {
	conn.Send(room.Event{Type: room.EventError, Message: msg})
}
