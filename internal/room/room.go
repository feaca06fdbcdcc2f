// internal/room/room.go
package room

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Sumit112234/sixteen-parchi/internal/ai"
	"github.com/Sumit112234/sixteen-parchi/internal/deck"
	"github.com/Sumit112234/sixteen-parchi/internal/models"
)

const (
	// DefaultTurnDuration is the per-turn countdown hint sent to
	// clients, in seconds. The server does not enforce it; clients
	// report expiry via autoPassCard.
	DefaultTurnDuration = 15

	// DefaultAIDelay is how long an AI seat "thinks" before passing.
	DefaultAIDelay = 1500 * time.Millisecond

	maxChatLog = 100
	avatarPool = 8
)

// Room is one table: its lobby membership before a round and the live
// round state during one. All mutation happens under Mu; methods whose
// name ends in Unsafe expect the caller to hold it.
type Room struct {
	ID           uuid.UUID
	Name         string
	MaxPlayers   int
	TurnDuration int
	CreatorID    uuid.UUID
	Private      bool
	CreatedAt    time.Time

	Members    []*models.RoomPlayer
	Spectators []*models.Player

	Started       bool
	Winner        *Winner
	CurrentTurn   int
	StartedAt     time.Time
	TurnStartedAt time.Time
	Chat          []models.ChatMessage

	// generation increments whenever the round state is torn down or
	// rebuilt. Scheduled AI turns capture it and abort if it moved.
	generation int
	aiTimer    *time.Timer

	// AIDelay overrides DefaultAIDelay, mainly for tests.
	AIDelay time.Duration

	// BroadcastFn delivers ev to the given connection ids. It must not
	// call back into the room.
	BroadcastFn func(ids []uuid.UUID, ev Event)
	// BroadcastToPlayerFn delivers ev to one connection.
	BroadcastToPlayerFn func(id uuid.UUID, ev Event)
	// OnRoundWon is invoked with the lock held when a round ends; it
	// must hand off quickly (the dispatcher persists asynchronously).
	OnRoundWon func(res RoundResult)

	Mu sync.Mutex
}

// New creates a room with its creator already seated.
func New(name string, maxPlayers, turnDuration int, creator *models.Player) *Room {
	if maxPlayers < 2 || maxPlayers > deck.Size/deck.HandSize {
		maxPlayers = deck.Size / deck.HandSize
	}
	if turnDuration <= 0 {
		turnDuration = DefaultTurnDuration
	}
	r := &Room{
		ID:           uuid.New(),
		Name:         name,
		MaxPlayers:   maxPlayers,
		TurnDuration: turnDuration,
		CreatorID:    creator.ID,
		CreatedAt:    time.Now(),
		AIDelay:      DefaultAIDelay,
	}
	r.Members = append(r.Members, creator.Seat())
	return r
}

// AddMember seats a player, or returns why they cannot sit.
func (r *Room) AddMember(p *models.Player) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.Started {
		return ErrGameAlreadyStarted
	}
	if len(r.Members) >= r.MaxPlayers {
		return ErrRoomFull
	}
	r.Members = append(r.Members, p.Seat())
	r.systemChatUnsafe(fmt.Sprintf("%s joined the room", p.Name))
	r.broadcastUnsafe(Event{
		Type:   EventPlayerJoined,
		Player: &PlayerInfo{ID: p.ID, Name: p.Name, AvatarID: p.AvatarID},
		Seats:  r.seatsUnsafe(),
	})
	return nil
}

// AddSpectator admits a watcher. Spectators may arrive mid-round.
func (r *Room) AddSpectator(p *models.Player) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	r.Spectators = append(r.Spectators, p)
	r.systemChatUnsafe(fmt.Sprintf("%s is watching", p.Name))
	r.broadcastUnsafe(Event{
		Type:     EventSpectatorJoined,
		Player:   &PlayerInfo{ID: p.ID, Name: p.Name, AvatarID: p.AvatarID},
		Watchers: r.watchersUnsafe(),
	})
}

// AddAI seats a bot. Creator only, lobby only.
func (r *Room) AddAI(actorID uuid.UUID, difficulty ai.Difficulty) (uuid.UUID, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if actorID != r.CreatorID {
		return uuid.Nil, ErrNotRoomCreator
	}
	if r.Started {
		return uuid.Nil, ErrGameAlreadyStarted
	}
	if len(r.Members) >= r.MaxPlayers {
		return uuid.Nil, ErrRoomFull
	}

	n := 1
	for _, m := range r.Members {
		if m.IsAI {
			n++
		}
	}
	seat := &models.RoomPlayer{
		ID:         uuid.New(),
		Name:       fmt.Sprintf("AI %d (%s)", n, difficulty),
		AvatarID:   rand.Intn(avatarPool),
		IsAI:       true,
		Difficulty: string(difficulty),
	}
	r.Members = append(r.Members, seat)
	r.systemChatUnsafe(fmt.Sprintf("%s joined the room", seat.Name))
	r.broadcastUnsafe(Event{
		Type:   EventPlayerJoined,
		Player: &PlayerInfo{ID: seat.ID, Name: seat.Name, AvatarID: seat.AvatarID},
		Seats:  r.seatsUnsafe(),
	})
	return seat.ID, nil
}

// RemoveAI unseats a bot. Creator only, lobby only.
func (r *Room) RemoveAI(actorID, aiID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if actorID != r.CreatorID {
		return ErrNotRoomCreator
	}
	if r.Started {
		return ErrGameAlreadyStarted
	}
	for i, m := range r.Members {
		if m.ID == aiID && m.IsAI {
			r.Members = append(r.Members[:i], r.Members[i+1:]...)
			r.systemChatUnsafe(fmt.Sprintf("%s left the room", m.Name))
			r.broadcastUnsafe(Event{
				Type:   EventPlayerLeft,
				Player: &PlayerInfo{ID: m.ID, Name: m.Name, AvatarID: m.AvatarID},
				Seats:  r.seatsUnsafe(),
			})
			return nil
		}
	}
	return nil
}

// Remove takes a player or spectator out of the room. A seated player
// leaving mid-round aborts the round. Returns whether the room is now
// empty and should be deleted by its store.
func (r *Room) Remove(playerID uuid.UUID) (empty bool) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	for i, m := range r.Members {
		if m.ID != playerID {
			continue
		}
		r.Members = append(r.Members[:i], r.Members[i+1:]...)
		r.systemChatUnsafe(fmt.Sprintf("%s left the room", m.Name))
		r.broadcastUnsafe(Event{
			Type:   EventPlayerLeft,
			Player: &PlayerInfo{ID: m.ID, Name: m.Name, AvatarID: m.AvatarID},
			Seats:  r.seatsUnsafe(),
		})
		// Float the creator first so the reset snapshot already names
		// the successor.
		r.floatCreatorUnsafe(playerID)
		if r.Started {
			r.resetUnsafe(fmt.Sprintf("Game was reset because %s left", m.Name))
		}
		return r.emptyUnsafe()
	}

	for i, s := range r.Spectators {
		if s.ID != playerID {
			continue
		}
		r.Spectators = append(r.Spectators[:i], r.Spectators[i+1:]...)
		r.broadcastUnsafe(Event{
			Type:     EventSpectatorLeft,
			Player:   &PlayerInfo{ID: s.ID, Name: s.Name, AvatarID: s.AvatarID},
			Watchers: r.watchersUnsafe(),
		})
		r.floatCreatorUnsafe(playerID)
		return r.emptyUnsafe()
	}
	return r.emptyUnsafe()
}

// Start deals a fresh round. Creator only, at least two seats.
func (r *Room) Start(actorID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if actorID != r.CreatorID {
		return ErrNotRoomCreator
	}
	if r.Started {
		return ErrGameAlreadyStarted
	}
	if len(r.Members) < 2 {
		return ErrInsufficientPlayers
	}

	cards := deck.New()
	deck.Shuffle(cards)
	hands, err := deck.Deal(cards, len(r.Members))
	if err != nil {
		return err
	}
	for i, m := range r.Members {
		m.Hand = hands[i]
		m.LastReceivedID = uuid.Nil
		m.CardsPlayed = 0
	}

	r.Started = true
	r.Winner = nil
	r.CurrentTurn = 0
	r.StartedAt = time.Now()
	r.TurnStartedAt = r.StartedAt
	r.generation++
	r.stopAITimerUnsafe()

	r.systemChatUnsafe("Game has started!")
	snap := r.snapshotUnsafe()
	r.broadcastUnsafe(Event{
		Type:          EventGameStarted,
		Room:          &snap,
		TurnStartedAt: r.TurnStartedAt.UnixMilli(),
	})
	r.syncHandsUnsafe()

	if r.Members[0].IsAI {
		r.scheduleAITurnUnsafe()
	}
	return nil
}

// PassCard passes the card at cardIndex from the turn owner to the
// next seat.
func (r *Room) PassCard(actorID uuid.UUID, cardIndex int) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	sender, err := r.turnOwnerUnsafe(actorID)
	if err != nil {
		return err
	}
	if cardIndex < 0 || cardIndex >= len(sender.Hand) {
		return ErrInvalidCard
	}
	card := sender.Hand[cardIndex]
	if card.ID == sender.LastReceivedID && deck.HeroCount(sender.Hand, card.Hero) < 2 {
		return ErrPassRestricted
	}
	r.passUnsafe(cardIndex)
	return nil
}

// AutoPass plays a random legal card for the turn owner. Clients send
// it when the turn countdown expires.
func (r *Room) AutoPass(actorID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	sender, err := r.turnOwnerUnsafe(actorID)
	if err != nil {
		return err
	}
	candidates := ai.PassableIndexes(sender.Hand, sender.LastReceivedID)
	r.systemChatUnsafe(fmt.Sprintf("Time's up! %s's card was passed automatically", sender.Name))
	r.passUnsafe(candidates[rand.Intn(len(candidates))])
	return nil
}

// Reset returns the room to its lobby state. Creator only; resetting
// an idle room is a no-op.
func (r *Room) Reset(actorID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if actorID != r.CreatorID {
		return ErrNotRoomCreator
	}
	if !r.Started {
		return nil
	}
	r.resetUnsafe("Game was reset")
	return nil
}

// UpdateCardDesign stores a seat's custom card back and tells the
// table.
func (r *Room) UpdateCardDesign(playerID uuid.UUID, design json.RawMessage) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	for _, m := range r.Members {
		if m.ID == playerID {
			m.CardDesign = design
			seat := r.seatInfoUnsafe(m)
			r.broadcastUnsafe(Event{Type: EventPlayerUpdated, Seat: &seat})
			return
		}
	}
}

// AppendChat adds a message from a member or spectator to the log and
// broadcasts it. Unknown senders are ignored.
func (r *Room) AppendChat(senderID uuid.UUID, text string) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	var msg *models.ChatMessage
	for _, m := range r.Members {
		if m.ID == senderID {
			msg = &models.ChatMessage{
				SenderID:   m.ID.String(),
				SenderName: m.Name,
				AvatarID:   m.AvatarID,
				Text:       text,
				Timestamp:  time.Now().UnixMilli(),
			}
			break
		}
	}
	if msg == nil {
		for _, s := range r.Spectators {
			if s.ID == senderID {
				msg = &models.ChatMessage{
					SenderID:    s.ID.String(),
					SenderName:  s.Name,
					AvatarID:    s.AvatarID,
					Text:        text,
					Timestamp:   time.Now().UnixMilli(),
					IsSpectator: true,
				}
				break
			}
		}
	}
	if msg == nil {
		return
	}
	r.appendChatUnsafe(*msg)
	r.broadcastUnsafe(Event{Type: EventChatMessage, Chat: msg})
}

// MarkPrivate flags the room as password protected.
func (r *Room) MarkPrivate(private bool) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.Private = private
}

// HasMember reports whether id is seated (human or AI).
func (r *Room) HasMember(id uuid.UUID) bool {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	for _, m := range r.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Snapshot returns the public room state.
func (r *Room) Snapshot() Snapshot {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.snapshotUnsafe()
}

// ChatLog returns a copy of the chat history.
func (r *Room) ChatLog() []models.ChatMessage {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	out := make([]models.ChatMessage, len(r.Chat))
	copy(out, r.Chat)
	return out
}

// turnOwnerUnsafe validates that the round is live and actorID holds
// the turn.
func (r *Room) turnOwnerUnsafe(actorID uuid.UUID) (*models.RoomPlayer, error) {
	if !r.Started || r.Winner != nil {
		return nil, ErrGameNotStarted
	}
	sender := r.Members[r.CurrentTurn]
	if sender.ID != actorID {
		return nil, ErrNotYourTurn
	}
	return sender, nil
}

// passUnsafe moves the turn owner's card at cardIndex to the next
// seat, win-checks the receiver and advances the turn. Guards have
// already passed.
func (r *Room) passUnsafe(cardIndex int) {
	sender := r.Members[r.CurrentTurn]
	nextIdx := (r.CurrentTurn + 1) % len(r.Members)
	receiver := r.Members[nextIdx]

	card := sender.Hand[cardIndex]
	sender.Hand = append(sender.Hand[:cardIndex], sender.Hand[cardIndex+1:]...)
	if card.ID != sender.LastReceivedID {
		sender.LastReceivedID = uuid.Nil
	}
	receiver.Hand = append(receiver.Hand, card)
	receiver.LastReceivedID = card.ID
	sender.CardsPlayed++

	if hero, ok := deck.Winning(receiver.Hand); ok {
		r.finishUnsafe(receiver, hero)
	}

	r.CurrentTurn = nextIdx
	r.TurnStartedAt = time.Now()

	turn := r.CurrentTurn
	r.broadcastUnsafe(Event{
		Type:          EventCardPassed,
		From:          &PlayerInfo{ID: sender.ID, Name: sender.Name, AvatarID: sender.AvatarID},
		To:            &PlayerInfo{ID: receiver.ID, Name: receiver.Name, AvatarID: receiver.AvatarID},
		Seats:         r.seatsUnsafe(),
		CurrentTurn:   &turn,
		TurnStartedAt: r.TurnStartedAt.UnixMilli(),
		Winner:        r.Winner,
	})
	r.syncHandUnsafe(sender)
	r.syncHandUnsafe(receiver)

	if r.Winner == nil && r.Members[r.CurrentTurn].IsAI {
		r.scheduleAITurnUnsafe()
	}
}

func (r *Room) finishUnsafe(receiver *models.RoomPlayer, hero models.Hero) {
	w := &Winner{
		PlayerID:  receiver.ID,
		Name:      receiver.Name,
		AvatarID:  receiver.AvatarID,
		Hero:      hero,
		IsAI:      receiver.IsAI,
		AccountID: receiver.AccountID,
	}
	r.Winner = w
	r.generation++
	r.stopAITimerUnsafe()

	r.systemChatUnsafe(fmt.Sprintf("%s wins with 4 %s cards!", w.Name, w.Hero))
	r.broadcastUnsafe(Event{
		Type:   EventGameWon,
		Winner: w,
		Seats:  r.seatsUnsafe(),
	})

	if r.OnRoundWon != nil {
		r.OnRoundWon(r.roundResultUnsafe(w))
	}
}

func (r *Room) roundResultUnsafe(w *Winner) RoundResult {
	res := RoundResult{
		RoomID:      r.ID,
		RoomName:    r.Name,
		Winner:      *w,
		StartedAt:   r.StartedAt.UnixMilli(),
		DurationSec: int(time.Since(r.StartedAt).Seconds()),
	}
	for _, m := range r.Members {
		res.Players = append(res.Players, SeatResult{
			PlayerID:    m.ID,
			Name:        m.Name,
			AccountID:   m.AccountID,
			IsAI:        m.IsAI,
			CardsPlayed: m.CardsPlayed,
			Won:         m.ID == w.PlayerID,
		})
	}
	return res
}

func (r *Room) resetUnsafe(reason string) {
	r.Started = false
	r.Winner = nil
	r.CurrentTurn = 0
	r.generation++
	r.stopAITimerUnsafe()
	for _, m := range r.Members {
		m.Hand = nil
		m.LastReceivedID = uuid.Nil
		m.CardsPlayed = 0
	}
	r.systemChatUnsafe(reason)
	snap := r.snapshotUnsafe()
	r.broadcastUnsafe(Event{Type: EventGameReset, Room: &snap})
}

// scheduleAITurnUnsafe arms the think timer for the current AI seat.
// The callback revalidates generation, turn owner and round state at
// fire time, so stale timers are harmless.
func (r *Room) scheduleAITurnUnsafe() {
	gen := r.generation
	seatID := r.Members[r.CurrentTurn].ID
	delay := r.AIDelay
	if delay <= 0 {
		delay = DefaultAIDelay
	}
	r.stopAITimerUnsafe()
	r.aiTimer = time.AfterFunc(delay, func() {
		r.runAITurn(gen, seatID)
	})
}

func (r *Room) runAITurn(gen int, seatID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if gen != r.generation || !r.Started || r.Winner != nil || len(r.Members) == 0 {
		return
	}
	seat := r.Members[r.CurrentTurn]
	if seat.ID != seatID || !seat.IsAI {
		return
	}
	idx := ai.ChooseCard(seat.Hand, seat.LastReceivedID, ai.ParseDifficulty(seat.Difficulty))
	if idx < 0 || idx >= len(seat.Hand) {
		log.Printf("room %s: AI %s produced invalid card index %d", r.ID, seat.Name, idx)
		return
	}
	r.passUnsafe(idx)
}

func (r *Room) stopAITimerUnsafe() {
	if r.aiTimer != nil {
		r.aiTimer.Stop()
		r.aiTimer = nil
	}
}

// floatCreatorUnsafe hands the creator role to the first remaining
// member, else the first spectator.
func (r *Room) floatCreatorUnsafe(departed uuid.UUID) {
	if r.CreatorID != departed {
		return
	}
	switch {
	case len(r.Members) > 0:
		r.CreatorID = r.Members[0].ID
	case len(r.Spectators) > 0:
		r.CreatorID = r.Spectators[0].ID
	}
}

func (r *Room) emptyUnsafe() bool {
	for _, m := range r.Members {
		if !m.IsAI {
			return false
		}
	}
	return len(r.Spectators) == 0
}

// syncHandsUnsafe sends every human seat its private hand.
func (r *Room) syncHandsUnsafe() {
	for _, m := range r.Members {
		r.syncHandUnsafe(m)
	}
}

func (r *Room) syncHandUnsafe(m *models.RoomPlayer) {
	if m.IsAI || r.BroadcastToPlayerFn == nil {
		return
	}
	hand := make([]*models.Card, len(m.Hand))
	copy(hand, m.Hand)
	turn := r.CurrentTurn
	r.BroadcastToPlayerFn(m.ID, Event{
		Type:          EventGameState,
		Hand:          hand,
		Seats:         r.seatsUnsafe(),
		CurrentTurn:   &turn,
		TurnStartedAt: r.TurnStartedAt.UnixMilli(),
		Winner:        r.Winner,
	})
}

func (r *Room) systemChatUnsafe(text string) {
	msg := models.ChatMessage{
		SenderID:   "system",
		SenderName: "System",
		Text:       text,
		Timestamp:  time.Now().UnixMilli(),
		System:     true,
	}
	r.appendChatUnsafe(msg)
	r.broadcastUnsafe(Event{Type: EventChatMessage, Chat: &msg})
}

func (r *Room) appendChatUnsafe(msg models.ChatMessage) {
	r.Chat = append(r.Chat, msg)
	if len(r.Chat) > maxChatLog {
		r.Chat = r.Chat[len(r.Chat)-maxChatLog:]
	}
}

func (r *Room) broadcastUnsafe(ev Event) {
	if r.BroadcastFn == nil {
		return
	}
	r.BroadcastFn(r.occupantIDsUnsafe(), ev)
}

// occupantIDsUnsafe lists the connection ids subscribed to this room:
// human members plus spectators.
func (r *Room) occupantIDsUnsafe() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Members)+len(r.Spectators))
	for _, m := range r.Members {
		if !m.IsAI {
			ids = append(ids, m.ID)
		}
	}
	for _, s := range r.Spectators {
		ids = append(ids, s.ID)
	}
	return ids
}

func (r *Room) seatsUnsafe() []SeatInfo {
	seats := make([]SeatInfo, len(r.Members))
	for i, m := range r.Members {
		seats[i] = r.seatInfoUnsafe(m)
	}
	return seats
}

func (r *Room) seatInfoUnsafe(m *models.RoomPlayer) SeatInfo {
	return SeatInfo{
		ID:          m.ID,
		Name:        m.Name,
		AvatarID:    m.AvatarID,
		HandSize:    len(m.Hand),
		CardsPlayed: m.CardsPlayed,
		IsAI:        m.IsAI,
		Difficulty:  m.Difficulty,
		CardDesign:  m.CardDesign,
	}
}

func (r *Room) watchersUnsafe() []PlayerInfo {
	out := make([]PlayerInfo, len(r.Spectators))
	for i, s := range r.Spectators {
		out[i] = PlayerInfo{ID: s.ID, Name: s.Name, AvatarID: s.AvatarID}
	}
	return out
}

func (r *Room) snapshotUnsafe() Snapshot {
	return Snapshot{
		ID:           r.ID,
		Name:         r.Name,
		MaxPlayers:   r.MaxPlayers,
		TurnDuration: r.TurnDuration,
		Started:      r.Started,
		Private:      r.Private,
		CreatorID:    r.CreatorID,
		Players:      r.seatsUnsafe(),
		Spectators:   r.watchersUnsafe(),
		CurrentTurn:  r.CurrentTurn,
		Winner:       r.Winner,
	}
}
