// internal/room/room_test.go
package room

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumit112234/sixteen-parchi/internal/ai"
	"github.com/Sumit112234/sixteen-parchi/internal/deck"
	"github.com/Sumit112234/sixteen-parchi/internal/models"
)

// recorder captures broadcast and direct events in place of the
// websocket layer.
type recorder struct {
	mu     sync.Mutex
	events []Event
	direct map[uuid.UUID][]Event
}

func newRecorder() *recorder {
	return &recorder{direct: make(map[uuid.UUID][]Event)}
}

func (rec *recorder) broadcast(ids []uuid.UUID, ev Event) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.events = append(rec.events, ev)
}

func (rec *recorder) toPlayer(id uuid.UUID, ev Event) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.direct[id] = append(rec.direct[id], ev)
}

func (rec *recorder) typed(t EventType) []Event {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	var out []Event
	for _, ev := range rec.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func newPlayer(name string) *models.Player {
	return &models.Player{ID: uuid.New(), Name: name, AvatarID: 1}
}

// setupRoom builds a room with the given number of human members, the
// first being the creator.
func setupRoom(t *testing.T, humans int) (*Room, []*models.Player, *recorder) {
	t.Helper()
	creator := newPlayer("p0")
	r := New("table", 4, 15, creator)
	rec := newRecorder()
	r.BroadcastFn = rec.broadcast
	r.BroadcastToPlayerFn = rec.toPlayer
	r.AIDelay = 5 * time.Millisecond

	players := []*models.Player{creator}
	for i := 1; i < humans; i++ {
		p := newPlayer(fmt.Sprintf("p%d", i))
		require.NoError(t, r.AddMember(p))
		players = append(players, p)
	}
	return r, players, rec
}

func mkCard(h models.Hero) *models.Card {
	return &models.Card{ID: uuid.New(), Hero: h, Points: deck.Points(h)}
}

func mkHand(heroes ...models.Hero) []*models.Card {
	hand := make([]*models.Card, len(heroes))
	for i, h := range heroes {
		hand[i] = mkCard(h)
	}
	return hand
}

func setHands(r *Room, hands ...[]*models.Card) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	for i, h := range hands {
		r.Members[i].Hand = h
	}
}

func TestAddMemberRoomFull(t *testing.T) {
	r, _, _ := setupRoom(t, 4)
	err := r.AddMember(newPlayer("extra"))
	assert.Equal(t, ErrRoomFull, err)
}

func TestAddMemberAfterStart(t *testing.T) {
	r, players, _ := setupRoom(t, 2)
	require.NoError(t, r.Start(players[0].ID))
	err := r.AddMember(newPlayer("late"))
	assert.Equal(t, ErrGameAlreadyStarted, err)
}

func TestSpectatorMayJoinMidGame(t *testing.T) {
	r, players, rec := setupRoom(t, 2)
	require.NoError(t, r.Start(players[0].ID))
	r.AddSpectator(newPlayer("watcher"))
	assert.Len(t, rec.typed(EventSpectatorJoined), 1)
	assert.Len(t, r.Snapshot().Spectators, 1)
}

func TestStartGuards(t *testing.T) {
	r, players, _ := setupRoom(t, 2)

	assert.Equal(t, ErrNotRoomCreator, r.Start(players[1].ID))
	require.NoError(t, r.Start(players[0].ID))
	assert.Equal(t, ErrGameAlreadyStarted, r.Start(players[0].ID))
}

func TestStartRequiresTwoPlayers(t *testing.T) {
	r, players, _ := setupRoom(t, 1)
	assert.Equal(t, ErrInsufficientPlayers, r.Start(players[0].ID))
}

func TestStartDealsUniqueHands(t *testing.T) {
	r, players, rec := setupRoom(t, 3)
	require.NoError(t, r.Start(players[0].ID))

	seen := map[uuid.UUID]bool{}
	r.Mu.Lock()
	for _, m := range r.Members {
		require.Len(t, m.Hand, deck.HandSize)
		assert.Equal(t, uuid.Nil, m.LastReceivedID)
		assert.Zero(t, m.CardsPlayed)
		for _, c := range m.Hand {
			assert.False(t, seen[c.ID], "card dealt to two players")
			seen[c.ID] = true
		}
	}
	assert.Equal(t, 0, r.CurrentTurn)
	r.Mu.Unlock()

	require.Len(t, rec.typed(EventGameStarted), 1)
	for _, p := range players {
		evs := rec.direct[p.ID]
		require.NotEmpty(t, evs, "every human gets a private hand sync")
		assert.Equal(t, EventGameState, evs[len(evs)-1].Type)
	}
}

func TestPassCardMovesInstanceAndAdvancesTurn(t *testing.T) {
	r, players, rec := setupRoom(t, 2)
	require.NoError(t, r.Start(players[0].ID))

	r.Mu.Lock()
	passed := r.Members[0].Hand[0]
	r.Mu.Unlock()

	require.NoError(t, r.PassCard(players[0].ID, 0))

	r.Mu.Lock()
	defer r.Mu.Unlock()
	assert.Len(t, r.Members[0].Hand, 3)
	assert.Len(t, r.Members[1].Hand, 5)
	assert.Equal(t, passed.ID, r.Members[1].Hand[4].ID)
	assert.Equal(t, passed.ID, r.Members[1].LastReceivedID)
	assert.Equal(t, 1, r.Members[0].CardsPlayed)
	assert.Equal(t, 1, r.CurrentTurn)

	evs := rec.typed(EventCardPassed)
	require.Len(t, evs, 1)
	assert.Equal(t, players[0].ID, evs[0].From.ID)
	assert.Equal(t, players[1].ID, evs[0].To.ID)
}

func TestPassCardGuards(t *testing.T) {
	r, players, _ := setupRoom(t, 2)

	assert.Equal(t, ErrGameNotStarted, r.PassCard(players[0].ID, 0))

	require.NoError(t, r.Start(players[0].ID))
	assert.Equal(t, ErrNotYourTurn, r.PassCard(players[1].ID, 0))
	assert.Equal(t, ErrInvalidCard, r.PassCard(players[0].ID, 9))
	assert.Equal(t, ErrInvalidCard, r.PassCard(players[0].ID, -1))
}

func TestPassRestriction(t *testing.T) {
	r, players, _ := setupRoom(t, 2)
	require.NoError(t, r.Start(players[0].ID))

	// Distinct heroes: the received instance is locked in hand.
	hand := mkHand(models.HeroSuperman, models.HeroBatman, models.HeroWonderWoman, models.HeroFlash)
	setHands(r, hand, mkHand(models.HeroSuperman, models.HeroBatman, models.HeroWonderWoman, models.HeroFlash))
	r.Mu.Lock()
	r.Members[0].LastReceivedID = hand[0].ID
	r.Mu.Unlock()

	assert.Equal(t, ErrPassRestricted, r.PassCard(players[0].ID, 0))
	assert.NoError(t, r.PassCard(players[0].ID, 1))
}

func TestPassRestrictionLiftedByDuplicateHero(t *testing.T) {
	r, players, _ := setupRoom(t, 2)
	require.NoError(t, r.Start(players[0].ID))

	// Two Supermans: passing back the received one is legal.
	hand := mkHand(models.HeroSuperman, models.HeroSuperman, models.HeroBatman, models.HeroWonderWoman)
	setHands(r, hand, mkHand(models.HeroSuperman, models.HeroBatman, models.HeroWonderWoman, models.HeroFlash))
	r.Mu.Lock()
	r.Members[0].LastReceivedID = hand[0].ID
	r.Mu.Unlock()

	assert.NoError(t, r.PassCard(players[0].ID, 0))
}

func TestAutoPassAvoidsRestrictedInstance(t *testing.T) {
	for i := 0; i < 20; i++ {
		r, players, _ := setupRoom(t, 2)
		require.NoError(t, r.Start(players[0].ID))

		hand := mkHand(models.HeroSuperman, models.HeroBatman, models.HeroWonderWoman, models.HeroFlash)
		restricted := hand[0]
		setHands(r, hand, mkHand(models.HeroSuperman, models.HeroBatman, models.HeroWonderWoman, models.HeroFlash))
		r.Mu.Lock()
		r.Members[0].LastReceivedID = restricted.ID
		r.Mu.Unlock()

		require.NoError(t, r.AutoPass(players[0].ID))

		r.Mu.Lock()
		assert.NotEqual(t, restricted.ID, r.Members[1].LastReceivedID)
		r.Mu.Unlock()
	}
}

func TestWinOnReceive(t *testing.T) {
	r, players, rec := setupRoom(t, 2)

	var result *RoundResult
	r.OnRoundWon = func(res RoundResult) { result = &res }
	require.NoError(t, r.Start(players[0].ID))

	sender := mkHand(models.HeroFlash, models.HeroBatman, models.HeroSuperman, models.HeroWonderWoman)
	receiver := mkHand(models.HeroFlash, models.HeroFlash, models.HeroFlash)
	setHands(r, sender, receiver)

	require.NoError(t, r.PassCard(players[0].ID, 0))

	r.Mu.Lock()
	require.NotNil(t, r.Winner)
	assert.Equal(t, players[1].ID, r.Winner.PlayerID)
	assert.Equal(t, models.HeroFlash, r.Winner.Hero)
	r.Mu.Unlock()

	won := rec.typed(EventGameWon)
	require.Len(t, won, 1)
	assert.Equal(t, players[1].ID, won[0].Winner.PlayerID)

	require.NotNil(t, result)
	assert.Equal(t, players[1].ID, result.Winner.PlayerID)
	require.Len(t, result.Players, 2)
	for _, seat := range result.Players {
		assert.Equal(t, seat.PlayerID == players[1].ID, seat.Won)
	}

	// The round is over: nobody may pass.
	assert.Equal(t, ErrGameNotStarted, r.PassCard(players[1].ID, 0))
}

func TestResetCreatorOnlyAndIdempotent(t *testing.T) {
	r, players, rec := setupRoom(t, 2)

	assert.Equal(t, ErrNotRoomCreator, r.Reset(players[1].ID))
	assert.NoError(t, r.Reset(players[0].ID), "resetting an idle room is a no-op")
	assert.Empty(t, rec.typed(EventGameReset))

	require.NoError(t, r.Start(players[0].ID))
	require.NoError(t, r.Reset(players[0].ID))

	r.Mu.Lock()
	assert.False(t, r.Started)
	assert.Nil(t, r.Winner)
	for _, m := range r.Members {
		assert.Nil(t, m.Hand)
		assert.Equal(t, uuid.Nil, m.LastReceivedID)
		assert.Zero(t, m.CardsPlayed)
	}
	r.Mu.Unlock()
	assert.Len(t, rec.typed(EventGameReset), 1)

	// A second reset changes nothing further.
	assert.NoError(t, r.Reset(players[0].ID))
	assert.Len(t, rec.typed(EventGameReset), 1)
}

func TestMemberLeavingMidGameResets(t *testing.T) {
	r, players, rec := setupRoom(t, 3)
	require.NoError(t, r.Start(players[0].ID))

	empty := r.Remove(players[1].ID)
	assert.False(t, empty)

	r.Mu.Lock()
	assert.False(t, r.Started)
	assert.Len(t, r.Members, 2)
	r.Mu.Unlock()
	assert.Len(t, rec.typed(EventGameReset), 1)
}

func TestSpectatorLeavingDoesNotReset(t *testing.T) {
	r, players, rec := setupRoom(t, 2)
	w := newPlayer("watcher")
	r.AddSpectator(w)
	require.NoError(t, r.Start(players[0].ID))

	empty := r.Remove(w.ID)
	assert.False(t, empty)

	r.Mu.Lock()
	assert.True(t, r.Started)
	r.Mu.Unlock()
	assert.Empty(t, rec.typed(EventGameReset))
	assert.Len(t, rec.typed(EventSpectatorLeft), 1)
}

func TestCreatorFloatsToFirstMember(t *testing.T) {
	r, players, _ := setupRoom(t, 3)
	r.Remove(players[0].ID)

	r.Mu.Lock()
	assert.Equal(t, players[1].ID, r.CreatorID)
	r.Mu.Unlock()
}

func TestCreatorLeavingMidGameResetsUnderNewCreator(t *testing.T) {
	r, players, rec := setupRoom(t, 3)
	require.NoError(t, r.Start(players[0].ID))

	r.Remove(players[0].ID)

	evs := rec.typed(EventGameReset)
	require.Len(t, evs, 1)
	assert.Equal(t, players[1].ID, evs[0].Room.CreatorID,
		"reset snapshot should already name the successor creator")

	// The successor may start the next round right away.
	require.NoError(t, r.Start(players[1].ID))
}

func TestCreatorFloatsToSpectatorWhenNoMembersRemain(t *testing.T) {
	r, players, _ := setupRoom(t, 1)
	w := newPlayer("watcher")
	r.AddSpectator(w)

	empty := r.Remove(players[0].ID)
	assert.False(t, empty)

	r.Mu.Lock()
	assert.Equal(t, w.ID, r.CreatorID)
	r.Mu.Unlock()
}

func TestRoomEmptyAfterLastOccupantLeaves(t *testing.T) {
	r, players, _ := setupRoom(t, 2)
	assert.False(t, r.Remove(players[0].ID))
	assert.True(t, r.Remove(players[1].ID))
}

func TestAIManagement(t *testing.T) {
	r, players, _ := setupRoom(t, 2)

	_, err := r.AddAI(players[1].ID, ai.Easy)
	assert.Equal(t, ErrNotRoomCreator, err)

	aiID, err := r.AddAI(players[0].ID, ai.Hard)
	require.NoError(t, err)

	snap := r.Snapshot()
	require.Len(t, snap.Players, 3)
	assert.True(t, snap.Players[2].IsAI)
	assert.Equal(t, "hard", snap.Players[2].Difficulty)

	assert.Equal(t, ErrNotRoomCreator, r.RemoveAI(players[1].ID, aiID))
	require.NoError(t, r.RemoveAI(players[0].ID, aiID))
	assert.Len(t, r.Snapshot().Players, 2)
}

func TestAITakesItsTurn(t *testing.T) {
	r, players, _ := setupRoom(t, 2)
	_, err := r.AddAI(players[0].ID, ai.Easy)
	require.NoError(t, err)
	require.NoError(t, r.Start(players[0].ID))

	// Humans hold turns 0 and 1; the AI sits at index 2.
	require.NoError(t, r.PassCard(players[0].ID, 0))
	require.NoError(t, r.PassCard(players[1].ID, 0))

	require.Eventually(t, func() bool {
		r.Mu.Lock()
		defer r.Mu.Unlock()
		return r.Winner != nil || r.Members[2].CardsPlayed == 1
	}, time.Second, 5*time.Millisecond, "AI never played")
}

func TestAIChainsThroughConsecutiveSeats(t *testing.T) {
	r, players, _ := setupRoom(t, 1)
	_, err := r.AddAI(players[0].ID, ai.Easy)
	require.NoError(t, err)
	_, err = r.AddAI(players[0].ID, ai.Easy)
	require.NoError(t, err)
	require.NoError(t, r.Start(players[0].ID))

	require.NoError(t, r.PassCard(players[0].ID, 0))

	require.Eventually(t, func() bool {
		r.Mu.Lock()
		defer r.Mu.Unlock()
		return r.Winner != nil || (r.Members[1].CardsPlayed >= 1 && r.Members[2].CardsPlayed >= 1)
	}, time.Second, 5*time.Millisecond, "both AI seats should have played")
}

func TestStaleAITimerDoesNothingAfterReset(t *testing.T) {
	r, players, _ := setupRoom(t, 1)
	aiID, err := r.AddAI(players[0].ID, ai.Easy)
	require.NoError(t, err)
	r.AIDelay = 20 * time.Millisecond
	require.NoError(t, r.Start(players[0].ID))

	// Hand the turn to the AI, then tear the round down before its
	// think timer fires.
	require.NoError(t, r.PassCard(players[0].ID, 0))
	require.NoError(t, r.Reset(players[0].ID))

	time.Sleep(100 * time.Millisecond)

	r.Mu.Lock()
	defer r.Mu.Unlock()
	for _, m := range r.Members {
		if m.ID == aiID {
			assert.Zero(t, m.CardsPlayed)
		}
	}
	assert.False(t, r.Started)
}

func TestChat(t *testing.T) {
	r, players, rec := setupRoom(t, 2)
	w := newPlayer("watcher")
	r.AddSpectator(w)

	r.AppendChat(players[0].ID, "hello")
	r.AppendChat(w.ID, "hi from the stands")
	r.AppendChat(uuid.New(), "should be ignored")

	var fromPlayers []models.ChatMessage
	for _, ev := range rec.typed(EventChatMessage) {
		if !ev.Chat.System {
			fromPlayers = append(fromPlayers, *ev.Chat)
		}
	}
	require.Len(t, fromPlayers, 2)
	assert.Equal(t, "hello", fromPlayers[0].Text)
	assert.False(t, fromPlayers[0].IsSpectator)
	assert.True(t, fromPlayers[1].IsSpectator)
}

func TestUpdateCardDesign(t *testing.T) {
	r, players, rec := setupRoom(t, 2)
	design := []byte(`{"back":"galaxy"}`)

	r.UpdateCardDesign(players[1].ID, design)

	evs := rec.typed(EventPlayerUpdated)
	require.Len(t, evs, 1)
	assert.Equal(t, players[1].ID, evs[0].Seat.ID)
	assert.JSONEq(t, `{"back":"galaxy"}`, string(evs[0].Seat.CardDesign))
}

func TestSnapshotHidesHands(t *testing.T) {
	r, players, _ := setupRoom(t, 2)
	require.NoError(t, r.Start(players[0].ID))

	snap := r.Snapshot()
	for _, seat := range snap.Players {
		assert.Equal(t, deck.HandSize, seat.HandSize)
	}
}

func TestStoreLifecycle(t *testing.T) {
	s := NewStore()
	r, _, _ := setupRoom(t, 2)
	s.Add(r)

	got, ok := s.Get(r.ID)
	require.True(t, ok)
	assert.Same(t, r, got)
	assert.Len(t, s.Snapshots(), 1)

	s.Delete(r.ID)
	_, ok = s.Get(r.ID)
	assert.False(t, ok)
	assert.Empty(t, s.Snapshots())
}
