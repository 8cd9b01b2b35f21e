package game

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"wordduel/internal/cards"
	"wordduel/internal/models"
)

// Room lifecycle states. Finished is terminal.
type State string

const (
	StateWaiting  State = "waiting"
	StateActive   State = "active"
	StateFinished State = "finished"
)

// Battle end reasons.
const (
	ReasonVictory = "victory"
	ReasonForfeit = "forfeit"
)

var (
	ErrNotYourTurn   = errors.New("game: not your turn")
	ErrRoomNotActive = errors.New("game: room is not active")
	ErrActionPending = errors.New("game: an action is already resolving")
	ErrUnknownAction = errors.New("game: unknown action kind")
)

// Room owns two players' battle stats, the turn order and the battle log.
// All mutation happens under Mu; the only suspension point is the card
// generation call, during which the room is marked busy so a duplicate
// submission cannot start a second resolution.
type Room struct {
	ID        string
	Password  string
	P1, P2    *Player
	Turn      string // player ID holding the turn
	State     State
	Winner    string
	Log       []string
	TurnCount int

	Mu   sync.Mutex
	gen  *cards.Generator
	busy bool
	// roll returns a uniform int in [0,n); swapped out by tests.
	roll func(n int) int
	// OnFinished runs once when the room reaches its terminal state.
	OnFinished func(*Room)
}

// NewRoom creates a room in the waiting state with one seat filled.
func NewRoom(id string, p1 *Player, gen *cards.Generator) *Room {
	r := &Room{
		ID:    id,
		P1:    p1,
		State: StateWaiting,
		gen:   gen,
		roll:  rand.New(rand.NewSource(time.Now().UnixNano())).Intn,
	}
	p1.SetRoom(r)
	return r
}

// Join fills the second seat and activates the room. The first-seated player
// acts first.
func (r *Room) Join(p2 *Player) {
	r.Mu.Lock()
	r.P2 = p2
	p2.SetRoom(r)
	r.State = StateActive
	r.Turn = r.P1.ID
	r.Log = append(r.Log, fmt.Sprintf("Battle started: %s vs %s. %s acts first.", r.P1.Name, r.P2.Name, r.P1.Name))
	r.Mu.Unlock()
	log.Printf("room %s: active p1=%s(%s) p2=%s(%s)", r.ID, r.P1.ID, r.P1.Name, p2.ID, p2.Name)
}

// Opponent returns the other seat, or nil for a stranger.
func (r *Room) Opponent(p *Player) *Player {
	if r.P1 != nil && r.P1.ID == p.ID {
		return r.P2
	}
	if r.P2 != nil && r.P2.ID == p.ID {
		return r.P1
	}
	return nil
}

// Broadcast sends an event to both seats.
func (r *Room) Broadcast(m models.WsMsg) {
	r.P1.Emit(m)
	r.P2.Emit(m)
}

// Snapshot is the wire view of the room for state broadcasts and the lobby.
func (r *Room) Snapshot() map[string]interface{} {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	state := map[string]interface{}{
		"room":   r.ID,
		"state":  string(r.State),
		"turn":   r.Turn,
		"log":    recentLog(r.Log, 10),
		"logLen": len(r.Log),
	}
	if r.P1 != nil {
		state["p1"] = r.P1.Summary()
	}
	if r.P2 != nil {
		state["p2"] = r.P2.Summary()
	}
	if r.Winner != "" {
		state["winner"] = r.Winner
	}
	return state
}

// recentLog returns the newest n entries so state events carry a renderable
// tail of the battle log, not just a count.
func recentLog(entries []string, n int) []string {
	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return append([]string(nil), entries...)
}

// HandleDisconnect forfeits the room in favor of the remaining player. Safe
// to call for rooms already finished.
func (r *Room) HandleDisconnect(p *Player) {
	r.Mu.Lock()
	if r.State == StateFinished {
		r.Mu.Unlock()
		return
	}
	survivor := r.Opponent(p)
	r.State = StateFinished
	if survivor != nil {
		r.Winner = survivor.ID
		r.Log = append(r.Log, fmt.Sprintf("%s disconnected. %s wins by forfeit.", p.Name, survivor.Name))
	}
	r.Mu.Unlock()
	log.Printf("room %s: %s disconnected, winner=%s (forfeit)", r.ID, p.ID, r.Winner)
	survivor.Emit(models.WsMsg{Type: "battle_end", Data: map[string]interface{}{
		"winner": r.Winner,
		"reason": ReasonForfeit,
	}})
	if r.OnFinished != nil {
		r.OnFinished(r)
	}
}
