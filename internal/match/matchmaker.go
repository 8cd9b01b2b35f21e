package match

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"wordduel/internal/cards"
	"wordduel/internal/game"
	"wordduel/internal/models"
)

var (
	ErrRoomExists   = errors.New("match: a room with that password already exists")
	ErrRoomNotFound = errors.New("match: no room with that password")
	ErrRoomFull     = errors.New("match: room is full")
)

// Settings are the starting stats handed to every matched player.
type Settings struct {
	StartingHealth  int
	StartingStamina int
	StartingMagic   int
}

// Matchmaker owns the FIFO waiting queue, the password-room registry and the
// room directory. Created at process start, cleared only on shutdown; all
// access is serialized through its mutex.
type Matchmaker struct {
	mu      sync.Mutex
	queue   []*game.Player
	pending map[string]*game.Room // password → room awaiting its second seat
	rooms   map[string]*game.Room // room ID → live room
	gen     *cards.Generator
	cfg     Settings
}

func New(gen *cards.Generator, cfg Settings) *Matchmaker {
	return &Matchmaker{
		pending: make(map[string]*game.Room),
		rooms:   make(map[string]*game.Room),
		gen:     gen,
		cfg:     cfg,
	}
}

// Enqueue appends a player to the FIFO queue and pairs as soon as two are
// waiting. No effect if the player is already queued or already in a room.
func (m *Matchmaker) Enqueue(p *game.Player) {
	m.mu.Lock()
	if p.Room() != nil {
		m.mu.Unlock()
		return
	}
	for _, q := range m.queue {
		if q.ID == p.ID {
			m.mu.Unlock()
			return
		}
	}
	p.QueuedAt = time.Now()
	m.queue = append(m.queue, p)
	log.Printf("matchmaker: queued id=%s name=%q (queueLen=%d)", p.ID, p.Name, len(m.queue))
	var paired [][2]*game.Player
	for len(m.queue) >= 2 {
		p1, p2 := m.queue[0], m.queue[1]
		m.queue = m.queue[2:]
		paired = append(paired, [2]*game.Player{p1, p2})
	}
	m.mu.Unlock()
	for _, pair := range paired {
		m.createRoom(pair[0], pair[1], "")
	}
}

// CreatePasswordRoom opens a private room gated by a password and seats its
// creator. The creator acts first once an opponent joins.
func (m *Matchmaker) CreatePasswordRoom(p *game.Player, password string) (*game.Room, error) {
	m.mu.Lock()
	if _, exists := m.pending[password]; exists {
		m.mu.Unlock()
		return nil, ErrRoomExists
	}
	m.seedStats(p)
	r := game.NewRoom(uuid.NewString(), p, m.gen)
	r.Password = password
	r.OnFinished = m.release
	m.pending[password] = r
	m.rooms[r.ID] = r
	m.mu.Unlock()
	log.Printf("matchmaker: password room created id=%s by=%s", r.ID, p.ID)
	return r, nil
}

// JoinPasswordRoom seats a player into the room reserved under password and
// starts the battle. Behaves like a FIFO pairing once the join succeeds.
func (m *Matchmaker) JoinPasswordRoom(p *game.Player, password string) (*game.Room, error) {
	m.mu.Lock()
	r, ok := m.pending[password]
	if !ok {
		m.mu.Unlock()
		return nil, ErrRoomNotFound
	}
	if r.State != game.StateWaiting {
		m.mu.Unlock()
		return nil, ErrRoomFull
	}
	m.seedStats(p)
	m.mu.Unlock()
	r.Join(p)
	m.notifyMatched(r)
	return r, nil
}

// RemovePlayer takes a player out of the FIFO queue or out of a password room
// still waiting for an opponent. Idempotent.
func (m *Matchmaker) RemovePlayer(p *game.Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, q := range m.queue {
		if q.ID == p.ID {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			log.Printf("matchmaker: dequeued id=%s (queueLen=%d)", p.ID, len(m.queue))
			break
		}
	}
	if r := p.Room(); r != nil && r.State == game.StateWaiting {
		if r.Password != "" {
			delete(m.pending, r.Password)
		}
		delete(m.rooms, r.ID)
		p.SetRoom(nil)
	}
}

// Room looks a live room up by ID.
func (m *Matchmaker) Room(id string) *game.Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rooms[id]
}

// Rooms returns the live room directory for lobby and debug views.
func (m *Matchmaker) Rooms() []*game.Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*game.Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	return out
}

// Waiting returns the players currently in the FIFO queue, oldest first.
func (m *Matchmaker) Waiting() []*game.Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*game.Player(nil), m.queue...)
}

func (m *Matchmaker) createRoom(p1, p2 *game.Player, password string) {
	m.mu.Lock()
	m.seedStats(p1)
	m.seedStats(p2)
	r := game.NewRoom(uuid.NewString(), p1, m.gen)
	r.Password = password
	r.OnFinished = m.release
	m.rooms[r.ID] = r
	m.mu.Unlock()
	log.Printf("matchmaker: pairing p1=%s (%s) with p2=%s (%s) room=%s", p1.ID, p1.Name, p2.ID, p2.Name, r.ID)
	r.Join(p2)
	m.notifyMatched(r)
}

func (m *Matchmaker) notifyMatched(r *game.Room) {
	for _, seat := range []*game.Player{r.P1, r.P2} {
		opp := r.Opponent(seat)
		seat.Emit(models.WsMsg{Type: "matched", Data: map[string]interface{}{
			"room":     r.ID,
			"opponent": opp.Name,
			"stats":    seat.Summary(),
			"turn":     r.Turn,
		}})
	}
	r.Broadcast(models.WsMsg{Type: "state", Data: r.Snapshot()})
}

func (m *Matchmaker) seedStats(p *game.Player) {
	p.Health = m.cfg.StartingHealth
	p.Stamina = m.cfg.StartingStamina
	p.Magic = m.cfg.StartingMagic
	p.Effects = nil
}

// release drops a finished room from the directory and registry and hands
// its players back to the matchmaker so they can queue again.
func (m *Matchmaker) release(r *game.Room) {
	for _, seat := range []*game.Player{r.P1, r.P2} {
		if seat != nil && seat.Room() == r {
			seat.SetRoom(nil)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.Password != "" {
		delete(m.pending, r.Password)
	}
	delete(m.rooms, r.ID)
	log.Printf("matchmaker: released room %s (roomsLen=%d)", r.ID, len(m.rooms))
}
