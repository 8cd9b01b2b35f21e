package game

import (
	"sync"
	"time"

	"wordduel/internal/models"
)

// ActiveEffect is a multi-turn enchant on a player. Value is applied to Stat
// on each of the player's turns until Remaining reaches 0.
type ActiveEffect struct {
	Name      string
	Stat      string
	Value     int
	Remaining int
}

// Player holds the connection-scoped identity and mutable battle stats.
// While queued the matchmaker owns it; once matched its room does. Battle
// stats are guarded by the owning room's mutex; the room and send references
// are touched from both the player's reader goroutine and the opponent's, so
// they live behind the player's own mutex.
type Player struct {
	ID       string
	Name     string
	Health   int
	Stamina  int
	Magic    int
	Effects  []ActiveEffect
	QueuedAt time.Time

	mu   sync.Mutex
	room *Room
	send func(models.WsMsg)
}

// SetSend installs (or clears) the outbound delivery function for this
// player's connection.
func (p *Player) SetSend(fn func(models.WsMsg)) {
	p.mu.Lock()
	p.send = fn
	p.mu.Unlock()
}

// Emit sends an event if the player still has a connection.
func (p *Player) Emit(m models.WsMsg) {
	if p == nil {
		return
	}
	p.mu.Lock()
	fn := p.send
	p.mu.Unlock()
	if fn != nil {
		fn(m)
	}
}

// Room returns the room currently owning this player, nil while unmatched.
func (p *Player) Room() *Room {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.room
}

// SetRoom hands the player to a room, or back to the matchmaker when nil.
func (p *Player) SetRoom(r *Room) {
	p.mu.Lock()
	p.room = r
	p.mu.Unlock()
}

// Summary is the wire view of a player's battle state.
func (p *Player) Summary() map[string]interface{} {
	return map[string]interface{}{
		"id":      p.ID,
		"name":    p.Name,
		"health":  p.Health,
		"stamina": p.Stamina,
		"magic":   p.Magic,
		"effects": len(p.Effects),
	}
}
