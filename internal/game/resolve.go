package game

import (
	"context"
	"fmt"
	"log"

	"wordduel/internal/models"
	"wordduel/internal/stats"
)

// Action kinds accepted from clients.
const (
	ActionAttack = "attack"
	ActionDefend = "defend"
)

// SubmitAction resolves one turn for the player holding it. Turn-validity
// errors are returned without touching room state; card generation failures
// never surface here because the generator always yields a valid card.
func (r *Room) SubmitAction(ctx context.Context, p *Player, kind, word string) error {
	r.Mu.Lock()
	if r.State != StateActive {
		r.Mu.Unlock()
		return ErrRoomNotActive
	}
	if r.Turn != p.ID {
		r.Mu.Unlock()
		return ErrNotYourTurn
	}
	if r.busy {
		r.Mu.Unlock()
		return ErrActionPending
	}
	if kind != ActionAttack && kind != ActionDefend {
		r.Mu.Unlock()
		return ErrUnknownAction
	}
	r.busy = true
	r.Mu.Unlock()

	// Suspension point: other rooms keep processing while we wait on the
	// generator. The busy flag keeps this room's state safe.
	role := models.RoleAttack
	if kind == ActionDefend {
		role = models.RoleSupport
	}
	card := r.gen.GenerateWithTimeout(ctx, word, role, nil)

	r.Mu.Lock()
	r.busy = false
	if r.State != StateActive || r.Turn != p.ID {
		// Opponent disconnected or the room ended while we were generating.
		r.Mu.Unlock()
		return nil
	}
	actor := p
	target := r.Opponent(p)
	r.TurnCount++

	var lines []string
	r.tickEffects(actor, &lines)

	deltas := map[string]int{}
	switch kind {
	case ActionAttack:
		r.spend(actor, models.StatStamina, card.Cost, &lines)
		r.resolveAttack(actor, target, card, deltas, &lines)
	case ActionDefend:
		r.spend(actor, models.StatMagic, card.Cost, &lines)
		r.resolveSupport(actor, card, deltas, &lines)
	}
	r.Log = append(r.Log, lines...)

	finished := false
	if target.Health <= 0 || actor.Health <= 0 {
		r.State = StateFinished
		winner := actor
		if actor.Health <= 0 {
			winner = target
		}
		r.Winner = winner.ID
		finished = true
		r.Log = append(r.Log, fmt.Sprintf("%s wins the battle!", winner.Name))
		stats.RecordWin(r.TurnCount, winner.Name)
	} else {
		r.Turn = target.ID
	}
	next := r.Turn
	winner := r.Winner
	r.Mu.Unlock()

	r.Broadcast(models.WsMsg{Type: "turn_result", Data: map[string]interface{}{
		"actor":  actor.ID,
		"card":   card.Summary(),
		"deltas": deltas,
		"log":    lines,
		"next":   next,
	}})
	r.Broadcast(models.WsMsg{Type: "state", Data: r.Snapshot()})
	if finished {
		log.Printf("room %s: finished after %d turns, winner=%s", r.ID, r.TurnCount, winner)
		r.Broadcast(models.WsMsg{Type: "battle_end", Data: map[string]interface{}{
			"winner": winner,
			"reason": ReasonVictory,
		}})
		if r.OnFinished != nil {
			r.OnFinished(r)
		}
	}
	return nil
}

// resolveAttack rolls against the card's hit rate and, on a hit, applies its
// value to the opponent's targeted stat. A miss still consumes the turn.
func (r *Room) resolveAttack(actor, target *Player, card models.Card, deltas map[string]int, lines *[]string) {
	roll := r.roll(100)
	if roll >= card.HitRate {
		*lines = append(*lines, fmt.Sprintf("%s attacks with %s [%s]: rolled %d vs %d%% → MISS.",
			actor.Name, card.Name, card.Rank, roll, card.HitRate))
		return
	}
	value := int(card.FinalValue)
	statName := targetStatOf(card, models.StatHealth)
	slot := statPtr(target, statName)
	before := *slot
	*slot = floor0(*slot - value)
	deltas[statName] = *slot - before
	*lines = append(*lines, fmt.Sprintf("%s attacks with %s [%s]: rolled %d vs %d%% → HIT. %s %s: %d → %d",
		actor.Name, card.Name, card.Rank, roll, card.HitRate, target.Name, statName, before, *slot))
	stats.RecordHit(before-*slot, actor.Name, card.Word, card.Name)
}

// resolveSupport applies a heal, buff or multi-turn enchant to the actor.
func (r *Room) resolveSupport(actor *Player, card models.Card, deltas map[string]int, lines *[]string) {
	action := card.SupportType
	value := int(card.FinalValue)
	duration := card.Duration
	if card.Logic != nil {
		if card.Logic.ActionType != "" {
			action = card.Logic.ActionType
		}
		value = int(card.Logic.Value)
		if card.Logic.Duration > duration {
			duration = card.Logic.Duration
		}
	}
	statName := targetStatOf(card, models.StatHealth)
	if action == models.TypeHeal {
		statName = models.StatHealth
	}

	if duration > 0 {
		actor.Effects = append(actor.Effects, ActiveEffect{
			Name:      card.Name,
			Stat:      statName,
			Value:     value,
			Remaining: duration,
		})
		*lines = append(*lines, fmt.Sprintf("%s weaves %s [%s]: +%d %s per turn for %d turns.",
			actor.Name, card.Name, card.Rank, value, statName, duration))
		return
	}
	slot := statPtr(actor, statName)
	before := *slot
	*slot += value
	deltas[statName] = *slot - before
	msg := card.SupportMessage
	if msg == "" {
		msg = fmt.Sprintf("%s %s: %d → %d", actor.Name, statName, before, *slot)
	}
	*lines = append(*lines, fmt.Sprintf("%s plays %s [%s]: %s", actor.Name, card.Name, card.Rank, msg))
}

// tickEffects applies the actor's active enchants once and expires them.
func (r *Room) tickEffects(p *Player, lines *[]string) {
	if len(p.Effects) == 0 {
		return
	}
	kept := p.Effects[:0]
	for _, e := range p.Effects {
		slot := statPtr(p, e.Stat)
		before := *slot
		*slot = floor0(*slot + e.Value)
		*lines = append(*lines, fmt.Sprintf("%s: %s %s %d → %d (%d turn(s) left)",
			e.Name, p.Name, e.Stat, before, *slot, e.Remaining-1))
		e.Remaining--
		if e.Remaining > 0 {
			kept = append(kept, e)
		} else {
			*lines = append(*lines, fmt.Sprintf("%s fades from %s.", e.Name, p.Name))
		}
	}
	p.Effects = kept
}

// spend deducts a card's cost from the actor, floored at 0.
func (r *Room) spend(p *Player, statName string, cost int, lines *[]string) {
	if cost <= 0 {
		return
	}
	slot := statPtr(p, statName)
	before := *slot
	*slot = floor0(*slot - cost)
	if before != *slot {
		*lines = append(*lines, fmt.Sprintf("%s spends %d %s.", p.Name, before-*slot, statName))
	}
}

// targetStatOf picks the stat a card acts on, defaulting when the generated
// data names none or something unknown.
func targetStatOf(card models.Card, def string) string {
	switch card.TargetStat {
	case models.StatHealth, models.StatStamina, models.StatMagic:
		return card.TargetStat
	}
	return def
}

func statPtr(p *Player, statName string) *int {
	switch statName {
	case models.StatStamina:
		return &p.Stamina
	case models.StatMagic:
		return &p.Magic
	default:
		return &p.Health
	}
}

func floor0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
