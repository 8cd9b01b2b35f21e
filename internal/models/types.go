package models

import "wordduel/internal/rank"

// ========================= Domain Models =========================
// Shared shapes for gameplay. Generated service output is mapped into Card.

// Card roles.
const (
	RoleAttack  = "attack"
	RoleSupport = "support"
)

// Support card type categories recognised by the shape predicate.
const (
	TypeHeal    = "heal"
	TypeBuff    = "buff"
	TypeEnchant = "enchant"
)

// Stats a card can target.
const (
	StatHealth  = "health"
	StatStamina = "stamina"
	StatMagic   = "magic"
)

// CardLogic is the resolution record actually applied during a turn.
type CardLogic struct {
	Target     string  `json:"target"`     // "player" (self) or "opponent"
	ActionType string  `json:"actionType"` // heal, buff, enchant, damage
	Value      float64 `json:"value"`
	Duration   int     `json:"duration"` // turns; 0 = instantaneous
}

// Card is a generated or fallback battle artifact. Every Card that leaves the
// generation pipeline has a non-empty Role and Type and a finite FinalValue.
type Card struct {
	Word           string     `json:"word"`
	Name           string     `json:"name"`
	Rank           rank.Rank  `json:"rank"`
	Attribute      string     `json:"attribute,omitempty"`
	Role           string     `json:"role"`
	Effect         string     `json:"effect,omitempty"`
	Type           string     `json:"type"`
	CardType       string     `json:"cardType,omitempty"`
	SupportType    string     `json:"supportType,omitempty"`
	SupportMessage string     `json:"supportMessage,omitempty"`
	EffectName     string     `json:"effectName,omitempty"`
	SpecialEffect  string     `json:"specialEffect,omitempty"`
	TargetStat     string     `json:"targetStat,omitempty"`
	Logic          *CardLogic `json:"logic,omitempty"`
	BaseValue      float64    `json:"baseValue"`
	FinalValue     float64    `json:"finalValue"`
	HitRate        int        `json:"hitRate"` // 0-100
	Cost           int        `json:"cost"`
	Duration       int        `json:"duration"` // turns; 0 = instantaneous
}

// RawCard mirrors the loosely-shaped JSON the text service returns. Numeric
// fields are pointers so a missing field is distinguishable from zero; the
// generator normalizes this into a Card.
type RawCard struct {
	Word           string     `json:"word"`
	Name           string     `json:"name"`
	Attribute      string     `json:"attribute"`
	Role           string     `json:"role"`
	Effect         string     `json:"effect"`
	Type           string     `json:"type"`
	CardType       string     `json:"cardType"`
	SupportType    string     `json:"supportType"`
	SupportMessage string     `json:"supportMessage"`
	EffectName     string     `json:"effectName"`
	SpecialEffect  string     `json:"specialEffect"`
	TargetStat     string     `json:"targetStat"`
	Logic          *CardLogic `json:"logic"`
	BaseValue      *float64   `json:"baseValue"`
	FinalValue     *float64   `json:"finalValue"`
	HitRate        *int       `json:"hitRate"`
	Cost           *int       `json:"cost"`
	Duration       *int       `json:"duration"`
}

// WsMsg is the websocket message envelope.
type WsMsg struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// CardSummary is the wire view of a resolved card inside a turn_result event.
type CardSummary struct {
	Word       string    `json:"word"`
	Name       string    `json:"name"`
	Rank       rank.Rank `json:"rank"`
	Role       string    `json:"role"`
	Type       string    `json:"type"`
	FinalValue float64   `json:"finalValue"`
	HitRate    int       `json:"hitRate"`
	Duration   int       `json:"duration"`
}

// Summary trims a card down to what clients need to render a turn.
func (c Card) Summary() CardSummary {
	return CardSummary{
		Word:       c.Word,
		Name:       c.Name,
		Rank:       c.Rank,
		Role:       c.Role,
		Type:       c.Type,
		FinalValue: c.FinalValue,
		HitRate:    c.HitRate,
		Duration:   c.Duration,
	}
}
