package cards

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"wordduel/internal/models"
	"wordduel/internal/rank"
)

// DefaultTimeout bounds how long a turn may wait on the text service.
const DefaultTimeout = 8 * time.Second

// TextService is the external generative text dependency. Its output is
// untrusted free-form data.
type TextService interface {
	GenerateCard(ctx context.Context, word, role string) (*models.RawCard, error)
}

// Generator turns words into valid cards. Every failure mode of the underlying
// service (timeout, transport error, malformed or misclassified output) is
// absorbed into a deterministic fallback; callers never see an error.
type Generator struct {
	svc     TextService
	timeout time.Duration
}

func NewGenerator(svc TextService, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Generator{svc: svc, timeout: timeout}
}

// GenerateWithTimeout races the text service against the configured timeout
// and always resolves to a valid Card. The request context is cancelled when
// the timer fires, so a late result is discarded and the call aborted.
// fallback, when non-nil, replaces the built-in attack fallback.
func (g *Generator) GenerateWithTimeout(ctx context.Context, word, role string, fallback *models.Card) models.Card {
	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type outcome struct {
		raw *models.RawCard
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		raw, err := g.svc.GenerateCard(cctx, word, role)
		ch <- outcome{raw, err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			log.Printf("cards: generation failed for %q (%s): %v", word, role, res.err)
			return fallbackFor(word, role, fallback)
		}
		return g.normalize(res.raw, word, role)
	case <-cctx.Done():
		log.Printf("cards: generation timed out for %q (%s) after %s", word, role, g.timeout)
		return fallbackFor(word, role, fallback)
	}
}

func fallbackFor(word, role string, fallback *models.Card) models.Card {
	if role == models.RoleSupport {
		return BasicSupportFallback(word)
	}
	if fallback != nil {
		return *fallback
	}
	return AttackFallback(word)
}

// normalize validates and canonicalizes a raw service result. Only support
// slots get strict shape enforcement; attack results keep their shape apart
// from finite-number coercion.
func (g *Generator) normalize(raw *models.RawCard, word, role string) models.Card {
	if role == models.RoleSupport {
		if !supportLike(raw) {
			log.Printf("cards: rejected non-support result for %q (role=%q type=%q cardType=%q)",
				word, raw.Role, raw.Type, raw.CardType)
			return BasicSupportFallback(word)
		}
		return repairSupport(raw, word)
	}
	c := toCard(raw, word, role)
	if !isFinite(c.FinalValue) {
		if isFinite(c.BaseValue) {
			c.FinalValue = c.BaseValue
		} else {
			c.FinalValue = fallbackAttackDamage
		}
	}
	if !isFinite(c.BaseValue) {
		c.BaseValue = c.FinalValue
	}
	c.Rank = rank.FromValue(c.BaseValue)
	return c
}

// supportLike reports whether a raw result qualifies for a support slot:
// declared support role, a support type category, or any supportType at all.
func supportLike(raw *models.RawCard) bool {
	if strings.EqualFold(strings.TrimSpace(raw.Role), models.RoleSupport) {
		return true
	}
	for _, t := range []string{raw.Type, raw.CardType} {
		switch strings.ToLower(strings.TrimSpace(t)) {
		case models.TypeHeal, models.TypeBuff, models.TypeEnchant:
			return true
		}
	}
	return strings.TrimSpace(raw.SupportType) != ""
}

// repairSupport rewrites a support-like result into the canonical support
// shape in place of the loose fields the service tends to emit.
func repairSupport(raw *models.RawCard, word string) models.Card {
	c := toCard(raw, word, models.RoleSupport)
	c.Role = models.RoleSupport
	c.Effect = models.RoleSupport
	if c.Type == "" {
		c.Type = c.CardType
	}
	if c.CardType == "" {
		c.CardType = c.Type
	}
	if c.SupportType == "" {
		c.SupportType = firstNonEmpty(c.Type, c.CardType)
	}
	c.SupportType = strings.ToLower(strings.TrimSpace(c.SupportType))
	if c.SupportType == "" {
		// Passed the predicate on role alone; default the whole type triple.
		c.Type, c.CardType, c.SupportType = models.TypeHeal, models.TypeHeal, models.TypeHeal
	}
	if !isFinite(c.FinalValue) {
		c.FinalValue = DefaultHealValue
	}
	if !isFinite(c.BaseValue) {
		c.BaseValue = c.FinalValue
	}
	if c.SupportType == models.TypeHeal && c.SupportMessage == "" {
		c.SupportMessage = fmt.Sprintf("%s restores %d health.", c.Name, DefaultHealValue)
		c.Logic = &models.CardLogic{
			Target:     "player",
			ActionType: models.TypeHeal,
			Value:      DefaultHealValue,
			Duration:   0,
		}
	}
	if c.EffectName == "" {
		if c.SpecialEffect != "" {
			c.EffectName = c.SpecialEffect
		} else {
			c.EffectName = "Support Effect"
		}
	}
	c.Rank = rank.FromValue(c.BaseValue)
	return c
}

// toCard copies a raw result into a Card with finite numbers and sane
// defaults for absent fields.
func toCard(raw *models.RawCard, word, role string) models.Card {
	c := models.Card{
		Word:           strings.TrimSpace(raw.Word),
		Name:           strings.TrimSpace(raw.Name),
		Attribute:      raw.Attribute,
		Role:           strings.ToLower(strings.TrimSpace(raw.Role)),
		Effect:         raw.Effect,
		Type:           strings.TrimSpace(raw.Type),
		CardType:       strings.TrimSpace(raw.CardType),
		SupportType:    strings.TrimSpace(raw.SupportType),
		SupportMessage: raw.SupportMessage,
		EffectName:     raw.EffectName,
		SpecialEffect:  raw.SpecialEffect,
		TargetStat:     strings.ToLower(strings.TrimSpace(raw.TargetStat)),
		Logic:          raw.Logic,
		BaseValue:      deref(raw.BaseValue),
		FinalValue:     deref(raw.FinalValue),
		HitRate:        100,
		Cost:           0,
		Duration:       0,
	}
	if c.Word == "" {
		c.Word = word
	}
	if c.Role == "" {
		c.Role = role
	}
	if c.Name == "" {
		c.Name = fmt.Sprintf("Card of %s", c.Word)
	}
	if raw.HitRate != nil {
		c.HitRate = clampInt(*raw.HitRate, 0, 100)
	}
	if raw.Cost != nil && *raw.Cost > 0 {
		c.Cost = *raw.Cost
	}
	if raw.Duration != nil && *raw.Duration > 0 {
		c.Duration = *raw.Duration
	}
	if c.Type == "" {
		c.Type = firstNonEmpty(c.CardType, c.Role)
	}
	c.Rank = rank.FromValue(c.BaseValue)
	return c
}

func deref(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
