package cards

import (
	"fmt"
	"strings"

	"wordduel/internal/models"
	"wordduel/internal/rank"
)

// Named defaults for the fallback cards. These are the single source of truth
// for "generation failed" behavior and contain no randomness.
const (
	DefaultHealValue     = 30
	fallbackAttackDamage = 20
	fallbackAttackHit    = 85
	fallbackAttackCost   = 5
)

// BasicSupportFallback is the deterministic support card substituted whenever
// generation fails or misclassifies a support slot.
func BasicSupportFallback(word string) models.Card {
	if strings.TrimSpace(word) == "" {
		word = "support"
	}
	return models.Card{
		Word:           word,
		Name:           "Healing Light",
		Rank:           rank.E,
		Attribute:      "light",
		Role:           models.RoleSupport,
		Effect:         models.RoleSupport,
		Type:           models.TypeHeal,
		CardType:       models.TypeHeal,
		SupportType:    models.TypeHeal,
		SupportMessage: fmt.Sprintf("A soft light restores %d health.", DefaultHealValue),
		EffectName:     "Healing Light",
		Logic: &models.CardLogic{
			Target:     "player",
			ActionType: models.TypeHeal,
			Value:      DefaultHealValue,
			Duration:   0,
		},
		BaseValue:  DefaultHealValue,
		FinalValue: DefaultHealValue,
		HitRate:    100,
		Cost:       0,
		Duration:   0,
	}
}

// AttackFallback is the deterministic attack card used when generation fails
// and the caller supplied no replacement. Keyed on the source word so the log
// still reads like the player's attack.
func AttackFallback(word string) models.Card {
	if strings.TrimSpace(word) == "" {
		word = "strike"
	}
	return models.Card{
		Word:       word,
		Name:       fmt.Sprintf("Strike of %s", word),
		Rank:       rank.FromValue(fallbackAttackDamage),
		Attribute:  "none",
		Role:       models.RoleAttack,
		Effect:     models.RoleAttack,
		Type:       "slash",
		CardType:   "slash",
		TargetStat: models.StatHealth,
		Logic: &models.CardLogic{
			Target:     "opponent",
			ActionType: "damage",
			Value:      fallbackAttackDamage,
			Duration:   0,
		},
		BaseValue:  fallbackAttackDamage,
		FinalValue: fallbackAttackDamage,
		HitRate:    fallbackAttackHit,
		Cost:       fallbackAttackCost,
		Duration:   0,
	}
}
