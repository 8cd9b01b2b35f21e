package cards

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"wordduel/internal/models"
	"wordduel/internal/rank"
)

type fakeService func(ctx context.Context, word, role string) (*models.RawCard, error)

func (f fakeService) GenerateCard(ctx context.Context, word, role string) (*models.RawCard, error) {
	return f(ctx, word, role)
}

func f64(v float64) *float64 { return &v }

func TestTimeoutResolvesToFallback(t *testing.T) {
	// A service that never resolves must not stall the turn: the generator
	// has to come back with the basic support fallback within timeout + ε.
	svc := fakeService(func(ctx context.Context, _, _ string) (*models.RawCard, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	g := NewGenerator(svc, 50*time.Millisecond)

	start := time.Now()
	card := g.GenerateWithTimeout(context.Background(), "flame", models.RoleSupport, nil)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("generation took %s, want well under a second", elapsed)
	}
	if !reflect.DeepEqual(card, BasicSupportFallback("flame")) {
		t.Errorf("timeout should yield the basic support fallback, got %+v", card)
	}
}

func TestTimeoutAttackUsesCallerFallback(t *testing.T) {
	svc := fakeService(func(ctx context.Context, _, _ string) (*models.RawCard, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	g := NewGenerator(svc, 20*time.Millisecond)

	custom := AttackFallback("ember")
	custom.Name = "Ember Burst"
	card := g.GenerateWithTimeout(context.Background(), "flame", models.RoleAttack, &custom)
	if card.Name != "Ember Burst" {
		t.Errorf("caller-supplied fallback ignored, got %+v", card)
	}
}

func TestTransportFailureFallsBack(t *testing.T) {
	svc := fakeService(func(_ context.Context, _, _ string) (*models.RawCard, error) {
		return nil, errors.New("connection refused")
	})
	g := NewGenerator(svc, time.Second)

	support := g.GenerateWithTimeout(context.Background(), "ward", models.RoleSupport, nil)
	if !reflect.DeepEqual(support, BasicSupportFallback("ward")) {
		t.Errorf("support transport failure should yield the basic fallback, got %+v", support)
	}

	attack := g.GenerateWithTimeout(context.Background(), "flame", models.RoleAttack, nil)
	if !reflect.DeepEqual(attack, AttackFallback("flame")) {
		t.Errorf("attack transport failure with no caller fallback should yield the word-keyed fallback, got %+v", attack)
	}
}

func TestAttackShapedSupportReplacedWholesale(t *testing.T) {
	// An attack-shaped result (type slash, no supportType) in a support slot
	// is replaced by the fallback, not patched field by field.
	svc := fakeService(func(_ context.Context, _, _ string) (*models.RawCard, error) {
		return &models.RawCard{
			Word:       "sword",
			Name:       "Sword of Ruin",
			Role:       "attack",
			Type:       "slash",
			BaseValue:  f64(80),
			FinalValue: f64(80),
		}, nil
	})
	g := NewGenerator(svc, time.Second)

	card := g.GenerateWithTimeout(context.Background(), "sword", models.RoleSupport, nil)
	if !reflect.DeepEqual(card, BasicSupportFallback("sword")) {
		t.Errorf("misclassified support should be the untouched fallback, got %+v", card)
	}
}

func TestSupportRepairBackfillsShape(t *testing.T) {
	svc := fakeService(func(_ context.Context, _, _ string) (*models.RawCard, error) {
		return &models.RawCard{
			Name:     "Stone Skin",
			CardType: "Buff",
			// role, type, supportType, numbers all missing
		}, nil
	})
	g := NewGenerator(svc, time.Second)

	card := g.GenerateWithTimeout(context.Background(), "stone", models.RoleSupport, nil)
	if card.Role != models.RoleSupport || card.Effect != models.RoleSupport {
		t.Errorf("role/effect not forced to support: %+v", card)
	}
	if card.SupportType != "buff" {
		t.Errorf("supportType = %q, want lower-cased backfill from cardType", card.SupportType)
	}
	if card.Type == "" || card.CardType == "" {
		t.Errorf("type/cardType backfill missing: type=%q cardType=%q", card.Type, card.CardType)
	}
	if card.FinalValue != DefaultHealValue {
		t.Errorf("missing finalValue should coerce to %d, got %v", DefaultHealValue, card.FinalValue)
	}
	if card.BaseValue != card.FinalValue {
		t.Errorf("missing baseValue should coerce from finalValue, got %v", card.BaseValue)
	}
	if card.EffectName == "" {
		t.Errorf("effectName should be backfilled")
	}
}

func TestSupportHealMessageSynthesized(t *testing.T) {
	svc := fakeService(func(_ context.Context, _, _ string) (*models.RawCard, error) {
		return &models.RawCard{
			Name:       "Spring Water",
			Role:       "support",
			Type:       "heal",
			FinalValue: f64(42),
		}, nil
	})
	g := NewGenerator(svc, time.Second)

	card := g.GenerateWithTimeout(context.Background(), "water", models.RoleSupport, nil)
	if card.SupportMessage == "" {
		t.Fatalf("heal card with no message should get one synthesized")
	}
	if card.Logic == nil || card.Logic.ActionType != models.TypeHeal || card.Logic.Value != DefaultHealValue {
		t.Errorf("synthesized heal logic wrong: %+v", card.Logic)
	}
	if card.Logic.Target != "player" {
		t.Errorf("heal should target the player, got %q", card.Logic.Target)
	}
}

func TestAttackResultPassesThrough(t *testing.T) {
	svc := fakeService(func(_ context.Context, _, _ string) (*models.RawCard, error) {
		hit := 70
		return &models.RawCard{
			Word:       "flame",
			Name:       "Flame Lance",
			Role:       "attack",
			Type:       "pierce",
			TargetStat: "magic",
			BaseValue:  f64(120),
			FinalValue: f64(95),
			HitRate:    &hit,
		}, nil
	})
	g := NewGenerator(svc, time.Second)

	card := g.GenerateWithTimeout(context.Background(), "flame", models.RoleAttack, nil)
	if card.Name != "Flame Lance" || card.Type != "pierce" || card.TargetStat != "magic" {
		t.Errorf("attack result should keep its shape, got %+v", card)
	}
	if card.FinalValue != 95 || card.HitRate != 70 {
		t.Errorf("attack numbers mangled: final=%v hit=%d", card.FinalValue, card.HitRate)
	}
	if card.Rank != rank.S {
		t.Errorf("rank from baseValue 120 = %s, want S", card.Rank)
	}
}

func TestFallbacksAreDeterministic(t *testing.T) {
	if !reflect.DeepEqual(BasicSupportFallback("x"), BasicSupportFallback("x")) {
		t.Errorf("basic support fallback must be deterministic")
	}
	c := BasicSupportFallback("")
	if c.Word != "support" {
		t.Errorf("empty word should default to the support placeholder, got %q", c.Word)
	}
	if c.FinalValue != DefaultHealValue || c.HitRate != 100 || c.Cost != 0 {
		t.Errorf("fallback constants drifted: %+v", c)
	}
}
