package stats

import "testing"

func TestRecordHitKeepsStrongest(t *testing.T) {
	ResetDaily()
	RecordHit(25, "Ada", "flame", "Flame Lance")
	RecordHit(10, "Brin", "pebble", "Pebble Toss")
	got := Today().TopHit
	if got.Damage != 25 || got.Attacker != "Ada" {
		t.Errorf("top hit = %+v, want Ada's 25", got)
	}
	RecordHit(40, "Brin", "comet", "Comet Fall")
	if got := Today().TopHit; got.Damage != 40 || got.Attacker != "Brin" {
		t.Errorf("top hit = %+v, want Brin's 40", got)
	}
	// Zero-damage hits never count.
	RecordHit(0, "Ada", "x", "X")
	if got := Today().TopHit; got.Damage != 40 {
		t.Errorf("zero damage overwrote the record: %+v", got)
	}
}

func TestRecordWinKeepsFastest(t *testing.T) {
	ResetDaily()
	RecordWin(9, "Ada")
	RecordWin(4, "Brin")
	RecordWin(12, "Cem")
	got := Today().FastestWin
	if got.Turns != 4 || got.Winner != "Brin" {
		t.Errorf("fastest win = %+v, want Brin in 4", got)
	}
}
