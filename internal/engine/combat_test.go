package engine

import (
	"errors"
	"testing"

	"github.com/derajoxford/stratagem-server-sub002/internal/config"
	"github.com/derajoxford/stratagem-server-sub002/internal/game"
)

func defaultWar(t *testing.T) *config.WarSettings {
	t.Helper()
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	return &cfg.War
}

func TestResolve_Deterministic(t *testing.T) {
	w := defaultWar(t)
	first, err := Resolve(w, game.AttackGroundAssault, 500, 400, 120)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Resolve(w, game.AttackGroundAssault, 500, 400, 120)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if *again != *first {
			t.Fatalf("resolve is not deterministic: %+v vs %+v", again, first)
		}
	}
}

func TestResolve_NuclearStrikeFinalCap(t *testing.T) {
	w := defaultWar(t)
	out, err := Resolve(w, game.AttackNuclearStrike, 1000, 10, 160)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.OutcomeName != "Apocalyptic Detonation" {
		t.Fatalf("expected Apocalyptic Detonation, got %q", out.OutcomeName)
	}
	if out.Multiplier != 5.0 {
		t.Fatalf("expected multiplier 5.0, got %v", out.Multiplier)
	}
	if out.RatioCategory != config.RatioOverwhelmingAdvantage {
		t.Fatalf("expected overwhelming advantage, got %q", out.RatioCategory)
	}
	// Raw damage is 40*5=200; the final cap clamps what actually lands.
	if out.RawDamage != 200 {
		t.Fatalf("expected raw damage 200, got %d", out.RawDamage)
	}
	if out.FinalDamage != 75 {
		t.Fatalf("expected final damage 75, got %d", out.FinalDamage)
	}
}

func TestResolve_ZeroDefenderPower(t *testing.T) {
	w := defaultWar(t)
	out, err := Resolve(w, game.AttackGroundAssault, 100, 0, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.RatioCategory != config.RatioOverwhelmingAdvantage {
		t.Fatalf("zero defender power must count as overwhelming advantage, got %q", out.RatioCategory)
	}
}

func TestResolve_InvalidAttackType(t *testing.T) {
	w := defaultWar(t)
	if _, err := Resolve(w, game.AttackType("orbital_laser"), 10, 10, 100); !errors.Is(err, ErrInvalidAttackType) {
		t.Fatalf("expected ErrInvalidAttackType, got %v", err)
	}
}

func TestResolve_RollOutsideDomain(t *testing.T) {
	w := defaultWar(t)
	for _, roll := range []int{0, -5, 201, 10000} {
		if _, err := Resolve(w, game.AttackGroundAssault, 10, 10, roll); !errors.Is(err, ErrInvalidRoll) {
			t.Fatalf("roll %d: expected ErrInvalidRoll, got %v", roll, err)
		}
	}
}

func TestResolve_ModifierClampedToDomain(t *testing.T) {
	w := defaultWar(t)
	// Severely outgunned (-40) on a roll of 5 would be negative; the
	// adjusted roll clamps to the domain floor instead of erroring.
	out, err := Resolve(w, game.AttackGroundAssault, 1, 100, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.AdjustedRoll != 1 {
		t.Fatalf("expected adjusted roll clamped to 1, got %d", out.AdjustedRoll)
	}
	if out.OutcomeName != "Utter Failure" {
		t.Fatalf("expected Utter Failure, got %q", out.OutcomeName)
	}
	if out.FinalDamage != 0 {
		t.Fatalf("expected zero damage, got %d", out.FinalDamage)
	}
}

func TestRatioCategory(t *testing.T) {
	cases := []struct {
		att, def float64
		want     string
	}{
		{10, 100, config.RatioSeverelyOutgunned},
		{30, 100, config.RatioSignificantlyOutgunned},
		{70, 100, config.RatioSlightlyOutgunned},
		{100, 100, config.RatioEvenMatch},
		{150, 100, config.RatioSlightAdvantage},
		{300, 100, config.RatioSignificantAdvantage},
		{500, 100, config.RatioOverwhelmingAdvantage},
		{1, 0, config.RatioOverwhelmingAdvantage},
	}
	for _, tc := range cases {
		if got := RatioCategory(tc.att, tc.def); got != tc.want {
			t.Fatalf("RatioCategory(%v, %v) = %q, want %q", tc.att, tc.def, got, tc.want)
		}
	}
}

func TestEstimateLosses(t *testing.T) {
	al, dl := EstimateLosses(0, 1.0)
	if al != 0 || dl != 0 {
		t.Fatalf("no committed units must mean no losses, got %d/%d", al, dl)
	}
	failAtt, failDef := EstimateLosses(100, 0)
	winAtt, winDef := EstimateLosses(100, 1.5)
	if winAtt >= failAtt {
		t.Fatalf("better outcomes must cost the attacker less: %d vs %d", winAtt, failAtt)
	}
	if winDef <= failDef {
		t.Fatalf("better outcomes must cost the defender more: %d vs %d", winDef, failDef)
	}
}

func TestPower(t *testing.T) {
	w := defaultWar(t)
	m := &game.Military{Soldiers: 1000, Tanks: 10, Ships: 5}
	got := Power(m, w.UnitCombatStrengths)
	want := 1000.0 + 10*10.0 + 5*20.0
	if got != want {
		t.Fatalf("Power = %v, want %v", got, want)
	}
	if Power(nil, w.UnitCombatStrengths) != 0 {
		t.Fatalf("nil military must have zero power")
	}
}
