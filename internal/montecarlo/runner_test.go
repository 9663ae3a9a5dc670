package montecarlo

import (
	"testing"

	"github.com/JustinWhittecar/kobayashi/internal/combat"
	"github.com/JustinWhittecar/kobayashi/internal/lcars"
)

func testScenario() Scenario {
	attacker := combat.DefenderStats{
		AttackerStats: combat.AttackerStats{
			Attack: 400, HullHP: 8000, ShieldHP: 1500,
			ArmorPiercing: 120, ShieldPiercing: 90, Accuracy: 150,
			CritChance: 0.2, CritMultiplier: 1.5,
		},
		Armor: 150, ShieldDeflection: 150, Dodge: 80, ShipClass: combat.ClassBattleship,
	}
	defender := combat.DefenderStats{
		AttackerStats: combat.AttackerStats{
			Attack: 300, HullHP: 6000, ShieldHP: 1000,
			ArmorPiercing: 80, ShieldPiercing: 80, Accuracy: 100,
		},
		Armor: 120, ShieldDeflection: 120, Dodge: 60, ShipClass: combat.ClassSurvey,
	}
	return Scenario{
		Attacker:      attacker,
		Defender:      defender,
		AttackerBuffs: &lcars.BuffSet{},
		DefenderBuffs: &lcars.BuffSet{},
	}
}

func TestRunMonteCarloDeterministicAcrossWorkerCounts(t *testing.T) {
	scenario := testScenario()
	opts1 := Options{N: 500, BaseSeed: 7, Workers: 1}
	opts4 := Options{N: 500, BaseSeed: 7, Workers: 4}

	got1 := RunMonteCarlo(scenario, opts1)
	got4 := RunMonteCarlo(scenario, opts4)

	if got1 != got4 {
		t.Errorf("results differ by worker count:\n1 worker: %+v\n4 workers: %+v", got1, got4)
	}
}

func TestRunMonteCarloRatesSumToOne(t *testing.T) {
	stats := RunMonteCarlo(testScenario(), Options{N: 300, BaseSeed: 3})
	sum := stats.WinRate + stats.StallRate + stats.LossRate
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("win+stall+loss = %v, want ~1.0", sum)
	}
}

func TestRunMonteCarloZeroSamplesReturnsZeroValue(t *testing.T) {
	stats := RunMonteCarlo(testScenario(), Options{N: 0, BaseSeed: 1})
	if stats.N != 0 {
		t.Errorf("N = %d, want 0", stats.N)
	}
}

func TestWilsonIntervalBracketsWinRate(t *testing.T) {
	stats := RunMonteCarlo(testScenario(), Options{N: 1000, BaseSeed: 42})
	lo, hi := stats.WinRate95CI[0], stats.WinRate95CI[1]
	if lo > stats.WinRate || hi < stats.WinRate {
		t.Errorf("win_rate %v not inside CI [%v, %v]", stats.WinRate, lo, hi)
	}
	if lo < 0 || hi > 1 {
		t.Errorf("CI out of [0,1]: [%v, %v]", lo, hi)
	}
}
