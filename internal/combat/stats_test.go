package combat

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// TestMitigationGoldenVector pins the worked mitigation example: a
// Battleship-class defender (armor 250, shield_deflection 120, dodge 50)
// against an attacker with armor_piercing 100, shield_piercing 60,
// accuracy 200.
func TestMitigationGoldenVector(t *testing.T) {
	def := DefenseStats{Armor: 250, ShieldDeflection: 120, Dodge: 50, Class: ClassBattleship}
	pierce := PierceStats{ArmorPiercing: 100, ShieldPiercing: 60, Accuracy: 200}

	got := Mitigation(def, pierce)
	want := 0.582186
	if !almostEqual(got, want, 0.003) {
		t.Errorf("Mitigation = %v, want ~%v", got, want)
	}
}

func TestMitigationClampedToUnitRange(t *testing.T) {
	def := DefenseStats{Armor: 1e9, ShieldDeflection: 1e9, Dodge: 1e9, Class: ClassBattleship}
	pierce := PierceStats{ArmorPiercing: 1, ShieldPiercing: 1, Accuracy: 1}
	if got := Mitigation(def, pierce); got < 0 || got > 1 {
		t.Errorf("Mitigation = %v, want in [0,1]", got)
	}

	def2 := DefenseStats{Armor: 0, ShieldDeflection: 0, Dodge: 0, Class: ClassBattleship}
	pierce2 := PierceStats{ArmorPiercing: 1e9, ShieldPiercing: 1e9, Accuracy: 1e9}
	if got := Mitigation(def2, pierce2); got < 0 {
		t.Errorf("Mitigation = %v, want >= 0", got)
	}
}

func TestMitigationZeroPiercingDoesNotDivideByZero(t *testing.T) {
	def := DefenseStats{Armor: 100, ShieldDeflection: 100, Dodge: 100, Class: ClassSurvey}
	pierce := PierceStats{ArmorPiercing: 0, ShieldPiercing: 0, Accuracy: 0}
	got := Mitigation(def, pierce)
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("Mitigation with zero piercing = %v, want finite", got)
	}
	if want := 1 - math.Pow(0.7, 3); !almostEqual(got, want, 1e-6) {
		t.Errorf("Mitigation with zero piercing = %v, want the Survey ceiling 1-(1-0.3)^3 = %v", got, want)
	}
}

func TestMitigationZeroDefenseApproachesZero(t *testing.T) {
	def := DefenseStats{Armor: 0, ShieldDeflection: 0, Dodge: 0, Class: ClassSurvey}
	pierce := PierceStats{ArmorPiercing: 100, ShieldPiercing: 100, Accuracy: 100}
	got := Mitigation(def, pierce)
	if got > 0.5 {
		t.Errorf("Mitigation with zero defense = %v, want a low value", got)
	}
}

func TestMitigationMonotonicInPiercing(t *testing.T) {
	def := DefenseStats{Armor: 200, ShieldDeflection: 200, Dodge: 200, Class: ClassSurvey}
	low := Mitigation(def, PierceStats{ArmorPiercing: 50, ShieldPiercing: 50, Accuracy: 50})
	high := Mitigation(def, PierceStats{ArmorPiercing: 500, ShieldPiercing: 500, Accuracy: 500})
	if high >= low {
		t.Errorf("mitigation should decrease as piercing increases: low=%v high=%v", low, high)
	}
}

func TestMitigationMonotonicInDefense(t *testing.T) {
	pierce := PierceStats{ArmorPiercing: 100, ShieldPiercing: 100, Accuracy: 100}
	low := Mitigation(DefenseStats{Armor: 10, ShieldDeflection: 10, Dodge: 10, Class: ClassSurvey}, pierce)
	high := Mitigation(DefenseStats{Armor: 1000, ShieldDeflection: 1000, Dodge: 1000, Class: ClassSurvey}, pierce)
	if high <= low {
		t.Errorf("mitigation should increase as defense increases: low=%v high=%v", low, high)
	}
}

func TestShipClassCoefficientsArePositive(t *testing.T) {
	classes := []ShipClass{ClassSurvey, ClassBattleship, ClassExplorer, ClassInterceptor, ClassArmada}
	for _, c := range classes {
		cA, cS, cD := mitigationCoefficients(c)
		if cA <= 0 || cS <= 0 || cD <= 0 {
			t.Errorf("class %v has a non-positive coefficient: %v %v %v", c, cA, cS, cD)
		}
	}
}
