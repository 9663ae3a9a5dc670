package combat

import "math"

// ShipClass selects the mitigation coefficient tuple used for a defender
// (spec.md §4.2).
type ShipClass string

const (
	ClassSurvey      ShipClass = "Survey"
	ClassBattleship  ShipClass = "Battleship"
	ClassExplorer    ShipClass = "Explorer"
	ClassInterceptor ShipClass = "Interceptor"
	ClassArmada      ShipClass = "Armada"
)

// mitigationCoefficients returns (c_A, c_S, c_D) for the given class,
// defaulting to the Survey/Armada tuple for unrecognized classes since
// they share coefficients in the pinned table.
func mitigationCoefficients(class ShipClass) (cA, cS, cD float64) {
	switch class {
	case ClassBattleship:
		return 0.55, 0.20, 0.20
	case ClassExplorer:
		return 0.20, 0.55, 0.20
	case ClassInterceptor:
		return 0.20, 0.20, 0.55
	default: // Survey, Armada
		return 0.30, 0.30, 0.30
	}
}

const epsilon = 1e-9

// logistic implements f(x) = 1 / (1 + 4^(1.1 - x)).
func logistic(x float64) float64 {
	return 1.0 / (1.0 + math.Pow(4, 1.1-x))
}

// clampPierce enforces the ε-floor spec.md §3 requires on piercing
// denominators.
func clampPierce(x float64) float64 {
	return math.Max(epsilon, x)
}

// PierceStats are the attacker-side values paired against a defender's
// three defense components in the mitigation formula.
type PierceStats struct {
	ArmorPiercing  float64
	ShieldPiercing float64
	Accuracy       float64
}

// DefenseStats are the defender-side values the mitigation formula reads.
type DefenseStats struct {
	Armor            float64
	ShieldDeflection float64
	Dodge            float64
	Class            ShipClass
}

// Mitigation computes the total fraction of raw damage absorbed, clamped
// to [0, 1] (spec.md §4.2).
func Mitigation(def DefenseStats, pierce PierceStats) float64 {
	cA, cS, cD := mitigationCoefficients(def.Class)

	xA := def.Armor / clampPierce(pierce.ArmorPiercing)
	xS := def.ShieldDeflection / clampPierce(pierce.ShieldPiercing)
	xD := def.Dodge / clampPierce(pierce.Accuracy)

	fA := logistic(xA)
	fS := logistic(xS)
	fD := logistic(xD)

	m := 1 - (1-cA*fA)*(1-cS*fS)*(1-cD*fD)
	if m < 0 {
		return 0
	}
	if m > 1 {
		return 1
	}
	return m
}

// AttackerStats is the attacker (player ship) side of a fight (spec.md §3).
type AttackerStats struct {
	Attack               float64
	HullHP               float64
	ShieldHP             float64
	ShieldMitigationFrac float64
	ArmorPiercing        float64
	ShieldPiercing       float64
	Accuracy             float64
	CritChance           float64
	CritMultiplier       float64
	ApexShred            float64
	IsolyticDamage       float64
}

// DefenderStats is the defender (hostile) side of a fight (spec.md §3). It
// carries the same base combat fields as AttackerStats — hostiles strike
// back symmetrically in the round loop — plus its own defense components.
type DefenderStats struct {
	AttackerStats

	Armor            float64
	ShieldDeflection float64
	Dodge            float64
	ApexBarrier      float64
	IsolyticDefense  float64
	ShipClass        ShipClass
}

// ToStatSource exposes the fields the lcars compiler needs to resolve
// AddPctOfMax and to know which stat keys exist on this combatant.
func (a AttackerStats) ToStatSource() map[string]float64 {
	return map[string]float64{
		"attack":            a.Attack,
		"hull_hp":           a.HullHP,
		"shield_hp":         a.ShieldHP,
		"shield_mitigation": a.ShieldMitigationFrac,
		"armor_piercing":    a.ArmorPiercing,
		"shield_piercing":   a.ShieldPiercing,
		"accuracy":          a.Accuracy,
		"crit_chance":       a.CritChance,
		"crit_damage":       a.CritMultiplier,
		"apex_shred":        a.ApexShred,
		"isolytic_damage":   a.IsolyticDamage,
	}
}
