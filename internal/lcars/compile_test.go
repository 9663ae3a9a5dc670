package lcars

import "testing"

func officer(id string, captain, bridge, belowDecks *Ability) *Officer {
	return &Officer{ID: id, Name: id, Captain: captain, Bridge: bridge, BelowDecks: belowDecks}
}

func passiveAdd(stat string, value float64) *Ability {
	return &Ability{
		Name: "test-ability",
		Effects: []Effect{
			{Kind: EffectStatModify, Stat: stat, Target: TargetSelf, Operator: OpAdd, Trigger: TriggerPassive, Value: value},
		},
	}
}

func minimalCrew(captain *Officer, bd ...*Officer) *Crew {
	return &Crew{
		Captain:    OfficerAssignment{Officer: captain, Seat: SeatCaptain, Rank: 1},
		Bridge:     [2]OfficerAssignment{{Officer: bd[0], Seat: SeatBridge, Rank: 1}, {Officer: bd[1], Seat: SeatBridge, Rank: 1}},
		BelowDecks: []OfficerAssignment{{Officer: bd[2], Seat: SeatBelowDecks, Rank: 1}},
	}
}

func TestCompilePassiveStaticFoldsIntoStaticBucket(t *testing.T) {
	cap := officer("cap", passiveAdd("attack", 50), nil, nil)
	o2, o3, o4 := officer("o2", nil, nil, nil), officer("o3", nil, nil, nil), officer("o4", nil, nil, nil)
	crew := minimalCrew(cap, o2, o3, o4)

	bs, err := Compile(crew, StatSource{}, Profile{}, CompileOptions{})
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if got := bs.Get("attack", 100); got != 150 {
		t.Errorf("attack after compile = %v, want 150", got)
	}
	if len(bs.Dynamic) != 0 {
		t.Errorf("expected no dynamic effects, got %d", len(bs.Dynamic))
	}
}

func TestCompileNonPassiveEffectIsDynamic(t *testing.T) {
	ability := &Ability{
		Name: "on-hit",
		Effects: []Effect{
			{Kind: EffectStatModify, Stat: "attack", Target: TargetSelf, Operator: OpAdd, Trigger: TriggerHit, Value: 10},
		},
	}
	cap := officer("cap", ability, nil, nil)
	o2, o3, o4 := officer("o2", nil, nil, nil), officer("o3", nil, nil, nil), officer("o4", nil, nil, nil)
	crew := minimalCrew(cap, o2, o3, o4)

	bs, err := Compile(crew, StatSource{}, Profile{}, CompileOptions{})
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if len(bs.Dynamic) != 1 {
		t.Fatalf("expected 1 dynamic effect, got %d", len(bs.Dynamic))
	}
	if bs.Dynamic[0].Kind != EffectStatModify {
		t.Errorf("Kind = %v, want EffectStatModify", bs.Dynamic[0].Kind)
	}
	if got := bs.TriggerBuckets[TriggerHit]; len(got) != 1 {
		t.Errorf("Hit trigger bucket = %v, want 1 entry", got)
	}
}

func TestCompileExtraAttackAlwaysDynamic(t *testing.T) {
	ability := &Ability{
		Name: "double-shot",
		Effects: []Effect{
			{Kind: EffectExtraAttack, Target: TargetEnemy, Trigger: TriggerAttack, Chance: 0.25, Multiplier: 0.5},
		},
	}
	cap := officer("cap", ability, nil, nil)
	o2, o3, o4 := officer("o2", nil, nil, nil), officer("o3", nil, nil, nil), officer("o4", nil, nil, nil)
	crew := minimalCrew(cap, o2, o3, o4)

	bs, err := Compile(crew, StatSource{}, Profile{}, CompileOptions{})
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if len(bs.Dynamic) != 1 || bs.Dynamic[0].Kind != EffectExtraAttack {
		t.Fatalf("expected one ExtraAttack dynamic effect, got %+v", bs.Dynamic)
	}
	if bs.Dynamic[0].Chance != 0.25 || bs.Dynamic[0].Multiplier != 0.5 {
		t.Errorf("dynamic effect fields not preserved: %+v", bs.Dynamic[0])
	}
}

func TestCompileScalingResolvesAgainstRank(t *testing.T) {
	ability := &Ability{
		Name: "scaled",
		Effects: []Effect{
			{Kind: EffectStatModify, Stat: "attack", Target: TargetSelf, Operator: OpAdd, Trigger: TriggerPassive,
				Scaling: &Scaling{Base: 10, PerRank: 2, MaxRank: 5}},
		},
	}
	cap := &Officer{ID: "cap", Captain: ability}
	o2, o3, o4 := officer("o2", nil, nil, nil), officer("o3", nil, nil, nil), officer("o4", nil, nil, nil)
	crew := &Crew{
		Captain:    OfficerAssignment{Officer: cap, Seat: SeatCaptain, Rank: 3},
		Bridge:     [2]OfficerAssignment{{Officer: o2, Seat: SeatBridge, Rank: 1}, {Officer: o3, Seat: SeatBridge, Rank: 1}},
		BelowDecks: []OfficerAssignment{{Officer: o4, Seat: SeatBelowDecks, Rank: 1}},
	}

	bs, err := Compile(crew, StatSource{}, Profile{}, CompileOptions{})
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	// rank 3: base(10) + (3-1)*2 = 14
	if got := bs.Get("attack", 0); got != 14 {
		t.Errorf("attack = %v, want 14", got)
	}
}

func TestCompileRejectsInvalidCrew(t *testing.T) {
	cap := officer("dup", nil, nil, nil)
	crew := &Crew{
		Captain:    OfficerAssignment{Officer: cap, Seat: SeatCaptain, Rank: 1},
		Bridge:     [2]OfficerAssignment{{Officer: cap, Seat: SeatBridge, Rank: 1}, {Officer: officer("o3", nil, nil, nil), Seat: SeatBridge, Rank: 1}},
		BelowDecks: []OfficerAssignment{{Officer: officer("o4", nil, nil, nil), Seat: SeatBelowDecks, Rank: 1}},
	}
	if _, err := Compile(crew, StatSource{}, Profile{}, CompileOptions{}); err != ErrDuplicateOfficer {
		t.Errorf("Compile err = %v, want ErrDuplicateOfficer", err)
	}
}

func TestApplyProfileWeaponDamageMapsToAttack(t *testing.T) {
	o1, o2, o3, o4 := officer("o1", nil, nil, nil), officer("o2", nil, nil, nil), officer("o3", nil, nil, nil), officer("o4", nil, nil, nil)
	crew := minimalCrew(o1, o2, o3, o4)

	bs, err := Compile(crew, StatSource{}, Profile{Bonuses: map[string]float64{"weapon_damage": 0.30}}, CompileOptions{})
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if got := bs.Get("attack", 100); got != 130 {
		t.Errorf("attack = %v, want 130", got)
	}
}

func TestApplyProfileUnknownKeyWarns(t *testing.T) {
	o1, o2, o3, o4 := officer("o1", nil, nil, nil), officer("o2", nil, nil, nil), officer("o3", nil, nil, nil), officer("o4", nil, nil, nil)
	crew := minimalCrew(o1, o2, o3, o4)

	bs, err := Compile(crew, StatSource{}, Profile{Bonuses: map[string]float64{"unknown_thing": 1}}, CompileOptions{})
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if len(bs.Warnings) != 1 {
		t.Errorf("Warnings = %v, want 1 entry", bs.Warnings)
	}
}
