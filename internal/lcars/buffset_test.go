package lcars

import (
	"math"
	"testing"
)

func TestStatBucketReduceIdentity(t *testing.T) {
	b := &StatBucket{}
	if got := b.Reduce(100); got != 100 {
		t.Errorf("empty bucket Reduce(100) = %v, want 100", got)
	}
}

func TestStatBucketMultiplyThenAdd(t *testing.T) {
	// effective = base * (1 + ModifierAdd) + FlatAdd
	b := &StatBucket{}
	b.ApplyMultiply(1.20) // +20%
	b.ApplyAdd(10)        // +10 flat
	got := b.Reduce(100)
	want := 100*(1+0.20) + 10
	if got != want {
		t.Errorf("Reduce = %v, want %v", got, want)
	}
}

func TestStatBucketMultiplyStacksAdditively(t *testing.T) {
	b := &StatBucket{}
	b.ApplyMultiply(1.10)
	b.ApplyMultiply(1.10)
	got := b.Reduce(100)
	want := 100 * (1 + 0.10 + 0.10)
	// 1.10-1 is not exact in binary floating point, so compare to rounding.
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Reduce = %v, want %v", got, want)
	}
}

func TestStatBucketSetCollapsesPriorAccumulation(t *testing.T) {
	b := &StatBucket{}
	b.ApplyMultiply(1.50)
	b.ApplyAdd(25)
	b.ApplySet(200)
	b.ApplyAdd(5) // folds onto the fresh base normally
	got := b.Reduce(999) // rawBase is ignored once Set fires
	want := 200 + 5.0
	if got != want {
		t.Errorf("Reduce = %v, want %v", got, want)
	}
}

func TestStatBucketMinMaxClampPostReduction(t *testing.T) {
	b := &StatBucket{}
	b.ApplyAdd(1000)
	b.ApplyMax(50)
	if got := b.Reduce(0); got != 50 {
		t.Errorf("max clamp: Reduce = %v, want 50", got)
	}

	b2 := &StatBucket{}
	b2.ApplyAdd(-1000)
	b2.ApplyMin(-10)
	if got := b2.Reduce(0); got != -10 {
		t.Errorf("min clamp: Reduce = %v, want -10", got)
	}
}

func TestStatBucketMinTakesTightestBound(t *testing.T) {
	b := &StatBucket{}
	b.ApplyMin(10)
	b.ApplyMin(20) // tighter (higher) floor wins
	b.ApplyMin(5)  // looser, ignored
	if got := b.Reduce(0); got != 20 {
		t.Errorf("Reduce = %v, want 20", got)
	}
}

func TestStatBucketAddPctOfMax(t *testing.T) {
	b := &StatBucket{}
	b.ApplyAddPctOfMax(0.10, 500) // +10% of 500 = 50 flat
	if got := b.Reduce(100); got != 150 {
		t.Errorf("Reduce = %v, want 150", got)
	}
}

func TestBuffSetGetUnknownStatReturnsRawBase(t *testing.T) {
	bs := &BuffSet{}
	if got := bs.Get("attack", 42); got != 42 {
		t.Errorf("Get on untouched stat = %v, want 42", got)
	}
}

func TestClampPiercingFloorsAtEpsilon(t *testing.T) {
	if got := ClampPiercing(0); got != Epsilon {
		t.Errorf("ClampPiercing(0) = %v, want %v", got, Epsilon)
	}
	if got := ClampPiercing(-5); got != Epsilon {
		t.Errorf("ClampPiercing(-5) = %v, want %v", got, Epsilon)
	}
	if got := ClampPiercing(50); got != 50 {
		t.Errorf("ClampPiercing(50) = %v, want 50", got)
	}
}

func TestFinalizeTriggerBucketsGroupsByTrigger(t *testing.T) {
	bs := &BuffSet{
		Dynamic: []DynamicEffect{
			{Trigger: TriggerRoundStart},
			{Trigger: TriggerKill},
			{Trigger: TriggerRoundStart},
		},
	}
	finalizeTriggerBuckets(bs)

	if got := bs.TriggerBuckets[TriggerRoundStart]; len(got) != 2 {
		t.Errorf("RoundStart bucket = %v, want 2 entries", got)
	}
	if got := bs.TriggerBuckets[TriggerKill]; len(got) != 1 {
		t.Errorf("Kill bucket = %v, want 1 entry", got)
	}
}
