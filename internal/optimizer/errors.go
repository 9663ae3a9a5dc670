package optimizer

import "errors"

// ErrNoEligibleCandidates is returned by RunWithProgress when a scenario's
// roster yields zero crew candidates under either strategy — no
// captain-eligible officer for the exhaustive path, or too small/synergy-
// starved a roster for the genetic path's seed population — so a job can
// surface it as a real failure (spec.md §4.4/§5's JobError state) instead
// of silently completing with an empty ranking.
var ErrNoEligibleCandidates = errors.New("optimizer: no eligible crew candidates for this roster")
