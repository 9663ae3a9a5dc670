package data

import (
	"encoding/json"
	"os"

	"github.com/JustinWhittecar/kobayashi/internal/lcars"
)

// DefaultProfilePath mirrors original_source's DEFAULT_PROFILE_PATH.
const DefaultProfilePath = "profile.json"

// LoadProfile reads a player profile from path into the shape
// lcars.Compile takes directly, returning an empty profile if the file is
// missing or malformed rather than failing the caller — a Monte Carlo run
// should still be runnable with no profile configured, per
// original_source's load_profile falling back to PlayerProfile::default().
func LoadProfile(path string) lcars.Profile {
	raw, err := os.ReadFile(path)
	if err != nil {
		return lcars.Profile{}
	}
	var p lcars.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return lcars.Profile{}
	}
	return p
}
