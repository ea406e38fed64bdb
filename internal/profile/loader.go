package profile

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads a profile JSON file from disk. A missing or malformed file
// returns a zero profile and the error; callers typically log a warning
// and continue with the zero value.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile %s: %w", path, err)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return p, nil
}
