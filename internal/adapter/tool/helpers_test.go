package tool

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"autochat/internal/domain"
	"autochat/internal/profile"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedNow pins tool clocks for deterministic output.
func fixedNow() time.Time {
	return time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
}

func nowFunc() func() time.Time {
	return func() time.Time { return fixedNow() }
}

func completeProfile() profile.Profile {
	var p profile.Profile
	p.Core.Name.BusinessFirstName = "Alex"
	p.Core.Name.BusinessLastName = "Nguyen"
	p.Core.BusinessTitle = "Data Scientist"
	p.Core.Rank = "Director"
	p.Experience.Experiences = []profile.ExperienceEntry{{Title: "Data Scientist"}}
	p.Qualification.Educations = []profile.EducationEntry{{Degree: "MSc"}}
	p.Skills.Top = []profile.Skill{{Name: "Python"}}
	p.CareerAspirationPreference.PreferredAspirations = []string{"Lead AI teams"}
	p.CareerLocationPreference.PreferredRelocationRegions = []string{"EMEA"}
	p.CareerRolePreference.PreferredRoles = []string{"ML Lead"}
	p.Language.Languages = []profile.LanguageEntry{{Name: "English", Proficiency: "native"}}
	return p
}

func loaderFor(p profile.Profile) ProfileLoader {
	return func() profile.Profile { return p }
}

// runTool executes a tool and decodes its JSON content.
func runTool(t *testing.T, tl domain.Tool, params string) map[string]any {
	t.Helper()
	res, err := tl.Execute(context.Background(), json.RawMessage(params))
	require.NoError(t, err)
	require.False(t, res.IsError, "unexpected error result: %s", res.Content)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Content), &out))
	return out
}
