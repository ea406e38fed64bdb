package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autochat/internal/profile"
)

func TestProfileAnalyzerCompleteProfile(t *testing.T) {
	tl := NewProfileAnalyzerTool(loaderFor(completeProfile()), 80, testLogger())
	out := runTool(t, tl, `{}`)

	assert.Equal(t, true, out["success"])
	assert.Nil(t, out["error"])
	assert.EqualValues(t, 100, out["completionScore"])

	actions := out["nextActions"].([]any)
	require.Len(t, actions, 2)
	first := actions[0].(map[string]any)
	assert.Equal(t, "Find Job Matches", first["title"])
	assert.Equal(t, "get_matches", first["tool"])
}

func TestProfileAnalyzerEmptyProfile(t *testing.T) {
	tl := NewProfileAnalyzerTool(loaderFor(profile.Profile{}), 80, testLogger())
	out := runTool(t, tl, `{}`)

	assert.EqualValues(t, 0, out["completionScore"])
	assert.Len(t, out["missingSections"].([]any), 7)
	assert.Len(t, out["insights"].([]any), 7)
	// One recommended action per insight, priorities 1..n.
	actions := out["nextActions"].([]any)
	require.Len(t, actions, 7)
	assert.EqualValues(t, 1, actions[0].(map[string]any)["priority"])
}

func TestProfileAnalyzerThresholdOverride(t *testing.T) {
	p := completeProfile()
	p.Skills = profile.Skills{} // drop 20 points, score 80
	tl := NewProfileAnalyzerTool(loaderFor(p), 80, testLogger())

	out := runTool(t, tl, `{}`)
	assert.EqualValues(t, 80, out["completionScore"])
	assert.Len(t, out["nextActions"].([]any), 2, "at threshold counts as complete")

	out = runTool(t, tl, `{"completion_threshold": 90}`)
	actions := out["nextActions"].([]any)
	require.Len(t, actions, 1)
	assert.Equal(t, "infer_skills", actions[0].(map[string]any)["tool"])
}

func TestProfileAnalyzerRejectsBadThreshold(t *testing.T) {
	tl := NewProfileAnalyzerTool(loaderFor(completeProfile()), 80, testLogger())
	out := runTool(t, tl, `{"completion_threshold": 150}`)

	assert.Equal(t, false, out["success"])
	assert.Contains(t, out["error"], "between 0 and 100")
}

func TestInferSkills(t *testing.T) {
	tl := NewInferSkillsTool(loaderFor(profile.Profile{}), testLogger())
	out := runTool(t, tl, `{}`)

	assert.Equal(t, true, out["success"])
	assert.Equal(t, []any{"A2A", "MCP", "RAG"}, out["topSkills"])
	assert.EqualValues(t, 0.75, out["confidence"])
}

func TestUpdateProfileSkills(t *testing.T) {
	tl := NewUpdateProfileTool(loaderFor(profile.Profile{}), 80, testLogger())
	out := runTool(t, tl, `{"section": "skills"}`)

	assert.Equal(t, true, out["success"])
	assert.Equal(t, "skills", out["section"])
	assert.EqualValues(t, 0, out["previous_completion_score"])
	assert.EqualValues(t, 15, out["estimated_new_score"])
}

func TestUpdateProfileDefaultsToSkills(t *testing.T) {
	tl := NewUpdateProfileTool(loaderFor(completeProfile()), 80, testLogger())
	out := runTool(t, tl, `{}`)

	assert.Equal(t, "skills", out["section"])
	assert.EqualValues(t, 100, out["previous_completion_score"])
	assert.EqualValues(t, 100, out["estimated_new_score"], "estimate caps at 100")
}

func TestUpdateProfileRejectsOtherSections(t *testing.T) {
	tl := NewUpdateProfileTool(loaderFor(profile.Profile{}), 80, testLogger())
	out := runTool(t, tl, `{"section": "experience"}`)

	assert.Equal(t, false, out["success"])
	assert.Contains(t, out["error"], "not yet supported")
}
