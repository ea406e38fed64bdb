package profile

// DefaultCompletionThreshold is the score below which the profile is
// considered too thin for job matching.
const DefaultCompletionThreshold = 80

// Section weights. They sum to 100 so the completion score is a percentage.
const (
	weightExperience    = 25
	weightQualification = 15
	weightSkills        = 20
	weightAspiration    = 10
	weightLocation      = 10
	weightRole          = 10
	weightLanguage      = 10
)

// Insight describes one gap in the profile and how to close it.
type Insight struct {
	Area           string `json:"area"`
	Observation    string `json:"observation"`
	Action         string `json:"action"`
	Recommendation string `json:"recommendation"`
}

// NextAction is a prioritized follow-up the assistant can suggest.
type NextAction struct {
	Title    string `json:"title"`
	Tool     string `json:"tool"`
	Priority int    `json:"priority"`
}

// Analysis is the scorer's full output.
type Analysis struct {
	CompletionScore int            `json:"completionScore"`
	SectionScores   map[string]int `json:"sectionScores"`
	MissingSections []string       `json:"missingSections"`
	Insights        []Insight      `json:"insights"`
	NextActions     []NextAction   `json:"nextActions"`
}

// Analyze scores a profile section by section. Each of the seven sections
// contributes its fixed weight when populated and zero otherwise, so the
// total is always within 0 to 100. Absent sections produce an insight in
// a fixed order. When the score falls below threshold the next actions
// mirror the insights one to one; otherwise two standing suggestions are
// returned. The function never mutates its input.
func Analyze(p Profile, threshold int) Analysis {
	a := Analysis{
		SectionScores:   make(map[string]int, 7),
		MissingSections: []string{},
		Insights:        []Insight{},
		NextActions:     []NextAction{},
	}

	score := 0
	mark := func(section string, ok bool, weight int, missingAs string, in Insight) {
		pts := 0
		if ok {
			pts = weight
		}
		a.SectionScores[section] = pts
		score += pts
		if !ok {
			a.MissingSections = append(a.MissingSections, missingAs)
			a.Insights = append(a.Insights, in)
		}
	}

	mark("experience", len(p.Experience.Experiences) > 0, weightExperience, "experience", Insight{
		Area:           "experience",
		Observation:    "No work experience found",
		Action:         "update_profile_field",
		Recommendation: "Add at least one job with title, company, and dates",
	})
	mark("qualification", len(p.Qualification.Educations) > 0, weightQualification, "qualification", Insight{
		Area:           "qualification",
		Observation:    "Missing educational or certification details",
		Action:         "update_profile_field",
		Recommendation: "Add a degree or certification",
	})
	mark("skills", len(p.Skills.Top) > 0 || len(p.Skills.Additional) > 0, weightSkills, "skills", Insight{
		Area:           "skills",
		Observation:    "No top or additional skills detected",
		Action:         "infer_skills",
		Recommendation: "Infer or manually add top 5 skills",
	})
	mark("careerAspirationPreference", len(p.CareerAspirationPreference.PreferredAspirations) > 0, weightAspiration, "careerAspirationPreference", Insight{
		Area:           "careerAspirationPreference",
		Observation:    "Career aspiration preferences missing",
		Action:         "set_preferences",
		Recommendation: "Add preferred career aspirations",
	})

	// A declined relocation ("NO" timeline code) is an explicit answer and
	// counts the same as listing preferred regions.
	loc := p.CareerLocationPreference
	locationOK := len(loc.PreferredRelocationRegions) > 0 || loc.PreferredRelocationTimeline.Code == "NO"
	mark("careerLocationPreference", locationOK, weightLocation, "careerLocationPreference", Insight{
		Area:           "careerLocationPreference",
		Observation:    "Relocation preferences missing",
		Action:         "set_preferences",
		Recommendation: "Add preferred relocation regions or indicate relocation preference",
	})
	mark("careerRolePreference", len(p.CareerRolePreference.PreferredRoles) > 0, weightRole, "careerRolePreference", Insight{
		Area:           "careerRolePreference",
		Observation:    "Preferred roles missing",
		Action:         "set_preferences",
		Recommendation: "Add preferred roles or role classifications",
	})
	mark("language", len(p.Language.Languages) > 0, weightLanguage, "languages", Insight{
		Area:           "language",
		Observation:    "No language proficiency data found",
		Action:         "update_profile_field",
		Recommendation: "Add at least one language with proficiency level",
	})

	a.CompletionScore = score

	if score < threshold {
		for i, in := range a.Insights {
			a.NextActions = append(a.NextActions, NextAction{
				Title:    in.Recommendation,
				Tool:     in.Action,
				Priority: i + 1,
			})
		}
	} else {
		a.NextActions = []NextAction{
			{Title: "Find Job Matches", Tool: "get_matches", Priority: 1},
			{Title: "Ask about a Job", Tool: "ask_jd_qa", Priority: 2},
		}
	}

	return a
}
