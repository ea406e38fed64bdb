package domain

// Skill is a reusable prompt template a worker can pull into its context
// on demand, keyed by name.
type Skill struct {
	Name        string
	Description string
	Tags        []string
	Template    string
}

// SkillProvider loads and manages skills.
type SkillProvider interface {
	Get(name string) (*Skill, error)
	List() []Skill
}
