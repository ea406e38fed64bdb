package skill

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"autochat/internal/domain"
)

// LoadSkillTool exposes a skill registry to the model: calling it with no
// name lists the available skills, calling it with a name returns that
// skill's full template for the model to follow.
type LoadSkillTool struct {
	provider domain.SkillProvider
	logger   *slog.Logger
}

// NewLoadSkillTool creates the skill loader tool.
func NewLoadSkillTool(provider domain.SkillProvider, logger *slog.Logger) *LoadSkillTool {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoadSkillTool{provider: provider, logger: logger}
}

func (t *LoadSkillTool) Name() string { return "load_skill" }

func (t *LoadSkillTool) Description() string {
	return "Lists available skills or loads one by name. Call without arguments to list skills; call with a name to get the skill's full instructions."
}

func (t *LoadSkillTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {
					"type": "string",
					"description": "Name of the skill to load. Omit to list available skills."
				}
			}
		}`),
	}
}

type loadSkillParams struct {
	Name string `json:"name"`
}

func (t *LoadSkillTool) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	var p loadSkillParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return &domain.ToolResult{
				IsError: true,
				Content: "invalid parameters: " + err.Error(),
			}, nil
		}
	}

	if p.Name == "" {
		return t.list()
	}

	s, err := t.provider.Get(p.Name)
	if err != nil {
		t.logger.Warn("skill lookup failed", "skill", p.Name, "error", err)
		names := t.skillNames()
		return jsonResult(map[string]any{
			"success": false,
			"error":   fmt.Sprintf("Skill '%s' not found. Available skills: %v", p.Name, names),
		})
	}

	return jsonResult(map[string]any{
		"success":     true,
		"name":        s.Name,
		"description": s.Description,
		"tags":        s.Tags,
		"content":     s.Template,
	})
}

func (t *LoadSkillTool) list() (*domain.ToolResult, error) {
	skills := t.provider.List()
	sort.Slice(skills, func(i, j int) bool { return skills[i].Name < skills[j].Name })

	entries := make([]map[string]any, 0, len(skills))
	for _, s := range skills {
		entries = append(entries, map[string]any{
			"name":        s.Name,
			"description": s.Description,
			"tags":        s.Tags,
		})
	}
	return jsonResult(map[string]any{
		"success": true,
		"count":   len(entries),
		"skills":  entries,
	})
}

func (t *LoadSkillTool) skillNames() []string {
	skills := t.provider.List()
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

func jsonResult(v any) (*domain.ToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &domain.ToolResult{
			IsError: true,
			Content: fmt.Sprintf("failed to format response: %v", err),
		}, nil
	}
	return &domain.ToolResult{Content: string(data)}, nil
}
