// Package agents assembles the concrete agents of the assistant: the
// mycareer and jd_composer specialists and the orchestrator that routes
// between them.
package agents

import (
	"log/slog"
	"time"

	"autochat/internal/adapter/skill"
	"autochat/internal/adapter/tool"
	"autochat/internal/domain"
	"autochat/internal/profile"
	"autochat/internal/usecase"
)

// lowCompletionThreshold is the completion score below which job-match
// results carry a profile warning.
const lowCompletionThreshold = 50

// Deps holds everything the agent constructors need. One Deps value
// configures all agents so they share the LLM, thread store, and profile.
type Deps struct {
	LLM     domain.LLMProvider
	Threads usecase.ThreadStore
	Logger  *slog.Logger
	Profile profile.Profile
	Skills  domain.SkillProvider // optional, exposed to jd_composer as load_skill

	// Now pins tool clocks; nil means time.Now.
	Now func() time.Time

	CompletionThreshold int // profile completion target, 0 = 80
	MaxIterations       int
	MaxHistory          int
	ToolRateLimit       int // tool calls per minute per tool, 0 = unlimited

	Compressor *usecase.Compressor   // optional
	Guard      *usecase.ContextGuard // optional
}

func (d *Deps) threshold() int {
	if d.CompletionThreshold <= 0 {
		return 80
	}
	return d.CompletionThreshold
}

func (d *Deps) now() func() time.Time {
	if d.Now == nil {
		return time.Now
	}
	return d.Now
}

// ContextFactory builds per-turn contexts carrying the user's identity and
// current profile completion score. Every worker registers with one so the
// delegation layer never has to guess how to seed a turn.
func ContextFactory(p profile.Profile, threshold int) domain.ContextFactory {
	return func(threadID string) domain.TurnContext {
		analysis := profile.Analyze(p, threshold)
		return domain.TurnContext{
			ThreadID:        threadID,
			FirstName:       p.FirstName(),
			FullName:        p.DisplayName(),
			CompletionScore: analysis.CompletionScore,
		}
	}
}

// registerTools builds a worker's tool registry, throttling each tool
// with a per-minute token bucket when a rate limit is configured.
func registerTools(deps Deps, domainTools []domain.Tool) (*tool.Registry, error) {
	tools := tool.NewRegistry(deps.Logger)
	for _, t := range domainTools {
		if deps.ToolRateLimit > 0 {
			t = tool.WithRateLimit(t, deps.ToolRateLimit)
		}
		if err := tools.Register(t); err != nil {
			return nil, err
		}
	}
	return tools, nil
}

// NewMyCareerWorker builds the career assistant: profile tools, job
// matching, hiring-manager messaging, and applications.
func NewMyCareerWorker(deps Deps) (*usecase.Worker, error) {
	loadProfile := func() profile.Profile { return deps.Profile }
	now := deps.now()

	tools, err := registerTools(deps, []domain.Tool{
		tool.NewProfileAnalyzerTool(loadProfile, deps.threshold(), deps.Logger),
		tool.NewGetMatchesTool(tool.DefaultJobs(now()), now, deps.Logger),
		tool.NewInferSkillsTool(loadProfile, deps.Logger),
		tool.NewUpdateProfileTool(loadProfile, deps.threshold(), deps.Logger),
		tool.NewDraftMessageTool(loadProfile, deps.Logger),
		tool.NewSendMessageTool(now, deps.Logger),
		tool.NewAskJDQATool(deps.Logger),
		tool.NewApplyForRoleTool(loadProfile, now, deps.Logger),
	})
	if err != nil {
		return nil, err
	}

	agent := usecase.NewAgent("mycareer", usecase.AgentDeps{
		LLM:           deps.LLM,
		Tools:         tools,
		Threads:       deps.Threads,
		Logger:        deps.Logger,
		SystemPrompt:  mycareerSystemPrompt,
		MaxIterations: deps.MaxIterations,
		MaxHistory:    deps.MaxHistory,
		PromptMW: []usecase.PromptMiddleware{
			&usecase.PersonalizationMiddleware{Profile: deps.Profile},
		},
		ToolMW: []usecase.ToolMiddleware{
			&usecase.ProfileWarningMiddleware{Threshold: lowCompletionThreshold},
			&usecase.ToolMonitorMiddleware{Logger: deps.Logger},
		},
		Compressor: deps.Compressor,
		Guard:      deps.Guard,
	})

	return &usecase.Worker{
		Name:           "mycareer",
		Description:    "Internal career management assistant that helps employees find jobs, improve profiles, and connect with hiring managers.",
		Agent:          agent,
		ContextFactory: ContextFactory(deps.Profile, deps.threshold()),
		Card: domain.AgentCard{
			Name:        "mycareer",
			Description: "Internal career management assistant",
			Skills: []domain.AgentSkill{
				{Name: "profile_management", Description: "Analyze and improve user profiles", Tags: []string{"profile"}},
				{Name: "job_matching", Description: "Find matching internal job postings", Tags: []string{"jobs", "matching"}},
				{Name: "job_qa", Description: "Answer questions about job postings", Tags: []string{"jobs", "qa"}},
				{Name: "messaging", Description: "Draft and send messages to hiring managers", Tags: []string{"messaging"}},
				{Name: "applications", Description: "Submit job applications", Tags: []string{"jobs", "apply"}},
			},
		},
	}, nil
}

// NewJDComposerWorker builds the job-description composer: search,
// compose, section editing, finalize, plus the skill loader when a skill
// registry is configured.
func NewJDComposerWorker(deps Deps) (*usecase.Worker, error) {
	now := deps.now()

	domainTools := []domain.Tool{
		tool.NewJDSearchTool(deps.Logger),
		tool.NewJDComposeTool(deps.Logger),
		tool.NewSectionEditorTool(deps.Logger),
		tool.NewJDFinalizeTool(now, deps.Logger),
	}
	if deps.Skills != nil {
		domainTools = append(domainTools, skill.NewLoadSkillTool(deps.Skills, deps.Logger))
	}

	tools, err := registerTools(deps, domainTools)
	if err != nil {
		return nil, err
	}

	agent := usecase.NewAgent("jd_composer", usecase.AgentDeps{
		LLM:           deps.LLM,
		Tools:         tools,
		Threads:       deps.Threads,
		Logger:        deps.Logger,
		SystemPrompt:  jdComposerSystemPrompt,
		MaxIterations: deps.MaxIterations,
		MaxHistory:    deps.MaxHistory,
		ToolMW: []usecase.ToolMiddleware{
			&usecase.ToolMonitorMiddleware{Logger: deps.Logger},
		},
		Compressor: deps.Compressor,
		Guard:      deps.Guard,
	})

	return &usecase.Worker{
		Name:           "jd_composer",
		Description:    "Job Description Composer that helps hiring managers create standards-compliant JDs through an iterative, collaborative workflow.",
		Agent:          agent,
		ContextFactory: ContextFactory(deps.Profile, deps.threshold()),
		Card: domain.AgentCard{
			Name:        "jd_composer",
			Description: "Job Description Composer for hiring managers",
			Skills: []domain.AgentSkill{
				{Name: "jd_search", Description: "Find similar past job descriptions", Tags: []string{"search", "rag"}},
				{Name: "jd_compose", Description: "Compose initial JD draft", Tags: []string{"compose", "draft"}},
				{Name: "section_editing", Description: "Edit individual JD sections", Tags: []string{"edit"}},
				{Name: "jd_finalize", Description: "Finalize JD for posting", Tags: []string{"finalize"}},
			},
		},
	}, nil
}

// NewOrchestrator builds the routing agent over a populated worker
// registry. The orchestrator has no tools of its own; each turn gets a
// fresh delegation toolset bound to that turn's context.
func NewOrchestrator(deps Deps, workers *usecase.Registry, delegateTimeout time.Duration) *usecase.Orchestrator {
	agent := usecase.NewAgent("orchestrator", usecase.AgentDeps{
		LLM:           deps.LLM,
		Threads:       deps.Threads,
		Logger:        deps.Logger,
		SystemPrompt:  orchestratorSystemPrompt,
		MaxIterations: deps.MaxIterations,
		MaxHistory:    deps.MaxHistory,
		Compressor:    deps.Compressor,
		Guard:         deps.Guard,
	})

	card := domain.AgentCard{
		Name:        "orchestrator",
		Description: "Chat orchestrator that routes to the MyCareer and JD Composer agents",
		Skills: []domain.AgentSkill{
			{Name: "routing", Description: "Route messages to specialist agents", Tags: []string{"orchestration"}},
			{Name: "career_search", Description: "Career search via MyCareer agent", Tags: []string{"career"}},
			{Name: "jd_creation", Description: "JD creation via JD Composer agent", Tags: []string{"jd"}},
		},
	}

	return usecase.NewOrchestrator(agent, workers, delegateTimeout, card, deps.Logger)
}
