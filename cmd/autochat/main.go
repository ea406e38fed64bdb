// Command autochat runs the multi-agent career assistant as a
// line-oriented REPL: an orchestrator routes each message to the
// mycareer or jd_composer specialist and prints the reply.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"autochat/internal/adapter/checkpoint"
	"autochat/internal/adapter/llm"
	"autochat/internal/adapter/skill"
	"autochat/internal/agents"
	"autochat/internal/domain"
	"autochat/internal/infra/config"
	"autochat/internal/infra/logger"
	"autochat/internal/infra/tracer"
	"autochat/internal/profile"
	"autochat/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	printCards := flag.Bool("cards", false, "print agent cards as JSON and exit")
	showTrace := flag.Bool("trace", false, "print the full delegation trace after each reply")
	flag.Parse()

	if err := run(*configPath, *printCards, *showTrace); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, printCards, showTrace bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer shutdownTracer(context.Background())

	// LLM providers, breaker-wrapped, behind a registry.
	providers := llm.NewRegistry()
	for _, pc := range cfg.LLM.Providers {
		var provider = domain.LLMProvider(llm.NewOpenAIProvider(pc, log))
		if cfg.LLM.CircuitBreaker.Enabled {
			provider = llm.NewCircuitBreakerProvider(provider, cfg.LLM.CircuitBreaker, log)
		}
		if err := providers.Register(provider); err != nil {
			return err
		}
	}
	if err := providers.SetDefault(cfg.LLM.DefaultProvider); err != nil {
		return err
	}
	model, err := providers.Get("")
	if err != nil {
		return err
	}

	// Thread store: in-memory by default, sqlite when configured.
	var threads usecase.ThreadStore
	switch cfg.Threads.Store {
	case "sqlite":
		store, err := checkpoint.NewSQLiteThreadStore(cfg.Threads.Path)
		if err != nil {
			return fmt.Errorf("open thread store: %w", err)
		}
		defer store.Close()
		threads = store
	default:
		threads = usecase.NewMemoryThreadStore()
	}

	userProfile, err := profile.Load(cfg.Profile.Path)
	if err != nil {
		log.Warn("profile unavailable, continuing without one", "error", err)
	}

	deps := agents.Deps{
		LLM:                 model,
		Threads:             threads,
		Logger:              log,
		Profile:             userProfile,
		CompletionThreshold: cfg.Profile.CompletionThreshold,
		MaxIterations:       cfg.Agent.MaxIterations,
		MaxHistory:          cfg.Agent.MaxHistory,
		ToolRateLimit:       cfg.Agent.ToolRateLimit,
	}

	if cfg.Skills.Dir != "" {
		skills := skill.NewFileSkillProvider(cfg.Skills.Dir)
		if _, err := skills.Load(ctx); err != nil {
			log.Warn("skill library unavailable", "dir", cfg.Skills.Dir, "error", err)
		} else {
			deps.Skills = skills
		}
	}

	if cfg.Agent.Compression.Enabled {
		deps.Compressor = usecase.NewCompressor(model, usecase.CompressionConfig{
			Enabled:    true,
			Threshold:  cfg.Agent.Compression.Threshold,
			KeepRecent: cfg.Agent.Compression.KeepRecent,
		}, log)
	}
	if cfg.Agent.ContextGuard.Enabled {
		counter, err := usecase.NewTiktokenCounter(defaultModel(cfg))
		if err != nil {
			log.Warn("token counter unavailable, context guard disabled", "error", err)
		} else {
			deps.Guard = usecase.NewContextGuard(usecase.ContextGuardConfig{
				MaxTokens:     cfg.Agent.ContextGuard.MaxTokens,
				ReserveTokens: cfg.Agent.ContextGuard.ReserveTokens,
				SafetyMargin:  cfg.Agent.ContextGuard.SafetyMargin,
			}, counter, deps.Compressor, log)
		}
	}

	workers := usecase.NewRegistry(log)
	career, err := agents.NewMyCareerWorker(deps)
	if err != nil {
		return err
	}
	composer, err := agents.NewJDComposerWorker(deps)
	if err != nil {
		return err
	}
	for _, w := range []*usecase.Worker{career, composer} {
		if err := workers.Register(w); err != nil {
			return err
		}
	}

	orch := agents.NewOrchestrator(deps, workers, cfg.Agent.DelegateTimeout)
	factory := agents.ContextFactory(userProfile, cfg.Profile.CompletionThreshold)
	tasks := usecase.NewTaskService(orch.Card(), orch.Invoke, factory, cfg.Tasks.Timeout, log)

	if printCards {
		cards := append(workers.Cards(), orch.Card())
		data, err := json.MarshalIndent(cards, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	janitor := usecase.NewJanitor(log)
	if err := janitor.AddReaper("threads", cfg.Threads.ReapSchedule, func() int {
		return threads.ReapStale(cfg.Threads.MaxAge)
	}); err != nil {
		return err
	}
	if err := janitor.AddReaper("tasks", cfg.Tasks.ReapSchedule, func() int {
		return tasks.ReapTasks(cfg.Tasks.MaxAge)
	}); err != nil {
		return err
	}
	janitor.Start()
	defer janitor.Stop()

	return repl(ctx, orch, factory, showTrace)
}

func defaultModel(cfg *config.Config) string {
	for _, pc := range cfg.LLM.Providers {
		if pc.Name == cfg.LLM.DefaultProvider {
			return pc.Model
		}
	}
	return "gpt-4o-mini"
}

func repl(ctx context.Context, orch *usecase.Orchestrator, factory domain.ContextFactory, showTrace bool) error {
	threadID := fmt.Sprintf("repl-%d", time.Now().Unix())

	fmt.Println("autochat ready. Type a message, /trace to toggle trace output, /quit to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit", line == "/exit":
			return nil
		case line == "/trace":
			showTrace = !showTrace
			fmt.Printf("trace output %s\n", onOff(showTrace))
			continue
		}

		tc := factory(threadID)
		history, err := orch.Invoke(ctx, line, tc)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Printf("error: %v\n", err)
			continue
		}

		if showTrace {
			fmt.Print(usecase.FormatTrace(usecase.CurrentTurn(history)))
		} else {
			fmt.Println(usecase.FinalText(history))
		}
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
