package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rahul/compileagent/internal/agent"
	"github.com/rahul/compileagent/internal/governance"
	"github.com/rahul/compileagent/internal/intent"
	"github.com/rahul/compileagent/internal/observability"
	"github.com/rahul/compileagent/internal/plan"
	"github.com/rahul/compileagent/internal/store"
	"github.com/rahul/compileagent/internal/tools"
	"github.com/rahul/compileagent/pkg/config"
)

// app holds what every subcommand shares once the persistent flags are parsed.
type app struct {
	cfgPath string
	verbose bool
	output  string

	cfg    *config.Config
	logger *observability.Logger
	out    *observability.Printer
	format plan.Format
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "compileagent",
		Short: "Compile intent into a static plan, validate it, and run it deterministically",
		Long: `compileagent turns plain-text intent lines into a static execution plan,
checks every step against a whitelist of registered tools, and executes the plan
node by node. The same intent always produces the same plan and the same result.

Run without a subcommand to see the built-in demo.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDemo(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgPath, "config", "", "config file (.json, .yaml or .toml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log pipeline events at debug level")
	flags.StringVar(&a.output, "output", "json", "output format: json or yaml")

	rootCmd.AddCommand(
		newDemoCmd(a),
		newCompileCmd(a),
		newValidateCmd(a),
		newRunCmd(a),
		newToolsCmd(a),
		newHistoryCmd(a),
		newServeCmd(a),
	)
	return rootCmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	format, err := plan.ParseFormat(a.output)
	if err != nil {
		return err
	}
	a.format = format

	logCfg := observability.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}
	if a.verbose {
		logCfg.Level = "debug"
	}
	logger, err := observability.NewLogger(logCfg)
	if err != nil {
		return err
	}
	a.logger = logger
	a.out = observability.NewPrinter(cmd.OutOrStdout())
	return nil
}

func (a *app) registry() *tools.Registry {
	reg := tools.NewRegistry()
	tools.RegisterDefaults(reg)
	return reg
}

func (a *app) sourceOptions() intent.SourceOptions {
	return intent.SourceOptions{Sanitize: a.cfg.Runtime.Sanitize}
}

// validator builds the gate from the config; strict forces strict mode on.
func (a *app) validator(reg *tools.Registry, strict bool) (*governance.Validator, error) {
	opts := []governance.Option{governance.WithLogger(a.logger.Zap())}
	if strict || a.cfg.Runtime.Strict {
		opts = append(opts, governance.WithStrict())
	}

	pol := a.cfg.Policy
	if len(pol.DeniedTools) > 0 || len(pol.DeniedArguments) > 0 {
		engine := governance.NewDefaultPolicyEngine()
		for _, name := range pol.DeniedTools {
			engine.DenyTool(name)
		}
		for _, pattern := range pol.DeniedArguments {
			if err := engine.DenyArguments(pattern); err != nil {
				return nil, fmt.Errorf("policy.denied_arguments %q: %w", pattern, err)
			}
		}
		opts = append(opts, governance.WithPolicy(engine))
	}
	return governance.NewValidator(reg, opts...), nil
}

// pipeline wires the full compile → validate → run chain. The returned cleanup closes
// the run history, if one is configured.
func (a *app) pipeline(strict bool) (*agent.Pipeline, func(), error) {
	reg := a.registry()
	v, err := a.validator(reg, strict)
	if err != nil {
		return nil, nil, err
	}

	rt := agent.NewRuntime(reg, agent.WithRuntimeLogger(a.logger))
	pipe := agent.NewPipeline(intent.NewCompiler(), v, rt)
	pipe.Logger = a.logger
	pipe.Tracker = observability.NewTracker()

	cleanup := func() {}
	if path := strings.TrimSpace(a.cfg.Store.Path); path != "" {
		hs, err := store.NewHistoryStore(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open run history: %w", err)
		}
		pipe.Store = hs
		cleanup = func() {
			if err := hs.Close(); err != nil {
				a.logger.Zap().Warn("failed to close run history", zap.Error(err))
			}
		}
	}
	return pipe, cleanup, nil
}

func (a *app) openHistory() (*store.HistoryStore, error) {
	path := strings.TrimSpace(a.cfg.Store.Path)
	if path == "" {
		return nil, fmt.Errorf("run history is disabled: set store.path in the config file")
	}
	return store.NewHistoryStore(path)
}
