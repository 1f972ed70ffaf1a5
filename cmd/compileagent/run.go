package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rahul/compileagent/internal/agent"
	"github.com/rahul/compileagent/internal/intent"
	"github.com/rahul/compileagent/internal/plan"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		dir      string
		planPath string
		strict   bool
		failFast bool
	)

	cmd := &cobra.Command{
		Use:   "run [files...]",
		Short: "Compile, validate and execute intent files",
		Long: `Run executes one pipeline per intent file. With --dir every intent file in the
directory is run, sorted by name. Independent files run concurrently, bounded by
runtime.parallelism; each file is still executed strictly in order.

With no files and no --dir the intent is read from stdin. With --plan a saved plan
is validated and executed without compiling.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if planPath != "" {
				if len(args) > 0 || dir != "" {
					return fmt.Errorf("--plan cannot be combined with intent files")
				}
				return a.runPlanFile(cmd, planPath, strict)
			}

			sources, err := a.collectSources(cmd, args, dir)
			if err != nil {
				return err
			}

			pipe, cleanup, err := a.pipeline(strict)
			if err != nil {
				return err
			}
			defer cleanup()

			if len(sources) == 1 {
				rep, err := pipe.Execute(cmd.Context(), sources[0])
				if err != nil {
					return err
				}
				return a.out.Value(rep, a.format)
			}

			results, err := pipe.ExecuteBatch(cmd.Context(), sources, a.cfg.Runtime.Parallelism, failFast || a.cfg.Runtime.FailFast)
			return a.printBatch(results, err)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "run every intent file in this directory")
	cmd.Flags().StringVar(&planPath, "plan", "", "run a saved plan file instead of intent text")
	cmd.Flags().BoolVar(&strict, "strict", false, "also reject duplicate node ids and forward references")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "cancel the remaining runs after the first failure")
	return cmd
}

func (a *app) collectSources(cmd *cobra.Command, args []string, dir string) ([]agent.Source, error) {
	var sources []agent.Source

	if dir != "" {
		lib := intent.NewLibrary(dir)
		lib.Options = a.sourceOptions()
		docs, err := lib.Load()
		if err != nil {
			return nil, err
		}
		for _, d := range docs {
			sources = append(sources, agent.Source{Name: d.Name, Text: d.Text})
		}
	}

	for _, path := range args {
		doc, err := intent.LoadFile(path, a.sourceOptions())
		if err != nil {
			return nil, err
		}
		sources = append(sources, agent.Source{Name: doc.Name, Text: doc.Text})
	}

	if len(sources) == 0 {
		src, err := a.readIntent(cmd, nil)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// readIntent reads the single intent named by args, or stdin for "-" or no argument.
func (a *app) readIntent(cmd *cobra.Command, args []string) (agent.Source, error) {
	if len(args) == 0 || args[0] == "-" {
		text, err := intent.ReadSource(cmd.InOrStdin(), a.sourceOptions())
		if err != nil {
			return agent.Source{}, err
		}
		return agent.Source{Name: "stdin", Text: text}, nil
	}
	doc, err := intent.LoadFile(args[0], a.sourceOptions())
	if err != nil {
		return agent.Source{}, err
	}
	return agent.Source{Name: doc.Name, Text: doc.Text}, nil
}

func (a *app) runPlanFile(cmd *cobra.Command, path string, strict bool) error {
	p, err := plan.LoadFile(path)
	if err != nil {
		return err
	}

	reg := a.registry()
	v, err := a.validator(reg, strict)
	if err != nil {
		return err
	}
	if err := v.Validate(cmd.Context(), p); err != nil {
		return err
	}

	res, err := agent.NewRuntime(reg, agent.WithRuntimeLogger(a.logger)).Run(cmd.Context(), p)
	if err != nil {
		return err
	}
	return a.out.Value(res, a.format)
}

func (a *app) printBatch(results []agent.BatchResult, batchErr error) error {
	failed := 0
	for i, r := range results {
		a.out.Section(r.Source.Name, i == 0)
		if r.Err != nil {
			failed++
			a.out.Error(r.Err)
			continue
		}
		if err := a.out.Value(r.Report, a.format); err != nil {
			return err
		}
	}

	if batchErr != nil {
		return batchErr
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d runs failed", failed, len(results))
	}
	return nil
}
