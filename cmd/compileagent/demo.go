package main

import (
	"github.com/spf13/cobra"

	"github.com/rahul/compileagent/internal/agent"
	"github.com/rahul/compileagent/internal/intent"
)

const demoIntent = `
get weather from Beijing
convert temperature to Fahrenheit
`

func newDemoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Compile, validate and run the built-in weather intent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDemo(cmd)
		},
	}
}

func (a *app) runDemo(cmd *cobra.Command) error {
	reg := a.registry()
	v, err := a.validator(reg, false)
	if err != nil {
		return err
	}

	a.out.Section("COMPILE AGENT: COMPILE INTENT", true)
	p, err := intent.NewCompiler().Compile(demoIntent)
	if err != nil {
		return err
	}
	if err := a.out.Value(p, a.format); err != nil {
		return err
	}

	a.out.Section("VALIDATING PLAN", false)
	if err := v.Validate(cmd.Context(), p); err != nil {
		return err
	}
	a.out.OK("OK")

	a.out.Section("EXECUTING DETERMINISTIC RUNTIME", false)
	res, err := agent.NewRuntime(reg, agent.WithRuntimeLogger(a.logger)).Run(cmd.Context(), p)
	if err != nil {
		return err
	}
	if err := a.out.Value(res, a.format); err != nil {
		return err
	}

	a.out.Section("DONE", false)
	return nil
}
