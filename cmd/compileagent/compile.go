package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rahul/compileagent/internal/intent"
	"github.com/rahul/compileagent/internal/plan"
)

func newCompileCmd(a *app) *cobra.Command {
	var writePath string

	cmd := &cobra.Command{
		Use:   "compile [file|-]",
		Short: "Compile intent text into a plan",
		Long: `Compile reads intent lines from a file (or stdin when the argument is "-" or
missing) and prints the resulting plan. HTML input is reduced to plain text first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.readIntent(cmd, args)
			if err != nil {
				return err
			}

			p, err := intent.NewCompiler().Compile(src.Text)
			if err != nil {
				return err
			}

			if writePath != "" {
				if err := plan.SaveFile(p, writePath); err != nil {
					return err
				}
				a.out.Println(fmt.Sprintf("plan written to %s (%d nodes)", writePath, p.Len()))
				return nil
			}
			return a.out.Value(p, a.format)
		},
	}

	cmd.Flags().StringVarP(&writePath, "write", "w", "", "save the plan to this file instead of printing it (.json or .yaml)")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <plan-file>",
		Short: "Check a saved plan against the tool whitelist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := plan.LoadFile(args[0])
			if err != nil {
				return err
			}

			v, err := a.validator(a.registry(), strict)
			if err != nil {
				return err
			}
			if err := v.Validate(cmd.Context(), p); err != nil {
				return err
			}
			a.out.OK("OK")
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "also reject duplicate node ids and forward references")
	return cmd
}
