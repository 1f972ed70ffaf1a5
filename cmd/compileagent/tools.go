package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rahul/compileagent/internal/tools"
)

func newToolsCmd(a *app) *cobra.Command {
	var functions bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools a plan may use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := a.registry()
			if functions {
				return a.out.Value(reg.FunctionDefinitions(), a.format)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDESCRIPTION")
			for _, t := range reg.All() {
				fmt.Fprintf(w, "%s\t%s\n", t.Name(), t.Description())
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&functions, "functions", false, "print the tools as LLM function definitions")

	cmd.AddCommand(&cobra.Command{
		Use:   "call <tool> <json-input>",
		Short: "Invoke a single tool directly with a JSON object as input",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, ok := a.registry().Get(args[0])
			if !ok {
				return fmt.Errorf("tool not found: %s", args[0])
			}
			out, err := tools.AsLangchainTool(t).Call(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			a.out.Println(out)
			return nil
		},
	})
	return cmd
}
