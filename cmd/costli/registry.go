// cmd/costli/registry.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"costli-agents/pkg/registry"
)

func newRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Print or export the activity catalog for BPMN modelers",
	}

	var out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the built-in catalog as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := registry.Catalog()
			if out == "" {
				return printJSON(cmd.OutOrStdout(), catalog)
			}
			if err := catalog.Save(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d activities to %s\n", len(catalog.Activities), out)
			return nil
		},
	}
	export.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")

	validate := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a registry file and compare it with the built-in catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(args[0])
			if err != nil {
				return err
			}
			if err := reg.Validate(); err != nil {
				return err
			}
			for _, a := range registry.Catalog().Activities {
				if _, ok := reg.Find(a.TaskType); !ok {
					return fmt.Errorf("%s: missing activity %q", args[0], a.TaskType)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d activities OK\n", args[0], len(reg.Activities))
			return nil
		},
	}

	cmd.AddCommand(export, validate)
	return cmd
}
