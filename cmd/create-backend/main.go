// Command create-backend scaffolds a new backend project from the embedded template.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/kitforge/backend/internal/scaffold"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "create-backend",
		Short:         "Scaffold a new backend project",
		SilenceUsage:  true,
	}
	root.SetOut(out)
	root.AddCommand(newNewCmd())
	return root
}

func newNewCmd() *cobra.Command {
	var opts scaffold.Options

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create <dir>/<name> from the project template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Name = args[0]
			files, err := scaffold.Generate(opts)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Created %s\n", opts.Name)
			for _, f := range files {
				fmt.Fprintf(w, "  %s\n", f)
			}
			fmt.Fprintf(w, "\nNext steps:\n  cd %s\n  cp .env.example .env\n  make tidy && make run\n", opts.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Module, "module", "", "Go module path (defaults to the project name)")
	cmd.Flags().StringVar(&opts.Dir, "dir", ".", "parent directory for the project")
	cmd.Flags().StringVar(&opts.GoVersion, "go", "", "Go version written to go.mod")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "write into a non-empty directory")
	return cmd
}
