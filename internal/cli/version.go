package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/rshade/arffkit/pkg/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd(ver string) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if short {
				cmd.Println(ver)
				return nil
			}
			cmd.Printf("arffkit %s\n", ver)
			cmd.Printf("  commit:     %s\n", version.GetGitCommit())
			cmd.Printf("  built:      %s\n", version.GetBuildDate())
			cmd.Printf("  go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			if version.IsDevelopment() {
				cmd.Println("  development build")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")

	return cmd
}
