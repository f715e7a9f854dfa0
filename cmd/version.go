package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/huangsam/githours/internal/contract"
	"github.com/spf13/cobra"
)

// versionCmd shows the verbose version for diagnostic purposes.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of githours.",
	Long: `Display version information including build details.

Shows:
- Release version
- Git commit hash and build timestamp
- Go runtime and platform
- Version of the git binary used by the local provider`,
	Run: func(cmd *cobra.Command, _ []string) {
		w := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(w, "githours CLI\n")
		_, _ = fmt.Fprintf(w, "  Version:  %s\n", version)
		_, _ = fmt.Fprintf(w, "  Commit:   %s\n", commit)
		_, _ = fmt.Fprintf(w, "  Built:    %s\n", date)
		_, _ = fmt.Fprintf(w, "  Runtime:  %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		_, _ = fmt.Fprintf(w, "  Git:      %s\n", gitVersion())
	},
}

// gitVersion reports the git binary on PATH, or why it is unusable.
func gitVersion() string {
	out, err := contract.NewLocalGitClient(contract.Window{}).Run(rootCtx, ".", "version")
	if err != nil {
		return "unavailable (" + err.Error() + ")"
	}
	return strings.TrimPrefix(strings.TrimSpace(string(out)), "git version ")
}
