// Package support implements the support report command.
package support

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ecovision-ai/birdsense/internal/buildinfo"
	"github.com/ecovision-ai/birdsense/internal/conf"
	"github.com/ecovision-ai/birdsense/internal/diagnostics"
)

// Command creates the support command for collecting a system report.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "support",
		Short: "Collect system information for a support report",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("BirdSense %s (built %s)\n", buildinfo.Version(), buildinfo.BuildDate())
			info := diagnostics.Collect()
			diagnostics.WriteReport(os.Stdout, &info)
			return nil
		},
	}
}
