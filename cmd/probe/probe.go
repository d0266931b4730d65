// Package probe implements the connectivity diagnosis command.
package probe

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ecovision-ai/birdsense/internal/conf"
	"github.com/ecovision-ai/birdsense/internal/connectivity"
	"github.com/ecovision-ai/birdsense/internal/remote"
)

// Command creates the probe command for checking network and API reachability.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check network connectivity and classification API availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			gate := connectivity.New(settings)
			online := gate.IsOnline(ctx)
			fmt.Printf("Network:  %s\n", status(online))

			if !online {
				fmt.Println("API:      skipped (no network)")
				return nil
			}

			remoteClient := remote.New(settings)
			defer remoteClient.Close()

			available := remoteClient.IsAvailable(ctx)
			fmt.Printf("API:      %s (%s)\n", status(available), settings.Remote.Endpoint)
			return nil
		},
	}
}

func status(ok bool) string {
	if ok {
		return "reachable"
	}
	return "unreachable"
}
