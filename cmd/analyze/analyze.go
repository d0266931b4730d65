// Package analyze implements the audio file analysis command.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ecovision-ai/birdsense/internal/conf"
	"github.com/ecovision-ai/birdsense/internal/connectivity"
	"github.com/ecovision-ai/birdsense/internal/inference"
	"github.com/ecovision-ai/birdsense/internal/observability"
	"github.com/ecovision-ai/birdsense/internal/remote"
)

// offlineGate forces the local classification path regardless of actual
// network state.
type offlineGate struct{}

func (offlineGate) IsOnline(ctx context.Context) bool { return false }

// Command creates the analyze command for classifying a single recording.
func Command(settings *conf.Settings, metrics *observability.InferenceMetrics) *cobra.Command {
	var (
		forceOffline bool
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [input.wav]",
		Short: "Identify bird species in an audio recording",
		Long:  `Classify a single audio recording, preferring the cloud classification API and falling back to local signal-processing heuristics when offline.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysis(cmd.Context(), settings, metrics, args[0], forceOffline, asJSON)
		},
	}

	cmd.Flags().BoolVar(&forceOffline, "offline", false, "Skip the cloud API and classify locally")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")

	return cmd
}

func runAnalysis(ctx context.Context, settings *conf.Settings, metrics *observability.InferenceMetrics, audioPath string, forceOffline, asJSON bool) error {
	var gate inference.ConnectivityGate = connectivity.New(settings)
	if forceOffline {
		gate = offlineGate{}
	}

	remoteClient := remote.New(settings)
	defer remoteClient.Close()

	engine := inference.New(settings, gate, remoteClient, metrics)
	if err := engine.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize inference engine: %w", err)
	}
	defer engine.Dispose()

	envelope, err := engine.RunBirdInference(ctx, audioPath)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(envelope)
	}

	printEnvelope(envelope)
	return nil
}

func printEnvelope(envelope *inference.Envelope) {
	fmt.Printf("Method: %s (nominal accuracy %.0f%%)\n\n", envelope.Method, envelope.NominalAccuracy*100)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SPECIES\tCONFIDENCE")
	for _, r := range envelope.Results {
		fmt.Fprintf(w, "%s\t%.2f\n", r.Label, r.Confidence)
	}
	w.Flush()
}
