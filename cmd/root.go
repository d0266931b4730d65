package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ecovision-ai/birdsense/cmd/analyze"
	"github.com/ecovision-ai/birdsense/cmd/probe"
	"github.com/ecovision-ai/birdsense/cmd/support"
	"github.com/ecovision-ai/birdsense/internal/buildinfo"
	"github.com/ecovision-ai/birdsense/internal/conf"
	"github.com/ecovision-ai/birdsense/internal/observability"
)

// RootCommand creates and returns the root command. metrics may be nil when
// telemetry is disabled.
func RootCommand(settings *conf.Settings, metrics *observability.InferenceMetrics) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "birdsense",
		Short:   "BirdSense hybrid bird identification CLI",
		Version: fmt.Sprintf("%s (built %s)", buildinfo.Version(), buildinfo.BuildDate()),
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	subcommands := []*cobra.Command{
		analyze.Command(settings, metrics),
		probe.Command(settings),
		support.Command(settings),
	}

	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return conf.ValidateSettings(settings)
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Inference.LabelPath, "labels", viper.GetString("inference.labelpath"), "Path to the species label file")
	rootCmd.PersistentFlags().Float64Var(&settings.Inference.Latitude, "latitude", viper.GetFloat64("inference.latitude"), "Latitude for species prediction")
	rootCmd.PersistentFlags().Float64Var(&settings.Inference.Longitude, "longitude", viper.GetFloat64("inference.longitude"), "Longitude for species prediction")
	rootCmd.PersistentFlags().StringVar(&settings.Remote.Endpoint, "endpoint", viper.GetString("remote.endpoint"), "Classification API endpoint URL")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
