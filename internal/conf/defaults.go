// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "BirdSense")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/")
	viper.SetDefault("main.log.level", "info")

	viper.SetDefault("inference.labelpath", "labels/species.txt")
	viper.SetDefault("inference.latitude", 0.000)
	viper.SetDefault("inference.longitude", 0.000)

	viper.SetDefault("remote.endpoint", "https://api.ecovision.app/v1/birds/classify")
	viper.SetDefault("remote.timeout", 30*time.Second)
	viper.SetDefault("remote.probetimeout", 5*time.Second)
	viper.SetDefault("remote.probettl", time.Minute)

	viper.SetDefault("connectivity.probehost", "google.com")
	viper.SetDefault("connectivity.timeout", 3*time.Second)

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.listen", "localhost:8090")
}
