package util

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/lintang-b-s/routeannotator/pkg"
	"github.com/spf13/viper"
)

func ReadConfig() error {
	viper.SetConfigName("config")
	viper.AddConfigPath("./data/")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}

// SetConfigDefaults registers the defaults and env overrides (ANNOTATOR_<KEY>).
func SetConfigDefaults() {
	viper.SetEnvPrefix("ANNOTATOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("API_PORT", 5000)
	viper.SetDefault("API_TIMEOUT", 30*time.Second)
	viper.SetDefault("API_PREFIX", "")
	viper.SetDefault("HTTP_SERVER_READ_TIMEOUT", 15*time.Second)
	viper.SetDefault("HTTP_SERVER_WRITE_TIMEOUT", 15*time.Second)
	viper.SetDefault("HTTP_SERVER_IDLE_TIMEOUT", 60*time.Second)
	viper.SetDefault("HTTP_SERVER_READ_HEADER_TIMEOUT", 5*time.Second)
	viper.SetDefault("RATE_LIMIT_RPS", 100.0)
	viper.SetDefault("RATE_LIMIT_BURST", 200)
	viper.SetDefault("SNAP_TOLERANCE_METERS", pkg.DEFAULT_SNAP_TOLERANCE_METERS)
	viper.SetDefault("TAG_CACHE_SIZE", pkg.DEFAULT_TAG_CACHE_SIZE)
	viper.SetDefault("LOAD_WORKERS", runtime.GOMAXPROCS(0))
}

// LoadConfig sets defaults and reads ./data/config if present.
func LoadConfig() error {
	SetConfigDefaults()
	err := ReadConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return err
	}
	return nil
}
