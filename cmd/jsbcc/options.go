package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/jsbcc/driver"
	"github.com/deepnoodle-ai/jsbcc/engine"
	"github.com/deepnoodle-ai/jsbcc/sink"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	envPrefix     = "JSBCC"
	envConfigFile = "JSBCC_CONFIG"
	configName    = ".jsbcc"
)

type settings struct {
	extension string
	logLevel  zerolog.Level
	noColor   bool
	fileMode  os.FileMode
	engine    engine.Options
}

func newConfig() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("extension", driver.DefaultExtension)
	v.SetDefault("log-level", "warn")
	v.SetDefault("file-mode", "0644")
	v.SetDefault("no-color", false)
	v.SetDefault("no-default-globals", false)
	v.SetDefault("memory-limit", "0")
	v.SetDefault("gc-percent", 0)
	v.SetDefault("max-stack", "0")
	_ = v.BindEnv("no-color", envPrefix+"_NO_COLOR", "NO_COLOR")
	return v
}

// readConfigFile loads $JSBCC_CONFIG, or ~/.jsbcc.yaml when that is unset.
// A missing default file is not an error.
func readConfigFile(v *viper.Viper) error {
	if path := os.Getenv(envConfigFile); path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil
		}
		v.AddConfigPath(home)
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func loadSettings(v *viper.Viper) (settings, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(v.GetString("log-level")))
	if err != nil {
		return settings{}, fmt.Errorf("invalid log-level: %w", err)
	}
	mode, err := strconv.ParseUint(v.GetString("file-mode"), 8, 32)
	if err != nil {
		return settings{}, fmt.Errorf("invalid file-mode %q: %w", v.GetString("file-mode"), err)
	}
	ext := v.GetString("extension")
	if ext == "" {
		ext = driver.DefaultExtension
	}
	return settings{
		extension: ext,
		logLevel:  level,
		noColor:   v.GetBool("no-color"),
		fileMode:  os.FileMode(mode) & os.ModePerm,
		engine: engine.Options{
			Globals:          v.GetStringMap("globals"),
			NoDefaultGlobals: v.GetBool("no-default-globals"),
			Limits: engine.Limits{
				MemoryLimit: int64(v.GetSizeInBytes("memory-limit")),
				GCPercent:   v.GetInt("gc-percent"),
				MaxStack:    int(v.GetSizeInBytes("max-stack")),
			},
		},
	}, nil
}

func (s settings) driverOptions() []driver.Option {
	return []driver.Option{
		driver.WithExtension(s.extension),
		driver.WithEngineOptions(s.engine),
	}
}

func (s settings) outputSink(fs afero.Fs) sink.Sink {
	return &sink.Router{
		File: &sink.FileSink{Fs: fs, Mode: s.fileMode},
		S3:   sink.NewS3Sink(),
	}
}
