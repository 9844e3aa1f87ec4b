package config

import "time"

type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Watch   WatchConfig   `yaml:"watch"`
	Stop    StopConfig    `yaml:"stop"`
	Handler HandlerConfig `yaml:"handler"`
	Logging LoggingConfig `yaml:"logging"`
}

type SourceConfig struct {
	Pattern string `yaml:"pattern" validate:"required,glob"`
}

type WatchConfig struct {
	PollInterval       time.Duration `yaml:"pollInterval" validate:"gt=0"`
	Maturation         time.Duration `yaml:"maturation" validate:"gte=0"`
	DeleteOnCompletion bool          `yaml:"deleteOnCompletion"`
	MaxScanFailures    int           `yaml:"maxScanFailures" validate:"gte=0"`
	Schedule           string        `yaml:"schedule" validate:"omitempty,cronspec"` // e.g. "@every 5m"
}

type StopConfig struct {
	Mode    string        `yaml:"mode" validate:"oneof=files elapsed idle once never"`
	Files   int           `yaml:"files" validate:"required_if=Mode files,gte=0"`
	Elapsed time.Duration `yaml:"elapsed" validate:"required_if=Mode elapsed,gte=0"`
	Idle    time.Duration `yaml:"idle" validate:"required_if=Mode idle,gte=0"`
}

type HandlerConfig struct {
	Kind    string        `yaml:"kind" validate:"oneof=exec archive log"`
	Command []string      `yaml:"command" validate:"required_if=Kind exec,dive,required"`
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
	Archive ArchiveConfig `yaml:"archive"`
}

type ArchiveConfig struct {
	Root     string `yaml:"root"`
	KeepLast int    `yaml:"keepLast" validate:"gte=0"`
}

type LoggingConfig struct {
	Level      string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format     string `yaml:"format" validate:"omitempty,oneof=console json text"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB" validate:"gte=0"`
	MaxBackups int    `yaml:"maxBackups" validate:"gte=0"`
}

// Default returns the configuration used for every field a file leaves out.
func Default() Config {
	return Config{
		Watch: WatchConfig{
			PollInterval: time.Second,
			Maturation:   5 * time.Second,
		},
		Stop: StopConfig{
			Mode: "never",
		},
		Handler: HandlerConfig{
			Kind: "log",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}
