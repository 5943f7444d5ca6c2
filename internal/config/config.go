// Package config loads agent settings from flags, environment and a YAML file.
package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/JNickson/kube-log-annotator/internal/annotator"
	"github.com/JNickson/kube-log-annotator/internal/utils"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "ANNOTATOR"

	KeyLogDir       = "log-dir"
	KeyNodeName     = "node-name"
	KeyPort         = "port"
	KeyLogLevel     = "log-level"
	KeyReadFrom     = "read-from"
	KeyPollInterval = "poll-interval"
	KeyOutput       = "output"
	KeyKubeconfig   = "kubeconfig"
	KeyFields       = "fields"

	ReadFromEnd       = "end"
	ReadFromBeginning = "beginning"

	OutputStdout = "stdout"
	OutputNone   = "none"
)

type Config struct {
	LogDir        string
	NodeName      string
	Port          string
	LogLevel      slog.Level
	ReadFromStart bool
	PollInterval  time.Duration
	Output        string
	Kubeconfig    string
	Fields        annotator.FieldSpec
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogDir, "/var/log/pods")
	v.SetDefault(KeyPort, "8001")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyReadFrom, ReadFromEnd)
	v.SetDefault(KeyPollInterval, time.Second)
	v.SetDefault(KeyOutput, OutputStdout)
}

// BindEnv maps ANNOTATOR_<KEY> onto every key. NODE_NAME and PORT are also
// read unprefixed so the downward API and plain deployments keep working.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv(KeyNodeName, EnvPrefix+"_NODE_NAME", "NODE_NAME"); err != nil {
		return err
	}
	return v.BindEnv(KeyPort, EnvPrefix+"_PORT", "PORT")
}

func Load(v *viper.Viper) (Config, error) {
	level, err := utils.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		LogDir:       v.GetString(KeyLogDir),
		NodeName:     v.GetString(KeyNodeName),
		Port:         v.GetString(KeyPort),
		LogLevel:     level,
		PollInterval: v.GetDuration(KeyPollInterval),
		Output:       v.GetString(KeyOutput),
		Kubeconfig:   v.GetString(KeyKubeconfig),
		Fields:       annotator.DefaultFieldSpec(),
	}

	if cfg.LogDir == "" {
		return Config{}, fmt.Errorf("%s must not be empty", KeyLogDir)
	}

	if _, err := strconv.ParseUint(cfg.Port, 10, 16); err != nil {
		return Config{}, fmt.Errorf("invalid %s: %q", KeyPort, cfg.Port)
	}

	switch readFrom := v.GetString(KeyReadFrom); readFrom {
	case ReadFromEnd:
	case ReadFromBeginning:
		cfg.ReadFromStart = true
	default:
		return Config{}, fmt.Errorf("invalid %s: %s", KeyReadFrom, readFrom)
	}

	if cfg.PollInterval <= 0 {
		return Config{}, fmt.Errorf("%s must be positive", KeyPollInterval)
	}

	switch cfg.Output {
	case OutputStdout, OutputNone:
	default:
		return Config{}, fmt.Errorf("invalid %s: %s", KeyOutput, cfg.Output)
	}

	if err := cfg.Fields.Apply(v.GetStringMapString(KeyFields)); err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", KeyFields, err)
	}

	return cfg, nil
}
