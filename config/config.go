// Package config loads joytransfer settings from defaults, an optional file
// and JOYTRANSFER_ environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	joytransfer "github.com/f-ready/joytransfer-with-nfc"
	"github.com/f-ready/joytransfer-with-nfc/protocol"
)

// EnvPrefix is prepended to every environment override, with dots turned
// into underscores: JOYTRANSFER_TIMING_HOLD=80ms.
const EnvPrefix = "JOYTRANSFER"

// Config holds application configuration.
type Config struct {
	Backend         string
	Controller      string
	LogLevel        string   `mapstructure:"log_level"`
	ExitKeywords    []string `mapstructure:"exit_keywords"`
	GreetButtons    []string `mapstructure:"greet_buttons"`
	AutoGreetButton string   `mapstructure:"auto_greet_button"`
	Timing          TimingConfig
	Sim             SimConfig
}

// TimingConfig holds the pulse and console delays.
type TimingConfig struct {
	Hold       time.Duration
	Release    time.Duration
	WakeSettle time.Duration `mapstructure:"wake_settle"`
	Pacing     time.Duration
	Settle     time.Duration
}

// SimConfig holds settings of the sim backend.
type SimConfig struct {
	PeerAddr string `mapstructure:"peer_addr"`
}

func setDefaults(v *viper.Viper) {
	t := joytransfer.DefaultTiming()

	v.SetDefault("backend", "sim")
	v.SetDefault("controller", protocol.ProController.String())
	v.SetDefault("log_level", "info")
	v.SetDefault("exit_keywords", []string{"exit", "quit", "q", "bye", "shutdown"})
	v.SetDefault("greet_buttons", []string{"a", "b", "home"})
	v.SetDefault("auto_greet_button", "a")
	v.SetDefault("timing.hold", t.Hold)
	v.SetDefault("timing.release", t.Release)
	v.SetDefault("timing.wake_settle", t.WakeSettle)
	v.SetDefault("timing.pacing", t.Pacing)
	v.SetDefault("timing.settle", t.Settle)
	v.SetDefault("sim.peer_addr", "7C:BB:8A:5E:2D:01")
}

// Load reads configuration. An explicit path must exist; without one the
// usual locations are searched and a missing file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "joytransfer"))
		}
		v.AddConfigPath("/etc/joytransfer")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return Config{}, errors.Wrap(err, "read config")
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "unmarshal config")
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the values that would otherwise fail late, in a worker.
func (c Config) Validate() error {
	if c.Backend == "" {
		return errors.New("config: backend is empty")
	}
	if _, err := protocol.ParseControllerType(c.Controller); err != nil {
		return errors.Wrap(err, "config")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "config")
	}
	if len(c.ExitKeywords) == 0 {
		return errors.New("config: no exit keywords")
	}
	if len(c.GreetButtons) == 0 {
		return errors.New("config: no greet buttons")
	}
	if c.Sim.PeerAddr != "" {
		if _, err := joytransfer.ParseAddr(c.Sim.PeerAddr); err != nil {
			return errors.Wrap(err, "config: sim.peer_addr")
		}
	}
	return nil
}

// ControllerType returns the parsed controller. Only valid after Validate.
func (c Config) ControllerType() protocol.ControllerType {
	t, _ := protocol.ParseControllerType(c.Controller)
	return t
}

// PulseTiming returns the delays with the minimums enforced.
func (c Config) PulseTiming() joytransfer.Timing {
	return joytransfer.Timing{
		Hold:       c.Timing.Hold,
		Release:    c.Timing.Release,
		WakeSettle: c.Timing.WakeSettle,
		Pacing:     c.Timing.Pacing,
		Settle:     c.Timing.Settle,
	}.Clamp()
}
