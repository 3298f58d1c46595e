// Package config loads a [client.Config] from an optional YAML file, an
// optional .env file and XHTTP_* environment variables, in that order of
// increasing precedence. Unset keys keep the values of
// [client.DefaultConfig].
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/adamwoolhether/xhttp/client"
)

// EnvPrefix prefixes every environment variable read by [Load], e.g.
// XHTTP_SOCKET_TIMEOUT=45s. Timeouts given as bare integers, in a file or
// the environment, are milliseconds.
const EnvPrefix = "XHTTP"

// Option is a functional option for [Load].
type Option func(*loader) error

type loader struct {
	configFile string
	envFile    string
}

// WithConfigFile reads a YAML (or any format viper recognises by
// extension) configuration file.
func WithConfigFile(path string) Option {
	return func(l *loader) error {
		if path == "" {
			return errors.New("config file path must not be empty")
		}
		l.configFile = path
		return nil
	}
}

// WithEnvFile loads path into the process environment before variables
// are read. Variables already set take precedence over the file.
func WithEnvFile(path string) Option {
	return func(l *loader) error {
		if path == "" {
			return errors.New("env file path must not be empty")
		}
		l.envFile = path
		return nil
	}
}

// Load resolves and validates a client configuration.
func Load(optFns ...Option) (client.Config, error) {
	var l loader
	for _, opt := range optFns {
		if err := opt(&l); err != nil {
			return client.Config{}, fmt.Errorf("applying config option: %w", err)
		}
	}

	v := viper.New()

	def := client.DefaultConfig()
	v.SetDefault("default_status_code", def.DefaultStatusCode)
	v.SetDefault("connect_timeout", def.ConnectTimeout)
	v.SetDefault("socket_timeout", def.SocketTimeout)
	v.SetDefault("connection_request_timeout", def.ConnectionRequestTimeout)

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return client.Config{}, fmt.Errorf("reading config file %s: %w", l.configFile, err)
		}
	}

	if l.envFile != "" {
		if err := godotenv.Load(l.envFile); err != nil {
			return client.Config{}, fmt.Errorf("loading env file %s: %w", l.envFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	var cfg client.Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		millisecondsHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return client.Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return client.Config{}, err
	}

	return cfg, nil
}

var durationType = reflect.TypeFor[time.Duration]()

// millisecondsHook decodes unit-less integers, and strings holding one,
// into a [time.Duration] of that many milliseconds. Values with a unit
// are left to the duration string hook.
func millisecondsHook() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != durationType {
			return data, nil
		}

		var ms int64
		switch v := data.(type) {
		case int:
			ms = int64(v)
		case int64:
			ms = v
		case uint64:
			ms = int64(v)
		case float64:
			if v != float64(int64(v)) {
				return nil, fmt.Errorf("timeout %v: milliseconds must be a whole number", v)
			}
			ms = int64(v)
		case string:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return data, nil
			}
			ms = n
		default:
			return data, nil
		}

		return time.Duration(ms) * time.Millisecond, nil
	}
}
