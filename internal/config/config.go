// Package config provides reflection-driven environment variable parsing for
// the server's Config struct, modeled on r2northstar/atlas's
// pkg/atlas.Config.UnmarshalEnv.
package config

import (
	"fmt"
	"net/netip"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EnvPrefix is the prefix UnmarshalEnv requires on recognized variables.
const EnvPrefix = "LOGICWORLDD_"

// Config holds every tunable of the server. Fields are populated from
// environment variables named by their `env` struct tag, in the form
// KEY=default (always applies the default when unset) or KEY?=default
// (default may be explicitly overridden with an empty value).
type Config struct {
	// Address to listen for Lidgren UDP traffic on.
	ListenAddr netip.AddrPort `env:"LOGICWORLDD_LISTEN_ADDR=[::]:43531"`

	// Address for the internal /metrics and pprof debug mux. Empty disables it.
	DebugAddr string `env:"LOGICWORLDD_DEBUG_ADDR"`

	// Directory containing the world save file and .succ ExtraData defaults.
	DataDir string `env:"LOGICWORLDD_DATA_DIR=./data"`

	// Minimum log level (trace, debug, info, warn, error, fatal).
	LogLevel zerolog.Level `env:"LOGICWORLDD_LOG_LEVEL=debug"`

	// Whether to log to stdout.
	LogStdout bool `env:"LOGICWORLDD_LOG_STDOUT=true"`

	// Whether stdout logs use zerolog's pretty console writer.
	LogStdoutPretty bool `env:"LOGICWORLDD_LOG_STDOUT_PRETTY=true"`

	// Optional log file path, reopened on SIGHUP.
	LogFile string `env:"LOGICWORLDD_LOG_FILE"`

	// Server name advertised in DiscoveryResponse's MOTD field.
	MOTD string `env:"LOGICWORLDD_MOTD?=A Logic World server"`

	// Maximum concurrently connected players.
	MaxPlayers int `env:"LOGICWORLDD_MAX_PLAYERS=16"`

	// Whether a connect password is required.
	RequirePassword bool `env:"LOGICWORLDD_REQUIRE_PASSWORD"`

	// Minimum interval between ticks (lower bound 16ms per spec).
	TickInterval time.Duration `env:"LOGICWORLDD_TICK_INTERVAL=16ms"`

	// How often an unacknowledged reliable-ordered message is resent.
	ResendInterval time.Duration `env:"LOGICWORLDD_RESEND_INTERVAL=400ms"`

	// How long an incomplete fragment group is kept before being discarded.
	FragmentTimeout time.Duration `env:"LOGICWORLDD_FRAGMENT_TIMEOUT=10s"`
}

// UnmarshalEnv populates c from es (as from os.Environ() or an env file
// parsed by go-envparse), applying the defaults embedded in each field's env
// tag. If incremental is true, only variables present in es are applied and
// fields without a corresponding variable are left untouched — used for
// reloading a subset of settings without clobbering the rest.
func (c *Config) UnmarshalEnv(es []string, incremental bool) error {
	em := map[string]string{}
	for _, e := range es {
		if strings.HasPrefix(e, EnvPrefix) {
			if k, v, ok := strings.Cut(e, "="); ok {
				em[k] = v
			}
		}
	}

	cv := reflect.ValueOf(c).Elem()
	for _, ctf := range reflect.VisibleFields(cv.Type()) {
		env, ok := ctf.Tag.Lookup("env")
		if !ok {
			continue
		}

		var unsettable bool
		key, val, _ := strings.Cut(env, "=")
		if strings.HasSuffix(key, "?") {
			key = strings.TrimSuffix(key, "?")
			unsettable = true
		}

		if v, exists := em[key]; exists {
			if unsettable || v != "" {
				val = v
			}
			delete(em, key)
		} else if incremental {
			continue
		}

		cvf := cv.FieldByName(ctf.Name)
		switch cvf.Interface().(type) {
		case string:
			cvf.SetString(val)
		case int, int8, int16, int32, int64:
			if val == "" {
				cvf.SetInt(0)
			} else if v, err := strconv.ParseInt(val, 10, 64); err == nil {
				cvf.SetInt(v)
			} else {
				return fmt.Errorf("env %s (%T): parse %q: %w", key, cvf.Interface(), val, err)
			}
		case bool:
			if val == "" {
				cvf.SetBool(false)
			} else if v, err := strconv.ParseBool(val); err == nil {
				cvf.SetBool(v)
			} else {
				return fmt.Errorf("env %s (%T): parse %q: %w", key, cvf.Interface(), val, err)
			}
		case zerolog.Level:
			if v, err := zerolog.ParseLevel(val); err == nil {
				cvf.Set(reflect.ValueOf(v))
			} else {
				return fmt.Errorf("env %s (%T): parse %q: %w", key, cvf.Interface(), val, err)
			}
		case time.Duration:
			if v, err := time.ParseDuration(val); err == nil {
				cvf.Set(reflect.ValueOf(v))
			} else {
				return fmt.Errorf("env %s (%T): parse %q: %w", key, cvf.Interface(), val, err)
			}
		case netip.AddrPort:
			if val == "" {
				cvf.Set(reflect.ValueOf(netip.AddrPort{}))
			} else if v, err := netip.ParseAddrPort(val); err == nil {
				cvf.Set(reflect.ValueOf(v))
			} else if v, err1 := netip.ParseAddrPort("[::]" + val); val[0] == ':' && err1 == nil {
				cvf.Set(reflect.ValueOf(v))
			} else {
				return fmt.Errorf("env %s (%T): parse %q: %w", key, cvf.Interface(), val, err)
			}
		default:
			return fmt.Errorf("unhandled config field type %T (%s)", cvf.Interface(), env)
		}
	}

	for key, val := range em {
		if val != "" {
			return fmt.Errorf("unknown environment variable %q", key)
		}
	}
	return nil
}
