/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	actionRate     float64
	bind           string
	database       string
	decks          string
	port           int
	prefix         string
	profile        bool
	redisURL       string
	sessionTimeout time.Duration
	storage        string
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.actionRate <= 0 {
		return fmt.Errorf("invalid action rate (must be greater than 0): %v", c.actionRate)
	}
	switch c.storage {
	case "memory":
	case "sqlite":
		if c.database == "" {
			return errors.New("--database is required when --storage=sqlite")
		}
	case "redis":
		if c.redisURL == "" {
			return errors.New("--redis-url is required when --storage=redis")
		}
	default:
		return fmt.Errorf("invalid storage backend (must be one of memory, sqlite, redis): %q", c.storage)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// storageDSN is the connection string for the selected backend.
func (c *Config) storageDSN() string {
	switch c.storage {
	case "sqlite":
		return c.database
	case "redis":
		return c.redisURL
	}
	return ""
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("PHYSICSBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "physicsbox",
		Short:         "A team party game for reviewing physics vocabulary, served as a single webapp.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.Float64Var(&cfg.actionRate, "action-rate", 5, "game actions allowed per second per client (env: PHYSICSBOX_ACTION_RATE)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: PHYSICSBOX_BIND)")
	fs.StringVar(&cfg.database, "database", "physicsbox.db", "path to sqlite database, for --storage=sqlite (env: PHYSICSBOX_DATABASE)")
	fs.StringVar(&cfg.decks, "decks", "", "path to yaml deck file replacing the built-in cards (env: PHYSICSBOX_DECKS)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: PHYSICSBOX_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: PHYSICSBOX_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: PHYSICSBOX_PROFILE)")
	fs.StringVar(&cfg.redisURL, "redis-url", "", "redis connection url, for --storage=redis (env: PHYSICSBOX_REDIS_URL)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle game sessions are ended (env: PHYSICSBOX_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.storage, "storage", "memory", "where to cache board and scores: memory, sqlite or redis (env: PHYSICSBOX_STORAGE)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: PHYSICSBOX_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: PHYSICSBOX_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: PHYSICSBOX_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: PHYSICSBOX_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("physicsbox v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
