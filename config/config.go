// Package config loads client and daemon configuration.
//
// Values are layered, highest precedence first: explicitly set flags,
// CONCEPT_* environment variables, a YAML file, defaults. Keys are snake_case;
// flag names are the kebab-case form of the same key (--max-msg-bytes).
//
// Example client file:
//
//	address: db.example.com:1729
//	tls: true
//	root_ca: /etc/concept/ca.pem
//	timeout: 30s
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"xdao.co/concept/rpc"
)

// EnvPrefix is stripped from environment variable names: CONCEPT_ROOT_CA
// sets root_ca.
const EnvPrefix = "CONCEPT_"

const (
	DefaultAddress = "127.0.0.1:1729"
	DefaultListen  = "127.0.0.1:1729"
	DefaultTimeout = 30 * time.Second
)

// Client selects the server and how the channel to it is secured.
type Client struct {
	Address string `koanf:"address"`
	TLS     bool   `koanf:"tls"`
	// RootCA is a PEM bundle path; empty under TLS means the platform trust store.
	RootCA      string        `koanf:"root_ca"`
	Timeout     time.Duration `koanf:"timeout"`
	MaxMsgBytes int           `koanf:"max_msg_bytes"`
}

func (c Client) Validate() error {
	if strings.TrimSpace(c.Address) == "" {
		return errors.New("config: empty address")
	}
	if c.RootCA != "" && !c.TLS {
		return errors.New("config: root_ca requires tls")
	}
	if c.Timeout < 0 {
		return errors.New("config: negative timeout")
	}
	if c.MaxMsgBytes < 0 {
		return errors.New("config: negative max_msg_bytes")
	}
	return nil
}

// ChannelFactory builds the factory the configuration selects. Under TLS the
// trust material is read here.
func (c Client) ChannelFactory() (rpc.ChannelFactory, error) {
	opts := rpc.Options{MaxMsgBytes: c.MaxMsgBytes}
	if !c.TLS {
		return rpc.PlainText{Options: opts}, nil
	}
	return rpc.NewTLS(c.RootCA, opts)
}

// Daemon configures the reference server.
type Daemon struct {
	Listen     string `koanf:"listen"`
	TLSCert    string `koanf:"tls_cert"`
	TLSKey     string `koanf:"tls_key"`
	LogLevel   string `koanf:"log_level"`
	LogConsole bool   `koanf:"log_console"`
}

func (d Daemon) Validate() error {
	if strings.TrimSpace(d.Listen) == "" {
		return errors.New("config: empty listen address")
	}
	if (d.TLSCert == "") != (d.TLSKey == "") {
		return errors.New("config: tls_cert and tls_key must be set together")
	}
	return nil
}

func (d Daemon) TLS() bool { return d.TLSCert != "" }

// LoadClient loads a Client from path (optional) and flags (optional).
func LoadClient(path string, flags *pflag.FlagSet) (Client, error) {
	var cfg Client
	err := load(&cfg, map[string]any{
		"address":       DefaultAddress,
		"tls":           false,
		"root_ca":       "",
		"timeout":       DefaultTimeout.String(),
		"max_msg_bytes": 0,
	}, path, flags)
	if err != nil {
		return Client{}, err
	}
	return cfg, cfg.Validate()
}

// LoadDaemon loads a Daemon from path (optional) and flags (optional).
func LoadDaemon(path string, flags *pflag.FlagSet) (Daemon, error) {
	var cfg Daemon
	err := load(&cfg, map[string]any{
		"listen":      DefaultListen,
		"tls_cert":    "",
		"tls_key":     "",
		"log_level":   "info",
		"log_console": false,
	}, path, flags)
	if err != nil {
		return Daemon{}, err
	}
	return cfg, cfg.Validate()
}

func load(out any, defaults map[string]any, path string, flags *pflag.FlagSet) error {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return fmt.Errorf("config: defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return fmt.Errorf("config: reading %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return fmt.Errorf("config: env: %w", err)
	}
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if _, known := defaults[key]; !known {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return fmt.Errorf("config: flags: %w", err)
		}
	}
	if err := k.Unmarshal("", out); err != nil {
		return fmt.Errorf("config: decode: %w", err)
	}
	return nil
}
