// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/bitfsorg/slugline/network"
	"github.com/bitfsorg/slugline/tx"
)

// EnvPrefix prefixes every environment override, e.g. SLUGLINE_RPC_HOST.
const EnvPrefix = "SLUGLINE"

// DefaultAsset is the rune tracked when none is configured.
const DefaultAsset = "TESTSLUGLINERUNE"

// Config is the full runtime configuration.
type Config struct {
	Network  string         `mapstructure:"network"`
	Asset    string         `mapstructure:"asset"`
	Ord      OrdConfig      `mapstructure:"ord"`
	RPC      RPCConfig      `mapstructure:"rpc"`
	Searcher SearcherConfig `mapstructure:"searcher"`
	Log      LogConfig      `mapstructure:"log"`
}

// OrdConfig locates the ord indexer.
type OrdConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RPCConfig locates the bitcoind node. URL, when set, replaces Host and Port.
// Port 0 selects the network's default RPC port.
type RPCConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Wallet   string `mapstructure:"wallet"`
}

// SearcherConfig tunes the searcher service.
type SearcherConfig struct {
	FeeRate       float64 `mapstructure:"fee_rate"`
	ListenAddr    string  `mapstructure:"listen_addr"`
	MinConf       int     `mapstructure:"min_conf"`
	ChangeAddress string  `mapstructure:"change_address"`
}

// LogConfig configures internal/log.
type LogConfig struct {
	Level   string   `mapstructure:"level"`
	Outputs []string `mapstructure:"outputs"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	return Config{
		Network: network.MainNet.Name,
		Asset:   DefaultAsset,
		Ord: OrdConfig{
			URL:     "http://localhost",
			Timeout: 30 * time.Second,
		},
		RPC: RPCConfig{
			Host:   network.DefaultRPCHost,
			Wallet: "searcher",
		},
		Searcher: SearcherConfig{
			FeeRate:    tx.DefaultFeeRate,
			ListenAddr: "127.0.0.1:3000",
			MinConf:    1,
		},
		Log: LogConfig{
			Level:   "info",
			Outputs: []string{"stdout"},
		},
	}
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("network", cfg.Network)
	v.SetDefault("asset", cfg.Asset)
	v.SetDefault("ord.url", cfg.Ord.URL)
	v.SetDefault("ord.timeout", cfg.Ord.Timeout)
	v.SetDefault("rpc.url", cfg.RPC.URL)
	v.SetDefault("rpc.host", cfg.RPC.Host)
	v.SetDefault("rpc.port", cfg.RPC.Port)
	v.SetDefault("rpc.user", cfg.RPC.User)
	v.SetDefault("rpc.password", cfg.RPC.Password)
	v.SetDefault("rpc.wallet", cfg.RPC.Wallet)
	v.SetDefault("searcher.fee_rate", cfg.Searcher.FeeRate)
	v.SetDefault("searcher.listen_addr", cfg.Searcher.ListenAddr)
	v.SetDefault("searcher.min_conf", cfg.Searcher.MinConf)
	v.SetDefault("searcher.change_address", cfg.Searcher.ChangeAddress)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.outputs", cfg.Log.Outputs)
}

// LoadConfig reads defaults, then the file at path (skipped when path is
// empty), then SLUGLINE_* environment variables, later sources winning.
// Files without an extension are read as YAML.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if filepath.Ext(path) == "" {
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return Config{}, errors.Wrapf(ErrConfigNotFound, "%s", path)
			}
			return Config{}, errors.Wrapf(err, "config: read %s", path)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, errors.Wrap(err, "config: decode")
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return errors.Wrapf(err, "config: load %s", f)
		}
	}
	return nil
}

// NetworkInfo returns the lookup-table entry for c.Network.
func (c Config) NetworkInfo() (*network.Network, error) {
	return network.GetNetwork(c.Network)
}

// NodeRPC resolves the node connection. The configured URL wins over Host
// and Port; credentials fall back to SLUGLINE_RPC_USER and SLUGLINE_RPC_PASS.
// The configured wallet is appended to the URL.
func (c Config) NodeRPC() (*network.RPCConfig, error) {
	flags := &network.RPCConfig{
		URL:      c.RPC.URL,
		User:     c.RPC.User,
		Password: c.RPC.Password,
		Wallet:   c.RPC.Wallet,
	}
	if flags.URL == "" {
		n, err := c.NetworkInfo()
		if err != nil {
			return nil, err
		}
		port := c.RPC.Port
		if port == 0 {
			port = int(n.RPCPort)
		}
		host := c.RPC.Host
		if host == "" {
			host = network.DefaultRPCHost
		}
		flags.URL = "http://" + net.JoinHostPort(host, strconv.Itoa(port))
	}

	env := make(map[string]string)
	for _, key := range []string{"SLUGLINE_RPC_URL", "SLUGLINE_RPC_USER", "SLUGLINE_RPC_PASS", "SLUGLINE_RPC_WALLET"} {
		if val, ok := os.LookupEnv(key); ok {
			env[key] = val
		}
	}
	return network.ResolveConfig(flags, env, c.Network)
}

// ChangeScript returns the script for Searcher.ChangeAddress, or nil when
// children should pay back to the searcher UTXO's own script.
func (c Config) ChangeScript() ([]byte, error) {
	if c.Searcher.ChangeAddress == "" {
		return nil, nil
	}
	n, err := c.NetworkInfo()
	if err != nil {
		return nil, err
	}
	return tx.AddressScript(c.Searcher.ChangeAddress, n.Params)
}
