// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/bitfsorg/slugline/network"
)

// regtestAddress returns a regtest P2WPKH address.
func regtestAddress(t *testing.T) string {
	t.Helper()
	addr, err := btcutil.NewAddressWitnessPubKeyHash(make([]byte, 20), &chaincfg.RegressionNetParams)
	if err != nil {
		t.Fatal(err)
	}
	return addr.EncodeAddress()
}

// ---------------------------------------------------------------------------
// DefaultConfig tests
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Network", cfg.Network, "mainnet"},
		{"Asset", cfg.Asset, "TESTSLUGLINERUNE"},
		{"Ord.URL", cfg.Ord.URL, "http://localhost"},
		{"Ord.Timeout", cfg.Ord.Timeout, 30 * time.Second},
		{"RPC.Host", cfg.RPC.Host, "localhost"},
		{"RPC.Wallet", cfg.RPC.Wallet, "searcher"},
		{"Searcher.FeeRate", cfg.Searcher.FeeRate, 100.0},
		{"Searcher.ListenAddr", cfg.Searcher.ListenAddr, "127.0.0.1:3000"},
		{"Searcher.MinConf", cfg.Searcher.MinConf, 1},
		{"Log.Level", cfg.Log.Level, "info"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// LoadConfig tests
// ---------------------------------------------------------------------------

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigNoFile(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("LoadConfig(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeFile(t, "slugline.yaml", `
network: regtest
asset: UNCOMMON•GOODS
ord:
  url: http://127.0.0.1:8080
  timeout: 5s
rpc:
  port: 18443
  user: alice
  wallet: fees
searcher:
  fee_rate: 12.5
  min_conf: 3
log:
  level: debug
  outputs: [stderr, /tmp/slugline.log]
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Network", cfg.Network, "regtest"},
		{"Asset", cfg.Asset, "UNCOMMON•GOODS"},
		{"Ord.URL", cfg.Ord.URL, "http://127.0.0.1:8080"},
		{"Ord.Timeout", cfg.Ord.Timeout, 5 * time.Second},
		{"RPC.Port", cfg.RPC.Port, 18443},
		{"RPC.User", cfg.RPC.User, "alice"},
		{"RPC.Wallet", cfg.RPC.Wallet, "fees"},
		{"Searcher.FeeRate", cfg.Searcher.FeeRate, 12.5},
		{"Searcher.MinConf", cfg.Searcher.MinConf, 3},
		{"Log.Level", cfg.Log.Level, "debug"},
		// Unset fields retain defaults.
		{"RPC.Host", cfg.RPC.Host, "localhost"},
		{"Searcher.ListenAddr", cfg.Searcher.ListenAddr, "127.0.0.1:3000"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}

	if want := []string{"stderr", "/tmp/slugline.log"}; !reflect.DeepEqual(cfg.Log.Outputs, want) {
		t.Errorf("Log.Outputs = %v, want %v", cfg.Log.Outputs, want)
	}
}

func TestLoadConfigExtensionless(t *testing.T) {
	path := writeFile(t, "config", "network: signet\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Network != "signet" {
		t.Errorf("Network = %q, want %q", cfg.Network, "signet")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeFile(t, "slugline.yaml", "network: testnet\nsearcher:\n  fee_rate: 5\n")
	t.Setenv("SLUGLINE_NETWORK", "signet")
	t.Setenv("SLUGLINE_SEARCHER_FEE_RATE", "42.5")
	t.Setenv("SLUGLINE_ORD_TIMEOUT", "2m")
	t.Setenv("SLUGLINE_LOG_OUTPUTS", "stdout,/var/log/slugline.log")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Network != "signet" {
		t.Errorf("Network = %q, want env override %q", cfg.Network, "signet")
	}
	if cfg.Searcher.FeeRate != 42.5 {
		t.Errorf("FeeRate = %v, want 42.5", cfg.Searcher.FeeRate)
	}
	if cfg.Ord.Timeout != 2*time.Minute {
		t.Errorf("Ord.Timeout = %v, want 2m", cfg.Ord.Timeout)
	}
	if want := []string{"stdout", "/var/log/slugline.log"}; !reflect.DeepEqual(cfg.Log.Outputs, want) {
		t.Errorf("Log.Outputs = %v, want %v", cfg.Log.Outputs, want)
	}
}

func TestLoadConfigNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/slugline.yaml")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig nonexistent: got %v, want ErrConfigNotFound", err)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := writeFile(t, "slugline.yaml", "network: [unterminated\n")
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig should fail on malformed YAML")
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = "SLUGLINE_TEST_DOTENV_VALUE"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := writeFile(t, ".env", key+"=from-file\n")
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv(key); got != "from-file" {
		t.Errorf("%s = %q, want %q", key, got, "from-file")
	}
}

// ---------------------------------------------------------------------------
// Node RPC resolution tests
// ---------------------------------------------------------------------------

func TestNodeRPC(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"mainnet preset", func(*Config) {}, "http://localhost:8332/wallet/searcher"},
		{"regtest preset", func(c *Config) { c.Network = "regtest" }, "http://localhost:18443/wallet/searcher"},
		{"testnet4 preset", func(c *Config) { c.Network = "testnet4" }, "http://localhost:48332/wallet/searcher"},
		{"custom host", func(c *Config) { c.RPC.Host = "10.0.0.5" }, "http://10.0.0.5:8332/wallet/searcher"},
		{"custom port", func(c *Config) { c.RPC.Port = 9999 }, "http://localhost:9999/wallet/searcher"},
		{"explicit url", func(c *Config) { c.RPC.URL = "http://node:8332/" }, "http://node:8332/wallet/searcher"},
		{"no wallet", func(c *Config) { c.RPC.Wallet = "" }, "http://localhost:8332"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			rpc, err := cfg.NodeRPC()
			if err != nil {
				t.Fatalf("NodeRPC: %v", err)
			}
			if rpc.URL != tc.want {
				t.Errorf("URL = %q, want %q", rpc.URL, tc.want)
			}
		})
	}
}

func TestNodeRPCPasswordFromEnv(t *testing.T) {
	t.Setenv("SLUGLINE_RPC_PASS", "hunter2")
	cfg := DefaultConfig()
	cfg.RPC.User = "alice"

	rpc, err := cfg.NodeRPC()
	if err != nil {
		t.Fatalf("NodeRPC: %v", err)
	}
	if rpc.User != "alice" || rpc.Password != "hunter2" {
		t.Errorf("credentials = %q/%q, want alice/hunter2", rpc.User, rpc.Password)
	}
}

func TestNodeRPCUnknownNetwork(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Network = "bsv"
	if _, err := cfg.NodeRPC(); !errors.Is(err, network.ErrUnknownNetwork) {
		t.Errorf("NodeRPC: got %v, want ErrUnknownNetwork", err)
	}
}

func TestChangeScript(t *testing.T) {
	cfg := DefaultConfig()
	script, err := cfg.ChangeScript()
	if err != nil || script != nil {
		t.Fatalf("ChangeScript without address = %x, %v; want nil, nil", script, err)
	}

	cfg.Network = "regtest"
	cfg.Searcher.ChangeAddress = regtestAddress(t)
	script, err = cfg.ChangeScript()
	if err != nil {
		t.Fatalf("ChangeScript: %v", err)
	}
	if len(script) != 22 || script[0] != 0x00 || script[1] != 0x14 {
		t.Errorf("ChangeScript = %x, want a P2WPKH script", script)
	}
}

// ---------------------------------------------------------------------------
// ValidateConfig tests
// ---------------------------------------------------------------------------

func TestValidateConfigDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if err := ValidateConfig(cfg); err != nil {
		t.Errorf("ValidateConfig(DefaultConfig()) = %v, want nil", err)
	}
}

func TestValidateConfigErrors(t *testing.T) {
	regtest := regtestAddress(t)
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"unknown network", func(c *Config) { c.Network = "bsv" }, ErrInvalidNetwork},
		{"empty network", func(c *Config) { c.Network = "" }, ErrInvalidNetwork},
		{"empty asset", func(c *Config) { c.Asset = "  " }, ErrEmptyAsset},
		{"ord url without scheme", func(c *Config) { c.Ord.URL = "localhost:80" }, ErrInvalidOrdURL},
		{"ord url wrong scheme", func(c *Config) { c.Ord.URL = "ftp://ord" }, ErrInvalidOrdURL},
		{"zero fee rate", func(c *Config) { c.Searcher.FeeRate = 0 }, ErrInvalidFeeRate},
		{"negative fee rate", func(c *Config) { c.Searcher.FeeRate = -1 }, ErrInvalidFeeRate},
		{"zero min conf", func(c *Config) { c.Searcher.MinConf = 0 }, ErrInvalidMinConf},
		{"negative min conf", func(c *Config) { c.Searcher.MinConf = -1 }, ErrInvalidMinConf},
		{"listen addr without port", func(c *Config) { c.Searcher.ListenAddr = "127.0.0.1" }, ErrInvalidListenAddr},
		{"empty listen addr", func(c *Config) { c.Searcher.ListenAddr = "" }, ErrInvalidListenAddr},
		{"change address wrong network", func(c *Config) {
			c.Searcher.ChangeAddress = regtest
		}, ErrInvalidChangeAddress},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, ErrInvalidLogLevel},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			err := ValidateConfig(cfg)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateConfigValidNetworks(t *testing.T) {
	for _, name := range network.Names() {
		cfg := DefaultConfig()
		cfg.Network = name
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("ValidateConfig with network %q: %v", name, err)
		}
	}
}

func TestValidateConfig_LogLevelCaseInsensitive(t *testing.T) {
	for _, level := range []string{"DEBUG", "Info", "WARN", "error"} {
		cfg := DefaultConfig()
		cfg.Log.Level = level
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("ValidateConfig with log level %q: %v", level, err)
		}
	}
}

func TestValidateConfig_ValidListenAddrVariants(t *testing.T) {
	for _, addr := range []string{":3000", "0.0.0.0:3000", "[::1]:3000", "localhost:0"} {
		cfg := DefaultConfig()
		cfg.Searcher.ListenAddr = addr
		if err := ValidateConfig(cfg); err != nil {
			t.Errorf("ValidateConfig with listen addr %q: %v", addr, err)
		}
	}
}

func TestErrInvalidNetworkListsNames(t *testing.T) {
	for _, name := range network.Names() {
		if !strings.Contains(ErrInvalidNetwork.Error(), `"`+name+`"`) {
			t.Errorf("ErrInvalidNetwork message does not mention %q", name)
		}
	}
}
