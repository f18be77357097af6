package network

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// RPCConfig holds the connection parameters for a Bitcoin node's JSON-RPC interface.
type RPCConfig struct {
	URL      string `json:"url"`
	User     string `json:"user"`
	Password string `json:"password"`
	Network  string `json:"network"`
	Wallet   string `json:"wallet"`
}

// DefaultRPCHost is the node host used when none is configured.
const DefaultRPCHost = "localhost"

// PresetURL returns the node URL for host on the named network's default
// RPC port.
func PresetURL(network, host string) (string, error) {
	n, err := GetNetwork(network)
	if err != nil {
		return "", err
	}
	if host == "" {
		host = DefaultRPCHost
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(int(n.RPCPort))), nil
}

// WalletURL appends the /wallet/<name> path bitcoind uses for
// wallet-scoped calls. It is a no-op when wallet is empty or rawURL already
// targets a wallet.
func WalletURL(rawURL, wallet string) string {
	if wallet == "" || strings.Contains(rawURL, "/wallet/") {
		return rawURL
	}
	return strings.TrimRight(rawURL, "/") + "/wallet/" + url.PathEscape(wallet)
}

// ResolveConfig merges RPC configuration from three sources with decreasing priority:
//  1. CLI flags (highest priority)
//  2. Environment variables (SLUGLINE_RPC_URL, SLUGLINE_RPC_USER, SLUGLINE_RPC_PASS,
//     SLUGLINE_RPC_WALLET)
//  3. Network presets (lowest priority): http://localhost:<network RPC port>
//
// The wallet, when set, is appended to the resolved URL.
func ResolveConfig(flags *RPCConfig, env map[string]string, network string) (*RPCConfig, error) {
	preset, err := PresetURL(network, DefaultRPCHost)
	if err != nil {
		return nil, err
	}

	// Layer 1: preset defaults.
	result := RPCConfig{URL: preset, Network: network}

	// Layer 2: environment variables override preset defaults.
	if env != nil {
		if v, ok := env["SLUGLINE_RPC_URL"]; ok && v != "" {
			result.URL = v
		}
		if v, ok := env["SLUGLINE_RPC_USER"]; ok && v != "" {
			result.User = v
		}
		if v, ok := env["SLUGLINE_RPC_PASS"]; ok && v != "" {
			result.Password = v
		}
		if v, ok := env["SLUGLINE_RPC_WALLET"]; ok && v != "" {
			result.Wallet = v
		}
	}

	// Layer 3: CLI flags have highest priority.
	if flags != nil {
		if flags.URL != "" {
			result.URL = flags.URL
		}
		if flags.User != "" {
			result.User = flags.User
		}
		if flags.Password != "" {
			result.Password = flags.Password
		}
		if flags.Wallet != "" {
			result.Wallet = flags.Wallet
		}
	}

	if _, err := url.ParseRequestURI(result.URL); err != nil {
		return nil, fmt.Errorf("network: invalid RPC URL %q: %w", result.URL, err)
	}
	result.URL = WalletURL(result.URL, result.Wallet)

	return &result, nil
}
