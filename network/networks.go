package network

import (
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/chaincfg"
)

// Network pairs a network name with its chain parameters (address
// encoding) and the node's default RPC port.
type Network struct {
	Name    string
	Params  *chaincfg.Params
	RPCPort uint16
}

// Predefined networks.
var (
	MainNet = Network{Name: "mainnet", Params: &chaincfg.MainNetParams, RPCPort: 8332}

	TestNet = Network{Name: "testnet", Params: &chaincfg.TestNet3Params, RPCPort: 18332}

	// TestNet4 shares testnet address encoding.
	TestNet4 = Network{Name: "testnet4", Params: &chaincfg.TestNet3Params, RPCPort: 48332}

	SigNet = Network{Name: "signet", Params: &chaincfg.SigNetParams, RPCPort: 38332}

	RegTest = Network{Name: "regtest", Params: &chaincfg.RegressionNetParams, RPCPort: 18443}
)

// predefined maps network names to their configs.
var predefined = map[string]*Network{
	"mainnet":  &MainNet,
	"testnet":  &TestNet,
	"testnet4": &TestNet4,
	"signet":   &SigNet,
	"regtest":  &RegTest,
}

// GetNetwork returns a predefined network by name.
// If the name is not predefined, it returns ErrUnknownNetwork.
func GetNetwork(name string) (*Network, error) {
	if n, ok := predefined[name]; ok {
		return n, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, name)
}

// Names returns the predefined network names in sorted order.
func Names() []string {
	names := make([]string, 0, len(predefined))
	for name := range predefined {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
