// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import "errors"

var (
	// ErrInvalidNetwork indicates the network name is not recognized.
	ErrInvalidNetwork = errors.New("config: invalid network (must be \"mainnet\", \"testnet\", \"testnet4\", \"signet\", or \"regtest\")")

	// ErrInvalidListenAddr indicates the listen address is malformed.
	ErrInvalidListenAddr = errors.New("config: invalid listen address")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrEmptyAsset indicates no designated asset is configured.
	ErrEmptyAsset = errors.New("config: asset must not be empty")

	// ErrInvalidOrdURL indicates the ord server URL is not an absolute http(s) URL.
	ErrInvalidOrdURL = errors.New("config: invalid ord server URL")

	// ErrInvalidFeeRate indicates a non-positive fee rate.
	ErrInvalidFeeRate = errors.New("config: fee rate must be positive")

	// ErrInvalidMinConf indicates a searcher UTXO could be unconfirmed. A v3
	// child may have only one unconfirmed parent, the anchored one.
	ErrInvalidMinConf = errors.New("config: min_conf must be at least 1")

	// ErrInvalidChangeAddress indicates the change address does not decode for the network.
	ErrInvalidChangeAddress = errors.New("config: invalid change address")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")
)
