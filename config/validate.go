// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if _, err := cfg.NetworkInfo(); err != nil {
		return ErrInvalidNetwork
	}

	if strings.TrimSpace(cfg.Asset) == "" {
		return ErrEmptyAsset
	}

	if err := validateHTTPURL(cfg.Ord.URL); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOrdURL, err)
	}

	if cfg.Searcher.FeeRate <= 0 {
		return ErrInvalidFeeRate
	}

	if cfg.Searcher.MinConf < 1 {
		return ErrInvalidMinConf
	}

	if err := validateAddr(cfg.Searcher.ListenAddr); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidListenAddr, err)
	}

	if _, err := cfg.ChangeScript(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChangeAddress, err)
	}

	if !validLogLevels[strings.ToLower(cfg.Log.Level)] {
		return ErrInvalidLogLevel
	}

	return nil
}

// validateAddr checks that addr is a valid host:port address.
func validateAddr(addr string) error {
	_, _, err := net.SplitHostPort(addr)
	return err
}

// validateHTTPURL checks that raw is an absolute http or https URL.
func validateHTTPURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
