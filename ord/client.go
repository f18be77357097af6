package ord

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/go-resty/resty/v2"

	"github.com/bitfsorg/slugline/tx"
)

// DefaultTimeout bounds each indexer request.
const DefaultTimeout = 30 * time.Second

// Client reads address outputs and transactions from an ord server's JSON API.
type Client struct {
	http   *resty.Client
	params *chaincfg.Params
}

// NewClient creates a Client for the ord server at baseURL. params selects the
// address encoding used when turning output scripts back into addresses.
func NewClient(baseURL string, params *chaincfg.Params, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: rc, params: params}
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %w", ErrRequestFailed, path, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("%w: GET %s", ErrNotFound, path)
	}
	if resp.IsError() {
		body := resp.String()
		if len(body) > 512 {
			body = body[:512]
		}
		return fmt.Errorf("%w: GET %s: HTTP %d: %s", ErrRequestFailed, path, resp.StatusCode(), body)
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: GET %s: %w", ErrInvalidResponse, path, err)
	}
	return nil
}

// Outputs returns the indexer's outputs for address, spent ones included.
func (c *Client) Outputs(ctx context.Context, address string) ([]*Output, error) {
	var outs []*Output
	if err := c.get(ctx, "/outputs/"+url.PathEscape(address), &outs); err != nil {
		return nil, err
	}
	return outs, nil
}

// ListOutputs returns the outputs for address as builder snapshots.
func (c *Client) ListOutputs(ctx context.Context, address string) ([]*tx.UTXO, error) {
	outs, err := c.Outputs(ctx, address)
	if err != nil {
		return nil, err
	}
	utxos := make([]*tx.UTXO, 0, len(outs))
	for _, o := range outs {
		u, err := o.UTXO()
		if err != nil {
			return nil, err
		}
		utxos = append(utxos, u)
	}
	return utxos, nil
}

// Transaction returns the indexer's view of txid.
func (c *Client) Transaction(ctx context.Context, txid string) (*TxDetail, error) {
	var detail TxDetail
	if err := c.get(ctx, "/tx/"+url.PathEscape(txid), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ResolveOutput looks up the output op refers to, including its asset
// balances. The indexer has no per-outpoint rune lookup here, so the
// creating transaction gives the output script, the script gives the
// address, and the address's outputs are searched for op.
func (c *Client) ResolveOutput(ctx context.Context, op wire.OutPoint) (*tx.UTXO, error) {
	detail, err := c.Transaction(ctx, op.Hash.String())
	if err != nil {
		return nil, err
	}
	outputs := detail.Transaction.Output
	if int(op.Index) >= len(outputs) {
		return nil, fmt.Errorf("%w: %s has %d outputs", ErrOutputNotFound, op, len(outputs))
	}

	script, err := hex.DecodeString(outputs[op.Index].ScriptPubKey)
	if err != nil {
		return nil, fmt.Errorf("%w: script of %s: %w", ErrInvalidResponse, op, err)
	}
	_, addrs, _, err := txscript.ExtractPkScriptAddrs(script, c.params)
	if err != nil || len(addrs) == 0 {
		return nil, fmt.Errorf("%w: %s script %x has no address", ErrOutputNotFound, op, script)
	}

	outs, err := c.Outputs(ctx, addrs[0].EncodeAddress())
	if err != nil {
		return nil, err
	}
	want := op.String()
	for _, o := range outs {
		if o.Outpoint != want {
			continue
		}
		u, err := o.UTXO()
		if err != nil {
			return nil, err
		}
		if len(u.PkScript) == 0 {
			u.PkScript = script
		}
		return u, nil
	}
	return nil, fmt.Errorf("%w: %s not indexed at %s", ErrOutputNotFound, want, addrs[0].EncodeAddress())
}
