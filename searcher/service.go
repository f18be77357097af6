// Package searcher accepts signed zero-fee parents, funds them with a CPFP
// child from the searcher wallet and submits both as a package.
package searcher

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/bitfsorg/slugline/internal/log"
	"github.com/bitfsorg/slugline/network"
	"github.com/bitfsorg/slugline/tx"
)

// Options tune how children are built.
type Options struct {
	FeeRate      float64 // package fee rate, sat/vB
	MinConf      int     // listunspent minimum confirmations
	ChangeScript []byte  // child output script; the searcher UTXO's own when empty
}

// Result describes a submitted package.
type Result struct {
	ParentTxID  string
	ChildTxID   string
	Fee         int64
	ParentVSize int64
	ChildVSize  int64
}

// Service runs the validate, fund, sign and submit pipeline.
type Service struct {
	validator *Validator
	node      network.NodeService
	selector  UTXOSelector
	submitter *Submitter
	opts      Options
}

// NewService wires a Service. A nil selector uses NewSelector.
func NewService(validator *Validator, node network.NodeService, selector UTXOSelector, opts Options) *Service {
	if selector == nil {
		selector = NewSelector()
	}
	if opts.FeeRate <= 0 {
		opts.FeeRate = tx.DefaultFeeRate
	}
	if opts.MinConf <= 0 {
		opts.MinConf = 1
	}
	return &Service{
		validator: validator,
		node:      node,
		selector:  selector,
		submitter: NewSubmitter(node),
		opts:      opts,
	}
}

// Process handles one submitted parent end to end. Validation failures
// return before the node is contacted.
func (s *Service) Process(ctx context.Context, encoded string) (*Result, error) {
	parent, err := s.validator.Validate(ctx, encoded)
	if err != nil {
		log.Infow("parent rejected", "kind", KindOf(err), "error", err)
		return nil, err
	}
	parentTxID := parent.TxHash().String()
	log.Infow("parent validated", "txid", parentTxID, "inputs", len(parent.TxIn), "outputs", len(parent.TxOut))

	unspent, err := s.node.ListUnspent(ctx, s.opts.MinConf)
	if err != nil {
		return nil, err
	}
	candidates, err := walletCandidates(unspent)
	if err != nil {
		return nil, err
	}

	funding, release, err := s.selector.Select(candidates)
	defer release()
	if err != nil {
		log.Warnw("no searcher UTXO available", "txid", parentTxID, "candidates", len(candidates))
		return nil, err
	}
	log.Debugw("searcher UTXO reserved", "outpoint", funding.String(), "value", funding.Value)

	child, err := tx.BuildChild(&tx.ChildParams{
		Parent:   parent,
		Searcher: funding,
		Script:   s.opts.ChangeScript,
		FeeRate:  s.opts.FeeRate,
	})
	if err != nil {
		return nil, err
	}
	log.Infow("child built",
		"txid", parentTxID,
		"parent_vsize", child.ParentVSize,
		"child_vsize", child.ChildVSize,
		"fee", child.Fee,
		"outpoint", funding.String())

	signed, err := s.sign(ctx, child)
	if err != nil {
		return nil, err
	}

	sub, err := s.submitter.Submit(ctx, parent, signed)
	if err != nil {
		log.Warnw("package not accepted", "txid", parentTxID, "kind", KindOf(err), "error", err)
		return nil, err
	}
	log.Infow("package accepted", "parent", sub.ParentTxID, "child", sub.ChildTxID, "fee", child.Fee)

	return &Result{
		ParentTxID:  sub.ParentTxID,
		ChildTxID:   sub.ChildTxID,
		Fee:         child.Fee,
		ParentVSize: child.ParentVSize,
		ChildVSize:  child.ChildVSize,
	}, nil
}

// sign has the wallet sign the child. The anchor is described as a prevtx
// because the parent is not yet known to the node.
func (s *Service) sign(ctx context.Context, child *tx.ChildTx) (*wire.MsgTx, error) {
	const method = "signrawtransactionwithwallet"

	raw, err := tx.EncodeHex(child.Tx)
	if err != nil {
		return nil, err
	}
	anchor := network.PrevTx{
		TxID:         child.ParentTxID,
		Vout:         tx.AnchorIndex,
		ScriptPubKey: hex.EncodeToString(tx.AnchorScript()),
		Amount:       network.SatToBTC(tx.AnchorValue),
	}
	childTxID := child.Tx.TxHash().String()
	res, err := s.node.SignRawTransactionWithWallet(ctx, raw, []network.PrevTx{anchor})
	if err != nil {
		return nil, fmt.Errorf("%w: child %s", err, childTxID)
	}

	if !res.Complete {
		detail := "no detail"
		if len(res.Errors) > 0 {
			detail = res.Errors[0].Error
		}
		return nil, &network.RPCError{
			Method: method,
			Err:    fmt.Errorf("%w: child %s: %s", network.ErrSigningIncomplete, childTxID, detail),
		}
	}

	signed, err := tx.DecodeSigned(res.Hex)
	if err != nil {
		return nil, &network.RPCError{
			Method: method,
			Err:    fmt.Errorf("%w: child %s: %v", network.ErrInvalidResponse, childTxID, err),
		}
	}
	return signed, nil
}

// Health reports the node's version and relay settings.
func (s *Service) Health(ctx context.Context) (*network.NetworkInfo, error) {
	return s.node.GetNetworkInfo(ctx)
}

// walletCandidates converts spendable wallet outputs, keeping node order.
func walletCandidates(unspent []*network.UTXO) ([]*tx.UTXO, error) {
	candidates := make([]*tx.UTXO, 0, len(unspent))
	for _, u := range unspent {
		if u == nil || !u.Spendable {
			continue
		}
		hash, err := chainhash.NewHashFromStr(u.TxID)
		if err != nil {
			return nil, listUnspentError(u, err)
		}
		script, err := hex.DecodeString(u.ScriptPubKey)
		if err != nil {
			return nil, listUnspentError(u, err)
		}
		candidates = append(candidates, &tx.UTXO{
			TxID:          *hash,
			Vout:          u.Vout,
			Value:         int64(u.Amount),
			PkScript:      script,
			Address:       u.Address,
			Confirmations: u.Confirmations,
		})
	}
	return candidates, nil
}

func listUnspentError(u *network.UTXO, err error) error {
	return &network.RPCError{
		Method: "listunspent",
		Err:    fmt.Errorf("%w: %s:%d: %v", network.ErrInvalidResponse, u.TxID, u.Vout, err),
	}
}
