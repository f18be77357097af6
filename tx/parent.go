package tx

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

const (
	// PaymentIndex is the output position of the destination payment.
	PaymentIndex = 1

	// ChangeIndex is the output position of the change output, when present.
	ChangeIndex = 2
)

// UTXOSource lists the outputs an indexer knows for an address, spent or not.
type UTXOSource interface {
	ListOutputs(ctx context.Context, address string) ([]*UTXO, error)
}

// ParentParams holds already-selected inputs for AssembleParent.
type ParentParams struct {
	Payment     []*UTXO // payment UTXOs in selection order (may be empty)
	Asset       *UTXO   // the single asset-bearing UTXO, spent last
	Destination []byte  // destination locking script
	Change      []byte  // change locking script (payment source)
	Amount      int64   // payment amount, satoshis
	AssetName   string  // designated asset the Asset UTXO must carry
}

// ParentTx is an unsigned zero-fee parent and its PSBT.
type ParentTx struct {
	Tx     *wire.MsgTx
	Packet *psbt.Packet

	Payment []*UTXO
	Asset   *UTXO

	AnchorIndex     int
	AssetInputIndex int
	HasChange       bool

	// Warnings lists relay-policy problems found before signing, such as
	// dust outputs. They do not stop the build.
	Warnings []string
}

// AssembleParent builds the unsigned parent from selected inputs.
//
// Output layout:
//
//	[0] anchor   (0 sat, OP_1 <0x4e73>)
//	[1] payment  (Amount -> Destination)
//	[2] change   (sum(Payment) + Asset.Value - Amount -> Change), only if > 0
//
// Inputs:
//
//	Payment UTXOs in selection order
//	[last] the asset UTXO
//
// Every input signals RBF and the transaction is version 3. No fee is
// paid; the searcher's child covers it.
func AssembleParent(p *ParentParams) (*ParentTx, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: params", ErrNilParam)
	}
	if p.Asset == nil {
		return nil, fmt.Errorf("%w: asset UTXO", ErrNilParam)
	}
	if p.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %d", ErrInvalidParams, p.Amount)
	}
	if len(p.Destination) == 0 || len(p.Change) == 0 {
		return nil, fmt.Errorf("%w: destination and change scripts are required", ErrInvalidParams)
	}
	if p.AssetName != "" && !p.Asset.HasAsset(p.AssetName) {
		return nil, fmt.Errorf("%w: %s does not carry %s", ErrNoAssetUTXO, p.Asset, p.AssetName)
	}

	var paymentTotal int64
	for i, u := range p.Payment {
		if u == nil {
			return nil, fmt.Errorf("%w: payment[%d]", ErrNilParam, i)
		}
		if u.OutPoint() == p.Asset.OutPoint() {
			return nil, fmt.Errorf("%w: payment[%d] is the asset UTXO", ErrInvalidParams, i)
		}
		paymentTotal += u.Value
	}
	inputTotal := paymentTotal + p.Asset.Value
	if inputTotal < p.Amount {
		return nil, &InsufficientFundsError{Available: inputTotal, Required: p.Amount}
	}

	msgTx := wire.NewMsgTx(Version)
	prevOuts := make([]*UTXO, 0, len(p.Payment)+1)
	for _, u := range p.Payment {
		msgTx.AddTxIn(newRBFInput(u))
		prevOuts = append(prevOuts, u)
	}
	msgTx.AddTxIn(newRBFInput(p.Asset))
	prevOuts = append(prevOuts, p.Asset)

	msgTx.AddTxOut(AnchorOutput())
	payment := wire.NewTxOut(p.Amount, p.Destination)
	msgTx.AddTxOut(payment)

	change := inputTotal - p.Amount
	if change > 0 {
		msgTx.AddTxOut(wire.NewTxOut(change, p.Change))
	}

	if err := CheckContract(msgTx); err != nil {
		return nil, err
	}

	packet, err := NewPacket(msgTx, prevOuts)
	if err != nil {
		return nil, err
	}

	result := &ParentTx{
		Tx:              msgTx,
		Packet:          packet,
		Payment:         p.Payment,
		Asset:           p.Asset,
		AnchorIndex:     AnchorIndex,
		AssetInputIndex: AssetInputIndex(msgTx),
		HasChange:       change > 0,
	}
	result.Warnings = relayWarnings(msgTx)
	return result, nil
}

func newRBFInput(u *UTXO) *wire.TxIn {
	op := u.OutPoint()
	in := wire.NewTxIn(&op, nil, nil)
	in.Sequence = RBFSequence
	return in
}

// relayWarnings flags outputs the node would refuse to relay. The anchor is
// exempt: a zero-value anchor is only valid inside a package.
func relayWarnings(msgTx *wire.MsgTx) []string {
	var warnings []string
	for i, out := range msgTx.TxOut {
		if i == AnchorIndex {
			continue
		}
		if IsDust(out) {
			warnings = append(warnings, fmt.Sprintf("output %d (%d sat) is below the dust threshold", i, out.Value))
		}
	}
	// Unsigned inputs carry no witness yet; assume roughly one P2WPKH
	// signature per input.
	estimate := VSize(msgTx) + int64(len(msgTx.TxIn))*p2wpkhWitnessVSize
	if estimate > MaxTRUCVSize {
		warnings = append(warnings, fmt.Sprintf("estimated size %d vB exceeds the %d vB version 3 limit", estimate, MaxTRUCVSize))
	}
	return warnings
}

// TxID returns the parent's transaction id. Signing does not change it.
func (p *ParentTx) TxID() chainhash.Hash {
	return p.Tx.TxHash()
}

// PSBT returns the base64 PSBT for the external signer.
func (p *ParentTx) PSBT() (string, error) {
	encoded, err := p.Packet.B64Encode()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPSBT, err)
	}
	return encoded, nil
}

// RawHex returns the unsigned transaction as hex.
func (p *ParentTx) RawHex() (string, error) {
	return EncodeHex(p.Tx)
}

// ParentRequest names the addresses and amount for one parent build.
type ParentRequest struct {
	PaymentAddress     string
	AssetAddress       string
	DestinationAddress string
	Amount             int64
}

// ParentBuilder fetches UTXO snapshots and assembles parents for one
// designated asset on one network.
type ParentBuilder struct {
	source UTXOSource
	params *chaincfg.Params
	asset  string
}

// NewParentBuilder creates a ParentBuilder.
func NewParentBuilder(source UTXOSource, params *chaincfg.Params, asset string) *ParentBuilder {
	return &ParentBuilder{source: source, params: params, asset: asset}
}

// Asset returns the designated asset name.
func (b *ParentBuilder) Asset() string {
	return b.asset
}

// Build fetches payment and asset UTXOs, selects inputs and assembles the
// parent. Outputs carrying assets or inscriptions are never used as payment.
func (b *ParentBuilder) Build(ctx context.Context, req ParentRequest) (*ParentTx, error) {
	if b.source == nil || b.params == nil {
		return nil, fmt.Errorf("%w: builder source or network", ErrNilParam)
	}
	if b.asset == "" {
		return nil, fmt.Errorf("%w: designated asset is empty", ErrInvalidParams)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %d", ErrInvalidParams, req.Amount)
	}

	changeScript, err := b.addressScript(req.PaymentAddress)
	if err != nil {
		return nil, err
	}
	destScript, err := b.addressScript(req.DestinationAddress)
	if err != nil {
		return nil, err
	}
	if _, err := b.addressScript(req.AssetAddress); err != nil {
		return nil, err
	}

	paymentUTXOs, err := b.source.ListOutputs(ctx, req.PaymentAddress)
	if err != nil {
		return nil, fmt.Errorf("tx: fetch payment UTXOs: %w", err)
	}
	selected, err := SelectPayment(spendable(paymentUTXOs, true), req.Amount)
	if err != nil {
		return nil, err
	}

	assetUTXOs, err := b.source.ListOutputs(ctx, req.AssetAddress)
	if err != nil {
		return nil, fmt.Errorf("tx: fetch asset UTXOs: %w", err)
	}
	asset, err := SelectAsset(spendable(assetUTXOs, false), b.asset)
	if err != nil {
		return nil, err
	}

	return AssembleParent(&ParentParams{
		Payment:     selected,
		Asset:       asset,
		Destination: destScript,
		Change:      changeScript,
		Amount:      req.Amount,
		AssetName:   b.asset,
	})
}

// addressScript decodes addr for the builder's network and returns its
// locking script.
func (b *ParentBuilder) addressScript(addr string) ([]byte, error) {
	return AddressScript(addr, b.params)
}

// AddressScript decodes addr, checks it belongs to params' network and
// returns its locking script.
func AddressScript(addr string, params *chaincfg.Params) ([]byte, error) {
	decoded, err := btcutil.DecodeAddress(addr, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, addr, err)
	}
	if !decoded.IsForNet(params) {
		return nil, fmt.Errorf("%w: %q is not a %s address", ErrInvalidAddress, addr, params.Name)
	}
	script, err := txscript.PayToAddrScript(decoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptBuild, err)
	}
	return script, nil
}
