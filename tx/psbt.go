package tx

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"
)

// psbtMagic prefixes every serialized PSBT.
var psbtMagic = []byte{0x70, 0x73, 0x62, 0x74, 0xff}

// NewPacket wraps an unsigned transaction in a PSBT and records each input's
// previous output (value and script) so an offline signer needs no chain
// access. prevOuts must be in input order.
func NewPacket(msgTx *wire.MsgTx, prevOuts []*UTXO) (*psbt.Packet, error) {
	if msgTx == nil {
		return nil, fmt.Errorf("%w: transaction", ErrNilParam)
	}
	if len(prevOuts) != len(msgTx.TxIn) {
		return nil, fmt.Errorf("%w: %d previous outputs for %d inputs",
			ErrInvalidParams, len(prevOuts), len(msgTx.TxIn))
	}
	packet, err := psbt.NewFromUnsignedTx(msgTx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPSBT, err)
	}
	for i, prev := range prevOuts {
		if prev == nil {
			return nil, fmt.Errorf("%w: prevOut[%d]", ErrNilParam, i)
		}
		packet.Inputs[i].WitnessUtxo = wire.NewTxOut(prev.Value, prev.PkScript)
	}
	return packet, nil
}

// EncodeHex serializes msgTx (with witness data when present) as hex.
func EncodeHex(msgTx *wire.MsgTx) (string, error) {
	var buf bytes.Buffer
	if err := msgTx.Serialize(&buf); err != nil {
		return "", fmt.Errorf("tx: serialize: %w", err)
	}
	return hex.EncodeToString(buf.Bytes()), nil
}

// DecodeSigned turns a submitted parent into a signed transaction. It accepts
// a base64 or hex PSBT, which is finalized when needed and extracted, or a
// hex raw transaction.
func DecodeSigned(encoded string) (*wire.MsgTx, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}

	raw, err := hex.DecodeString(encoded)
	if err != nil {
		raw, err = base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("%w: input is neither hex nor base64", ErrDecode)
		}
	}

	if bytes.HasPrefix(raw, psbtMagic) {
		return extractSigned(raw)
	}

	r := bytes.NewReader(raw)
	var msgTx wire.MsgTx
	if err := msgTx.Deserialize(r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrDecode, r.Len())
	}
	return &msgTx, nil
}

func extractSigned(raw []byte) (*wire.MsgTx, error) {
	packet, err := psbt.NewFromRawBytes(bytes.NewReader(raw), false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if !packet.IsComplete() {
		if err := psbt.MaybeFinalizeAll(packet); err != nil {
			return nil, fmt.Errorf("%w: psbt is not fully signed: %w", ErrDecode, err)
		}
	}
	msgTx, err := psbt.Extract(packet)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return msgTx, nil
}
