package main

import (
	"fmt"
	"os"

	"github.com/cheynewallace/tabby"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/bitfsorg/slugline/ord"
	"github.com/bitfsorg/slugline/tx"
)

func buildTx(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	n, err := cfg.NetworkInfo()
	if err != nil {
		return err
	}

	indexer := ord.NewClient(cfg.Ord.URL, n.Params, cfg.Ord.Timeout)
	builder := tx.NewParentBuilder(indexer, n.Params, cfg.Asset)

	parent, err := builder.Build(c.Context, tx.ParentRequest{
		PaymentAddress:     c.String("btc-address"),
		AssetAddress:       c.String("runes-address"),
		DestinationAddress: c.String("destination-address"),
		Amount:             c.Int64("amount"),
	})
	if err != nil {
		return errors.Wrap(err, "build-tx")
	}

	printParent(parent, cfg.Asset)

	rawHex, err := parent.RawHex()
	if err != nil {
		return err
	}
	encoded, err := parent.PSBT()
	if err != nil {
		return err
	}
	fmt.Println("\nRaw transaction hex:")
	fmt.Println(rawHex)
	fmt.Println("\nPSBT (base64):")
	fmt.Println(encoded)

	if out := c.String("out"); out != "" {
		if err := os.WriteFile(out, []byte(encoded+"\n"), 0600); err != nil {
			return errors.Wrapf(err, "write %s", out)
		}
		fmt.Printf("\nPSBT written to %s\n", out)
	}
	return nil
}

func printParent(parent *tx.ParentTx, asset string) {
	fmt.Printf("Transaction ID: %s\n", parent.TxID())
	fmt.Printf("Version: %d\n\n", parent.Tx.Version)

	t := tabby.New()
	t.AddHeader("Input", "Outpoint", "Value (sat)", "Role")
	var inputTotal int64
	for i, u := range parent.Payment {
		t.AddLine(i, u.String(), u.Value, "payment")
		inputTotal += u.Value
	}
	bal, _ := parent.Asset.Balance(asset)
	role := "asset " + asset
	if bal.Amount != nil {
		role = fmt.Sprintf("asset %s %s %s", asset, bal.Amount, bal.Symbol)
	}
	t.AddLine(parent.AssetInputIndex, parent.Asset.String(), parent.Asset.Value, role)
	inputTotal += parent.Asset.Value
	t.Print()
	fmt.Println()

	roles := map[int]string{tx.AnchorIndex: "P2A anchor", tx.PaymentIndex: "destination", tx.ChangeIndex: "change"}
	t = tabby.New()
	t.AddHeader("Output", "Value (sat)", "Role")
	var outputTotal int64
	for i, out := range parent.Tx.TxOut {
		t.AddLine(i, out.Value, roles[i])
		outputTotal += out.Value
	}
	t.Print()

	fmt.Printf("\nTotal inputs: %d sat\nTotal outputs: %d sat\nFee: %d sat\n",
		inputTotal, outputTotal, inputTotal-outputTotal)
	for _, w := range parent.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
}
