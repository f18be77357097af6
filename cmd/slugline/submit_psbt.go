package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/bitfsorg/slugline/api"
)

const defaultSubmitTimeout = 60 * time.Second

func submitPSBT(c *cli.Context) error {
	encoded := c.String("psbt")
	if encoded == "" {
		if c.Args().Len() != 1 {
			return errors.New("provide --psbt or a file containing the signed PSBT")
		}
		data, err := os.ReadFile(c.Args().Get(0))
		if err != nil {
			return errors.Wrap(err, "read psbt")
		}
		encoded = string(data)
	}
	encoded = strings.TrimSpace(encoded)

	client := api.NewClient(c.String("searcher-url"), c.Duration("timeout"))
	resp, err := client.SubmitPSBT(c.Context, encoded)
	if err != nil {
		return err
	}

	if !resp.Success {
		if resp.Error != nil {
			if resp.Error.TxID != "" {
				return fmt.Errorf("%s: tx %s: %s", resp.Error.Kind, resp.Error.TxID, resp.Error.Message)
			}
			return fmt.Errorf("%s: %s", resp.Error.Kind, resp.Error.Message)
		}
		return errors.New(resp.Message)
	}

	fmt.Println(resp.Message)
	for i, txid := range resp.PackageTxIDs {
		role := "child"
		if i == 0 {
			role = "parent"
		}
		fmt.Printf("  %s: %s\n", role, txid)
	}
	if resp.Fee > 0 {
		fmt.Printf("  package fee: %d sat\n", resp.Fee)
	}
	return nil
}
