package main

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gemlab/spectraldna/pkg/spectraldna/attest"
	"github.com/gemlab/spectraldna/pkg/utils"
)

func newKeygenCommand(ctx *commandContext) *cobra.Command {
	var (
		scheme   string
		outPath  string
		attester string
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an attestation signing key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := attest.ParseScheme(scheme)
			if err != nil {
				return err
			}
			signer, seed, err := attest.GenerateSigner(s, nil)
			if err != nil {
				return err
			}
			data, err := attest.NewKeyFile(s, seed, attester).Marshal()
			if err != nil {
				return fmt.Errorf("failed to encode key file: %w", err)
			}
			if err := utils.WriteFileAtomic(outPath, data, 0o600); err != nil {
				return err
			}

			address := attest.AttesterAddress(signer.PublicKey())
			if ctx.flags.json {
				return writeJSON(cmd, map[string]string{
					"scheme":     string(s),
					"key_file":   outPath,
					"address":    address,
					"public_key": base64.StdEncoding.EncodeToString(signer.PublicKey()),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s key to %s\nAddress: %s\n", s, outPath, address)
			return nil
		},
	}

	cmd.Flags().StringVar(&scheme, "scheme", string(attest.Ed25519), "Signature scheme: ed25519 or dilithium3")
	cmd.Flags().StringVarP(&outPath, "out", "o", "attester.toml", "Key file to write")
	cmd.Flags().StringVar(&attester, "attester", "", "Attester name stored with the key")
	return cmd
}
