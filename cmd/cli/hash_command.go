package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHashCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "hash <reading.json|->",
		Short: "Compute the spectral fingerprint of a reading without storing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readMeasurement(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			h, err := ctx.hasher()
			if err != nil {
				return err
			}
			res, err := h.Fingerprint(raw)
			if err != nil {
				return err
			}

			if ctx.flags.json {
				return writeJSON(cmd, newResultJSON(&res))
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Peaks (cm-1):  %v\n", res.Record.PeaksQuantized)
			fmt.Fprintf(out, "Payload:       %s\n", res.Payload)
			fmt.Fprintf(out, "CID:           %s\n", res.CID)
			fmt.Fprintf(out, "Fingerprint:   %s\n", res.Fingerprint)
			return nil
		},
	}
}
