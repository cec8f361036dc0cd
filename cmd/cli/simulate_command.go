package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gemlab/spectraldna/pkg/logger"
	"github.com/gemlab/spectraldna/pkg/spectraldna/reading"
	"github.com/gemlab/spectraldna/pkg/utils"
)

func newSimulateCommand(ctx *commandContext) *cobra.Command {
	var (
		seed    uint64
		noise   float64
		shuffle bool
		device  string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Emit a simulated emerald reading from the bench spectrometer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []reading.SimulatorOption{
				reading.WithNoise(noise),
				reading.WithShuffle(shuffle),
				reading.WithDeviceID(device),
			}
			if cmd.Flags().Changed("seed") {
				opts = append(opts, reading.WithSeed(seed))
			}
			sim, err := reading.NewSimulator(opts...)
			if err != nil {
				return err
			}

			logger.GetLogger().Infof("Starting laser scan on device %s", device)
			m, err := sim.Read(cmd.Context())
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := reading.Encode(&buf, m); err != nil {
				return err
			}
			if outPath == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := utils.WriteFileAtomic(outPath, buf.Bytes(), 0o644); err != nil {
				return err
			}

			h, err := ctx.hasher()
			if err != nil {
				return err
			}
			res, err := h.Fingerprint(m)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote scan %s to %s\nFingerprint: %s\n", m.ScanID, outPath, res.Fingerprint)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for reproducible noise and scan ids")
	cmd.Flags().Float64Var(&noise, "noise", reading.DefaultNoise, "Standard deviation of peak noise in cm-1")
	cmd.Flags().BoolVar(&shuffle, "shuffle", false, "Report peaks in random order")
	cmd.Flags().StringVar(&device, "device", reading.DefaultDeviceID, "Device id recorded in the reading")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the reading to a file instead of stdout")
	return cmd
}
