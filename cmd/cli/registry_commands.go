package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gemlab/spectraldna/pkg/models"
	"github.com/gemlab/spectraldna/pkg/spectraldna"
	"github.com/gemlab/spectraldna/pkg/utils"
)

// errNoMatch makes `verify` exit non-zero when the reading is unknown.
var errNoMatch = errors.New("no registered sample matches this reading")

func newRegisterCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "register <reading.json|->",
		Short: "Fingerprint a reading and add it to the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readMeasurement(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return ctx.withService(func(svc spectraldna.Service) error {
				reg, err := svc.Register(cmd.Context(), raw)
				if err != nil {
					return err
				}
				if ctx.flags.json {
					var atts []models.Attestation
					if reg.Attestation != nil {
						atts = append(atts, *reg.Attestation)
					}
					return writeJSON(cmd, struct {
						Existing bool       `json:"existing"`
						Sample   sampleJSON `json:"sample"`
					}{reg.Existing, newSampleJSON(reg.Sample, atts)})
				}

				out := cmd.OutOrStdout()
				if reg.Existing {
					fmt.Fprintf(out, "Already registered as sample %s\n", reg.Sample.ID)
				} else {
					fmt.Fprintf(out, "Registered sample %s\n", reg.Sample.ID)
				}
				fmt.Fprintf(out, "Fingerprint: %s\n", reg.Sample.Fingerprint)
				fmt.Fprintf(out, "CID:         %s\n", reg.Sample.CID)
				if reg.Attestation != nil {
					fmt.Fprintf(out, "Attestation: %s (%s)\n", reg.Attestation.UID, reg.Attestation.Scheme)
				}
				return nil
			})
		},
	}
}

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <reading.json|->",
		Short: "Check whether a reading matches a registered sample",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readMeasurement(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return ctx.withService(func(svc spectraldna.Service) error {
				v, err := svc.Verify(cmd.Context(), raw)
				if err != nil {
					return err
				}
				if ctx.flags.json {
					resp := struct {
						Fingerprint string `json:"fingerprint"`
						Matched     bool   `json:"matched"`
						Attested    bool   `json:"attested"`
						SampleID    string `json:"sample_id,omitempty"`
					}{Fingerprint: v.Result.Fingerprint.String(), Matched: v.Matched, Attested: v.Attested}
					if v.Sample != nil {
						resp.SampleID = v.Sample.ID
					}
					if err := writeJSON(cmd, resp); err != nil {
						return err
					}
				} else {
					out := cmd.OutOrStdout()
					fmt.Fprintf(out, "Fingerprint: %s\n", v.Result.Fingerprint)
					if v.Matched {
						fmt.Fprintf(out, "MATCH: sample %s (registered %s)\n", v.Sample.ID, humanTime(v.Sample.CreatedAt))
						if v.Attested {
							fmt.Fprintln(out, "Attestation verified")
						}
					}
				}
				if !v.Matched {
					return errNoMatch
				}
				return nil
			})
		},
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered samples",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc spectraldna.Service) error {
				samples, err := svc.ListSamples()
				if err != nil {
					return fmt.Errorf("failed to list samples: %w", err)
				}
				if ctx.flags.json {
					out := make([]sampleJSON, 0, len(samples))
					for _, s := range samples {
						out = append(out, newSampleJSON(s, nil))
					}
					return writeJSON(cmd, out)
				}
				if len(samples) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No samples registered")
					return nil
				}

				rows := make([][]string, 0, len(samples))
				for _, s := range samples {
					rows = append(rows, []string{
						s.ID,
						utils.ShortFingerprint(s.Fingerprint),
						s.MineralClass,
						strconv.Itoa(s.PeakCount),
						orDash(s.DeviceID),
						humanTime(s.CreatedAt),
					})
				}
				headers := []string{"ID", "Fingerprint", "Mineral", "Peaks", "Device", "Registered"}
				aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
				fmt.Fprintf(cmd.OutOrStdout(), "%d sample(s)\n", len(samples))
				return nil
			})
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|fingerprint>",
		Short: "Show a registered sample and its attestations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.TrimSpace(args[0])
			return ctx.withService(func(svc spectraldna.Service) error {
				var (
					sample *models.Sample
					err    error
				)
				switch {
				case strings.HasPrefix(key, "0x"):
					sample, err = svc.GetSampleByFingerprint(key)
				case utils.IsUUID(key):
					sample, err = svc.GetSample(key)
				default:
					return fmt.Errorf("%q is neither a sample id nor a 0x fingerprint", key)
				}
				if err != nil {
					return err
				}
				atts, err := svc.Attestations(sample.ID)
				if err != nil {
					return err
				}
				if ctx.flags.json {
					return writeJSON(cmd, newSampleJSON(*sample, atts))
				}

				rows := [][]string{
					{"ID", sample.ID},
					{"Fingerprint", sample.Fingerprint},
					{"CID", sample.CID},
					{"Mineral", sample.MineralClass},
					{"Algorithm", sample.Algorithm},
					{"Rounding", sample.Rounding},
					{"Payload", sample.Payload},
					{"Device", orDash(sample.DeviceID)},
					{"Scan", orDash(sample.ScanID)},
					{"Measured", humanTime(sample.MeasuredAt)},
					{"Registered", humanTime(sample.CreatedAt)},
				}
				for _, a := range atts {
					status := "valid"
					if err := spectraldna.VerifyAttestation(a); err != nil {
						status = "INVALID: " + err.Error()
					}
					rows = append(rows, []string{"Attestation", fmt.Sprintf("%s %s by %s (%s)", a.UID, a.Scheme, a.Attester, status)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
				return nil
			})
		},
	}
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a sample and its attestations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc spectraldna.Service) error {
				if err := svc.DeleteSample(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted sample %s\n", args[0])
				return nil
			})
		},
	}
}
