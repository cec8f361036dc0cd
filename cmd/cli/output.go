package main

import (
	"encoding/json"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/gemlab/spectraldna/pkg/models"
	"github.com/gemlab/spectraldna/pkg/spectraldna/fingerprint"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func humanTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

type resultJSON struct {
	Fingerprint string  `json:"fingerprint"`
	CID         string  `json:"cid"`
	Payload     string  `json:"payload"`
	Peaks       []int64 `json:"peaks_cm1"`
}

func newResultJSON(res *fingerprint.Result) resultJSON {
	return resultJSON{
		Fingerprint: res.Fingerprint.String(),
		CID:         res.CID,
		Payload:     string(res.Payload),
		Peaks:       res.Record.PeaksQuantized,
	}
}

type sampleJSON struct {
	ID           string            `json:"id"`
	Fingerprint  string            `json:"fingerprint"`
	MineralClass string            `json:"mineral_class"`
	Algorithm    string            `json:"algorithm"`
	Rounding     string            `json:"rounding"`
	CID          string            `json:"cid"`
	Payload      string            `json:"payload"`
	PeakCount    int               `json:"peak_count"`
	DeviceID     string            `json:"device_id,omitempty"`
	ScanID       string            `json:"scan_id,omitempty"`
	MeasuredAt   *time.Time        `json:"measured_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	Attestations []attestationJSON `json:"attestations,omitempty"`
}

type attestationJSON struct {
	UID       string    `json:"uid"`
	Schema    string    `json:"schema"`
	Attester  string    `json:"attester"`
	Recipient string    `json:"recipient,omitempty"`
	Scheme    string    `json:"scheme"`
	IssuedAt  time.Time `json:"issued_at"`
}

func newSampleJSON(s models.Sample, atts []models.Attestation) sampleJSON {
	out := sampleJSON{
		ID:           s.ID,
		Fingerprint:  s.Fingerprint,
		MineralClass: s.MineralClass,
		Algorithm:    s.Algorithm,
		Rounding:     s.Rounding,
		CID:          s.CID,
		Payload:      s.Payload,
		PeakCount:    s.PeakCount,
		DeviceID:     s.DeviceID,
		ScanID:       s.ScanID,
		CreatedAt:    s.CreatedAt,
	}
	if !s.MeasuredAt.IsZero() {
		t := s.MeasuredAt
		out.MeasuredAt = &t
	}
	for _, a := range atts {
		out.Attestations = append(out.Attestations, attestationJSON{
			UID:       a.UID,
			Schema:    a.Schema,
			Attester:  a.Attester,
			Recipient: a.Recipient,
			Scheme:    a.Scheme,
			IssuedAt:  a.IssuedAt,
		})
	}
	return out
}
