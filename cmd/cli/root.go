package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const banner = `
 ____                  _             _ ____  _   _    _
/ ___| _ __   ___  ___| |_ _ __ __ _| |  _ \| \ | |  / \
\___ \| '_ \ / _ \/ __| __| '__/ _' | | | | |  \| | / _ \
 ___) | |_) |  __/ (__| |_| | | (_| | | |_| | |\  |/ ___ \
|____/| .__/ \___|\___|\__|_|  \__,_|_|____/|_| \_/_/   \_\
      |_|
        Raman Spectral Fingerprinting CLI Tool
`

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "spectraldna",
		Short:         "Deterministic fingerprints for Raman spectroscopy readings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), banner)
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Configuration file path (default ./spectraldna.toml)")
	pf.StringVar(&flags.db, "db", "", "Path to the SQLite database file (overrides config and SPECTRAL_DB_PATH)")
	pf.StringVar(&flags.mineral, "mineral", "", "Mineral class hashed into the fingerprint")
	pf.StringVar(&flags.rounding, "rounding", "", "Peak rounding rule: half-even or half-away")
	pf.StringVar(&flags.algorithm, "algorithm", "", "Digest algorithm: sha256, sha3-256 or blake3")
	pf.BoolVar(&flags.json, "json", false, "Print results as JSON")

	rootCmd.AddCommand(newHashCommand(ctx))
	rootCmd.AddCommand(newSimulateCommand(ctx))
	rootCmd.AddCommand(newRegisterCommand(ctx))
	rootCmd.AddCommand(newVerifyCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newDeleteCommand(ctx))
	rootCmd.AddCommand(newKeygenCommand(ctx))

	return rootCmd
}
