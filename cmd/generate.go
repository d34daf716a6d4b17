// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dtmf/internal/audio"
)

func newGenerateCommand(a *app) *cobra.Command {
	seq := audio.DefaultSequence("")
	var (
		output   string
		bitDepth int
	)

	generateCmd := &cobra.Command{
		Use:   "generate KEYS",
		Short: "Write a WAV file dialling KEYS",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq.Keys = args[0]
			if !cmd.Flags().Changed("bit-depth") {
				bitDepth = a.cfg.Recording.BitDepth
			}

			settings := a.cfg.AcquireSettings()
			raws, err := seq.Raw(settings)
			if err != nil {
				return err
			}
			if err := audio.WriteRawFile(output, raws, settings.RawFullScale, bitDepth); err != nil {
				return err
			}

			fmt.Fprintf(out(cmd), "Wrote %d keys (%d samples) to %s\n", len(seq.Keys), len(raws), output)
			return nil
		},
	}

	flags := generateCmd.Flags()
	flags.StringVarP(&output, "output", "o", "dtmf.wav", "Output WAV file")
	flags.IntVar(&bitDepth, "bit-depth", 16, "Bit depth (16, 24 or 32)")
	flags.DurationVar(&seq.Tone, "tone", seq.Tone, "Duration of each tone")
	flags.DurationVar(&seq.Gap, "gap", seq.Gap, "Silence after each tone")
	flags.DurationVar(&seq.LeadIn, "lead-in", seq.LeadIn, "Silence before the first tone")
	flags.Float64Var(&seq.Amplitude, "amplitude", seq.Amplitude, "Peak amplitude of each sine")

	return generateCmd
}
