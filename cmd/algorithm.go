// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dtmf/internal/detect"
)

func newAlgorithmCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "algorithm [fft|goertzel]",
		Short:     "Show or change the stored detection algorithm",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{detect.FFT.String(), detect.Goertzel.String()},
		RunE: func(cmd *cobra.Command, args []string) error {
			var flag string
			if len(args) == 1 {
				flag = args[0]
			}

			algo, store, err := a.algorithm(flag, true)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "%s (%s)\n", algo, store.Path())
			return nil
		},
	}
}
