package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/audio/resample"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/audio/wavio"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/dsp/denoise"
)

var (
	denoiseDegraded        string
	denoiseNoise           string
	denoiseOut             string
	denoiseOversubtraction float64
	denoiseFloorDB         float64
)

var denoiseCmd = &cobra.Command{
	Use:   "denoise",
	Short: "Subtract a recorded noise floor from a degraded recording",
	Long: `Remove the stationary noise floor estimated from a noise-only
recording out of a degraded recording, using Wiener-style spectral
subtraction, and write the cleaned audio as 16-bit PCM mono WAV.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deg, err := wavio.Load(denoiseDegraded)
		if err != nil {
			return err
		}
		noise, err := wavio.Load(denoiseNoise)
		if err != nil {
			return err
		}
		if noise.Rate != deg.Rate {
			noise, err = resample.To(noise, deg.Rate)
			if err != nil {
				return err
			}
		}

		cfg := denoise.DefaultConfig()
		if denoiseOversubtraction > 0 {
			cfg.Oversubtraction = denoiseOversubtraction
		}
		if denoiseFloorDB < 0 {
			cfg.GainFloorDB = denoiseFloorDB
		}

		cleaned := denoise.Subtract(deg, noise, cfg)
		if err := wavio.WriteFile(denoiseOut, cleaned); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%.2fs at %d Hz)\n",
			denoiseOut, cleaned.Seconds(), cleaned.Rate)
		return nil
	},
}

func init() {
	denoiseCmd.Flags().StringVarP(&denoiseDegraded, "degraded", "d", "", "degraded WAV file (required)")
	denoiseCmd.Flags().StringVarP(&denoiseNoise, "noise", "n", "", "noise-only WAV file (required)")
	denoiseCmd.Flags().StringVarP(&denoiseOut, "out", "o", "", "output WAV file (required)")
	denoiseCmd.Flags().Float64Var(&denoiseOversubtraction, "oversubtraction", 0, "noise estimate multiplier (default 2.0)")
	denoiseCmd.Flags().Float64Var(&denoiseFloorDB, "gain-floor-db", 0, "minimum per-bin gain in dB (default -15)")
	denoiseCmd.MarkFlagRequired("degraded")
	denoiseCmd.MarkFlagRequired("noise")
	denoiseCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(denoiseCmd)
}
