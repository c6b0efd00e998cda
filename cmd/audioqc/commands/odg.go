package commands

import (
	"github.com/spf13/cobra"

	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/score/odg"
)

var (
	odgReference string
	odgDegraded  string
	odgNoise     string
)

var odgCmd = &cobra.Command{
	Use:   "odg",
	Short: "Estimate an ODG score from log-spectral distance",
	Long: `Estimate perceptual degradation between a reference and a degraded
WAV file on the ODG scale (0 = imperceptible, -4 = very annoying).

The estimate is derived from log-spectral distance and is indicative,
not an ITU-standard PEAQ measurement.

When a noise-only recording is supplied with --noise, its stationary
spectrum is subtracted from the degraded signal first and the cleaned
audio is included in the result as Base64 WAV.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		scorer := odg.New()
		res, err := scorer.ScoreFiles(odgReference, odgDegraded, odgNoise)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

func init() {
	odgCmd.Flags().StringVarP(&odgReference, "reference", "r", "", "reference WAV file (required)")
	odgCmd.Flags().StringVarP(&odgDegraded, "degraded", "d", "", "degraded WAV file (required)")
	odgCmd.Flags().StringVarP(&odgNoise, "noise", "n", "", "noise-only WAV file for spectral subtraction")
	odgCmd.MarkFlagRequired("reference")
	odgCmd.MarkFlagRequired("degraded")

	rootCmd.AddCommand(odgCmd)
}
