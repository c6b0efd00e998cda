package commands

import (
	"github.com/spf13/cobra"

	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/compare"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/scratch"
)

var simReference string

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Compare synthetic narrowband vs wideband degradation",
	Long: `Synthesize codec-like degradation — coarse quantization plus Gaussian
dither, with the narrowband path limited to 8 kHz — and score both
variants against the reference.

No external transcoder is needed. Results are labeled codec_simulation
to keep them distinct from real codec round trips.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}

		cmp := compare.New(
			compare.WithScorer(buildScorer(cfg)),
			compare.WithArena(scratch.New(cfg.ScratchDir)),
		)

		res, err := cmp.Simulate(cmd.Context(), simReference)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

func init() {
	simulateCmd.Flags().StringVarP(&simReference, "reference", "r", "", "reference WAV file (required)")
	simulateCmd.MarkFlagRequired("reference")

	rootCmd.AddCommand(simulateCmd)
}
