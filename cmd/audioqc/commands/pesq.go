package commands

import (
	"github.com/spf13/cobra"

	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/audio/wavio"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/score/pesq"
)

var (
	pesqReference string
	pesqDegraded  string
)

var pesqCmd = &cobra.Command{
	Use:   "pesq",
	Short: "Score a reference/degraded pair with the external PESQ scorer",
	Long: `Score a degraded WAV file against a reference in both wideband and
narrowband PESQ modes, using the external scorer configured as
pesq_command. Both signals are resampled to 16 kHz and trimmed to a
common length first.

A failure in one mode is reported inside the result while the other
mode still carries its score.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		scorer := buildScorer(cfg)
		if scorer == nil {
			return pesq.ErrUnavailable
		}

		ref, err := wavio.Load(pesqReference)
		if err != nil {
			return err
		}
		deg, err := wavio.Load(pesqDegraded)
		if err != nil {
			return err
		}

		res, err := pesq.Compute(cmd.Context(), scorer, ref, deg)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

func init() {
	pesqCmd.Flags().StringVarP(&pesqReference, "reference", "r", "", "reference WAV file (required)")
	pesqCmd.Flags().StringVarP(&pesqDegraded, "degraded", "d", "", "degraded WAV file (required)")
	pesqCmd.MarkFlagRequired("reference")
	pesqCmd.MarkFlagRequired("degraded")

	rootCmd.AddCommand(pesqCmd)
}
