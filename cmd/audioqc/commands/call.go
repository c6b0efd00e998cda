package commands

import (
	"github.com/spf13/cobra"

	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/compare"
	"github.com/rohxnreddy/UX-Tradeoffs-App/pkg/scratch"
)

var (
	callReference string
	callRecording string
	callBitrate   int
)

var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Compare real Opus and G.711 codec round trips",
	Long: `Run the reference audio through real codec paths — Opus at 48 kHz in
VoIP mode (wideband) and G.711 μ-law at 8 kHz (narrowband) — via
ffmpeg, then score each decoded result against the reference.

With --recording, a device recording of the reference (speaker → air
→ mic) is degraded instead, and an additional no-codec score isolates
the hardware contribution.

One codec path failing does not abort the other; the failure is
reported inside that path's sub-result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}

		bitrate := callBitrate
		if bitrate <= 0 {
			bitrate = cfg.OpusBitrate
		}

		cmp := compare.New(
			compare.WithPipeline(buildPipeline(cfg)),
			compare.WithScorer(buildScorer(cfg)),
			compare.WithArena(scratch.New(cfg.ScratchDir)),
			compare.WithOpusBitrate(bitrate),
		)

		if callRecording != "" {
			res, err := cmp.DeviceCall(cmd.Context(), callReference, callRecording)
			if err != nil {
				return err
			}
			return printJSON(res)
		}

		res, err := cmp.Call(cmd.Context(), callReference)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

func init() {
	callCmd.Flags().StringVarP(&callReference, "reference", "r", "", "reference WAV file (required)")
	callCmd.Flags().StringVar(&callRecording, "recording", "", "device recording of the reference")
	callCmd.Flags().IntVar(&callBitrate, "bitrate", 0, "Opus bitrate in bit/s (default from config)")
	callCmd.MarkFlagRequired("reference")

	rootCmd.AddCommand(callCmd)
}
