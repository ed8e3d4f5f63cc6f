package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gubarz/postmd/internal/config"
	"github.com/gubarz/postmd/internal/watermark"
)

var watermarkCmd = &cobra.Command{
	Use:   "watermark <input> <output.png>",
	Short: "Tile a diagonal text watermark over an image",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		wm := config.C.Watermark
		opts := watermark.Options{
			Text:      wm.Text,
			Angle:     wm.Angle,
			Opacity:   uint8(wm.Opacity),
			FontPaths: wm.FontPaths,
		}
		if cmd.Flags().Changed("text") {
			opts.Text, _ = cmd.Flags().GetString("text")
		}
		if cmd.Flags().Changed("angle") {
			opts.Angle, _ = cmd.Flags().GetFloat64("angle")
		}
		if cmd.Flags().Changed("opacity") {
			o, _ := cmd.Flags().GetInt("opacity")
			if o < 0 || o > 255 {
				return fmt.Errorf("opacity must be between 0 and 255")
			}
			opts.Opacity = uint8(o)
		}

		if err := watermark.ApplyFile(args[0], args[1], opts); err != nil {
			return err
		}
		appLog.Info("watermark applied", "in", args[0], "out", args[1])
		fmt.Fprintln(cmd.OutOrStdout(), args[1])
		return nil
	},
}

func init() {
	def := watermark.DefaultOptions()
	watermarkCmd.Flags().String("text", "", "Watermark text (default from config)")
	watermarkCmd.Flags().Float64("angle", def.Angle, "Rotation in degrees")
	watermarkCmd.Flags().Int("opacity", int(def.Opacity), "Opacity 0-255")
}
