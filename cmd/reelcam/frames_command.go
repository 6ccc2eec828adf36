package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reelcam/internal/config"
	"reelcam/internal/preview"
)

type frameView struct {
	ID           string  `json:"id"`
	Stack        string  `json:"stack_position"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        string  `json:"width"`
	Height       string  `json:"height"`
	BorderRadius float64 `json:"border_radius"`
	BoxShadow    string  `json:"box_shadow"`
	CSS          string  `json:"css"`
	Current      bool    `json:"current"`
}

func newFramesCommand(ctx *commandContext) *cobra.Command {
	var framesFile string
	var asJSON bool
	var showCSS bool

	cmd := &cobra.Command{
		Use:   "frames",
		Short: "Resolve and display preview frame configurations",
		Long: `Resolve preview frames from the configuration file (or --file) with every
omitted field defaulted, and show the style each frame applies to the preview.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			specs := cfg.Preview.Frames
			if strings.TrimSpace(framesFile) != "" {
				loaded, err := config.LoadFrames(framesFile)
				if err != nil {
					return err
				}
				specs = loaded
			}

			frames := make([]preview.FrameConfig, 0, len(specs))
			for idx, spec := range specs {
				frame, err := preview.NewFrameConfig(spec)
				if err != nil {
					return fmt.Errorf("frames[%d]: %w", idx, err)
				}
				frames = append(frames, frame)
			}

			registry := preview.NewRegistry(nil)
			if err := registry.Reset(frames); err != nil {
				return err
			}
			current, _ := registry.Current()

			views := make([]frameView, 0, registry.Len())
			for _, frame := range registry.Frames() {
				views = append(views, frameView{
					ID:           frame.ID,
					Stack:        string(frame.Stack),
					X:            frame.X,
					Y:            frame.Y,
					Width:        frame.Width.String(),
					Height:       frame.Height.String(),
					BorderRadius: frame.BorderRadius,
					BoxShadow:    frame.DropShadow.BoxShadow(),
					CSS:          preview.StyleFor(frame).CSS(),
					Current:      frame.ID == current.ID,
				})
			}

			if asJSON {
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if showCSS {
				for _, view := range views {
					fmt.Fprintf(out, "#%s { %s }\n", view.ID, view.CSS)
				}
				return nil
			}

			headers := []string{"ID", "Stack", "X", "Y", "Width", "Height", "Radius", "Shadow", "Current"}
			rows := make([][]string, 0, len(views))
			for _, view := range views {
				rows = append(rows, []string{
					view.ID,
					view.Stack,
					formatFloat(view.X),
					formatFloat(view.Y),
					view.Width,
					view.Height,
					formatFloat(view.BorderRadius),
					view.BoxShadow,
					yesNo(view.Current),
				})
			}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().StringVarP(&framesFile, "file", "f", "", "TOML file holding [[frames]] tables")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&showCSS, "css", false, "Print each frame's style declarations")
	return cmd
}
