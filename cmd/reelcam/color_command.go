package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"reelcam/internal/preview"
)

func newColorCommand() *cobra.Command {
	var opacity float64
	var radius float64
	var shadow bool

	cmd := &cobra.Command{
		Use:         "color <hex>...",
		Short:       "Parse hex colors the way preview frames do",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			headers := []string{"Input", "RGB", "Hex", "Valid"}
			if shadow {
				headers = append(headers, "Box Shadow")
			}
			rows := make([][]string, 0, len(args))
			for _, arg := range args {
				color := preview.ParseColor(strings.TrimSpace(arg))
				row := []string{arg, valueOrDash(color.String()), valueOrDash(color.Hex()), yesNo(color.Valid)}
				if shadow {
					value := arg
					row = append(row, preview.NewDropShadow(preview.DropShadowSpec{
						Opacity: &opacity,
						Radius:  &radius,
						Color:   &value,
					}).BoxShadow())
				}
				rows = append(rows, row)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&shadow, "shadow", false, "Also render each color as a drop shadow")
	cmd.Flags().Float64Var(&opacity, "shadow-opacity", 0.5, "Drop shadow opacity (clamped to 0..1)")
	cmd.Flags().Float64Var(&radius, "shadow-radius", 8, "Drop shadow blur radius in pixels")
	return cmd
}
