package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/luxboard/internal/termtable"
	"github.com/KaramelBytes/luxboard/internal/utils"
)

var (
	siteGeoJSON bool
	siteOutput  string
)

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Show the configured sensor site and its map tile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := effectiveConfig().Site()
		if err := info.Validate(); err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if siteGeoJSON {
			b, err := info.GeoJSON()
			if err != nil {
				return err
			}
			return utils.WriteOutput(w, siteOutput, append(b, '\n'))
		}

		fmt.Fprintf(w, "📍 %s\n\n", info.Name)
		var rows [][]string
		for _, f := range info.LocationFields() {
			rows = append(rows, []string{f.Label, f.Value})
		}
		for _, f := range info.SensorFields() {
			rows = append(rows, []string{f.Label, f.Value})
		}
		tile := info.Tile()
		rows = append(rows,
			[]string{"Tile", fmt.Sprintf("%d/%d/%d", tile.Z, tile.X, tile.Y)},
			[]string{"Mapa", info.MapLink()},
		)
		return termtable.Render(w, []string{"Campo", "Valor"}, rows, termWidth(w))
	},
}

func init() {
	rootCmd.AddCommand(siteCmd)
	siteCmd.Flags().BoolVar(&siteGeoJSON, "geojson", false, "print the site as a GeoJSON FeatureCollection")
	siteCmd.Flags().StringVarP(&siteOutput, "output", "o", "", "with --geojson: output path (stdout if omitted)")
}
