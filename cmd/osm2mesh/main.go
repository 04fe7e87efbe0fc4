// Command osm2mesh converts OpenStreetMap extracts into 3D meshes:
// extruded buildings, road ribbons, flat water and a ground plane with
// everything else cut out of it.
package main

import (
	"fmt"
	"os"

	"github.com/nickblock/geoutils/pkg/s2cell"
	"github.com/nickblock/geoutils/pkg/scene"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "osm2mesh",
		Short:         "Convert OpenStreetMap extracts into 3D meshes",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newConvertCmd(), newFormatsCmd(), newS2Cmd())
	return root
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported output formats",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, ext := range scene.Formats() {
				fmt.Fprintln(cmd.OutOrStdout(), ext)
			}
		},
	}
}

func newS2Cmd() *cobra.Command {
	return &cobra.Command{
		Use:   "s2 <cell>",
		Short: "Describe an S2 cell given as a token, id or tile file name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := s2cell.Parse(args[0])
			if err != nil {
				if id, err = s2cell.FromFileName(args[0]); err != nil {
					return fmt.Errorf("%q is neither a cell id nor a tile name", args[0])
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), s2cell.Describe(id))
			return nil
		},
	}
}
