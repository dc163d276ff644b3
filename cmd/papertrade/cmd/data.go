package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xyproto/unzip"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Prepare historical datasets for backtesting",
}

var dataUnpackCmd = &cobra.Command{
	Use:   "unpack <archive.zip>",
	Short: "Extract a zipped dataset into the data directory",
	Long: `Unpack extracts a zip archive of bar CSVs so they can be fed to
the backtest command. xz-compressed CSVs inside the archive are handled
transparently at read time and need no unpacking.

Example:
  papertrade data unpack bars-2024.zip --dest ./data`,
	Args: cobra.ExactArgs(1),
	RunE: runDataUnpack,
}

var dataUnpackDest string

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataUnpackCmd)

	dataUnpackCmd.Flags().StringVarP(&dataUnpackDest, "dest", "d", "./data", "destination directory")
}

func runDataUnpack(cmd *cobra.Command, args []string) error {
	archive := args[0]
	if err := unzip.Extract(archive, dataUnpackDest); err != nil {
		return fmt.Errorf("unpack %s: %w", archive, err)
	}

	fmt.Printf("✓ Extracted %s to %s\n", archive, dataUnpackDest)
	return nil
}
