package cmd

import (
	"fmt"

	"github.com/KaramelBytes/chartlens/internal/export"
	"github.com/spf13/cobra"
)

var (
	derInput  inputFlags
	derOutput string
	derFormat string
)

var deriveCmd = &cobra.Command{
	Use:   "derive [file]",
	Short: "Write the chart table augmented with early peak rank and total weeks",
	Long: `Write every chart row with two derived columns: the song's best rank within
its first weeks on the chart (broadcast to all of its rows, empty when the song
never charted in that window) and its running total of weeks on board.
The output format follows the -o extension (.csv, .json, .xlsx); without -o the
table is written to stdout as CSV (or --format json).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := dataPath(args)
		if err != nil {
			return err
		}
		t, err := loadTable(path, &derInput)
		if err != nil {
			return err
		}
		if derOutput != "" {
			if err := export.WriteFile(derOutput, t.Rows()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d rows to %s\n", t.Len(), derOutput)
			return nil
		}
		f := export.Format(derFormat)
		if f == export.FormatXLSX {
			return fmt.Errorf("xlsx output needs -o <file.xlsx>")
		}
		return export.Write(cmd.OutOrStdout(), t.Rows(), f)
	},
}

func init() {
	rootCmd.AddCommand(deriveCmd)
	derInput.register(deriveCmd.Flags())
	deriveCmd.Flags().StringVarP(&derOutput, "output", "o", "", "output file (.csv, .json or .xlsx)")
	deriveCmd.Flags().StringVar(&derFormat, "format", "csv", "stdout format: csv | json")
}
