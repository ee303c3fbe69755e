package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/chartlens/internal/analysis"
	"github.com/KaramelBytes/chartlens/internal/parser"
	"github.com/KaramelBytes/chartlens/internal/render"
	"github.com/KaramelBytes/chartlens/internal/utils"
)

// inputFlags are the parsing flags shared by every command that reads a chart file.
type inputFlags struct {
	delimiter string
	sheet     string
	maxRows   int
}

func (f *inputFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',', ';' or 'tab' (default: by extension)")
	fs.StringVar(&f.sheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	fs.IntVar(&f.maxRows, "max-rows", 0, "read at most N data rows (0 = all)")
}

func (f *inputFlags) options() (parser.Options, error) {
	opt := parser.Options{Sheet: f.sheet, MaxRows: f.maxRows}
	switch f.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	if f.maxRows < 0 {
		return opt, fmt.Errorf("--max-rows must be >= 0")
	}
	return opt, nil
}

// dataPath picks the file argument, falling back to the configured data_path.
func dataPath(args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return utils.ExpandHome(args[0])
	}
	if p := settings().DataPath; p != "" {
		return p, nil
	}
	return "", errors.New("no chart file given and data_path is not configured")
}

// loadTable parses path and derives the augmented table.
func loadTable(path string, in *inputFlags) (*analysis.Table, error) {
	opt, err := in.options()
	if err != nil {
		return nil, err
	}
	obs, err := parser.ParseFile(path, opt)
	if err != nil {
		return nil, err
	}
	return analysis.NewTable(obs, analysis.DeriveOptions{EarlyWeeks: settings().EarlyWeeks}, analysis.TableInfo{Source: path}), nil
}

// rankRange merges --rank-min/--rank-max with the configured defaults.
func rankRange(cmd *cobra.Command, min, max int) (analysis.RankRange, error) {
	rr := settings().Range()
	if cmd.Flags().Changed("rank-min") {
		rr.Min = min
	}
	if cmd.Flags().Changed("rank-max") {
		rr.Max = max
	}
	return rr, rr.Validate()
}

func chartOptions() render.Options {
	s := settings()
	return render.Options{Width: s.ChartWidth, Height: s.ChartHeight}
}
