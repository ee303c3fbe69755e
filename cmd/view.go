package cmd

import (
	"fmt"
	"strconv"

	"github.com/KaramelBytes/chartlens/internal/utils"
	"github.com/KaramelBytes/chartlens/internal/view"
	"github.com/spf13/cobra"
)

var (
	viewDescription string
	viewRankMin     int
	viewRankMax     int
	viewSongs       []string
	viewTopN        int
	viewMaxArtists  int
	viewForce       bool
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Manage saved dashboard views (rank range, songs, limits)",
}

var viewSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save a named view; open it in the dashboard with ?view=<name>",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		dir := settings().ViewsDir
		if dir == "" {
			return fmt.Errorf("views_dir is not configured")
		}
		v := view.New(name, viewDescription, dir)
		if old, err := view.Load(dir, name); err == nil {
			if !viewForce {
				return fmt.Errorf("view '%s' already exists (use --force to overwrite)", name)
			}
			v.ID, v.CreatedAt = old.ID, old.CreatedAt
		}

		f := cmd.Flags()
		if f.Changed("rank-min") || f.Changed("rank-max") {
			rr, err := rankRange(cmd, viewRankMin, viewRankMax)
			if err != nil {
				return err
			}
			v.Range = &rr
		}
		v.Songs = viewSongs
		v.TopN = viewTopN
		v.HeatmapMaxArtists = viewMaxArtists
		if err := v.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved view '%s' to %s\n", v.Name, v.Path())
		return nil
	},
}

var viewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved views",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vs, err := view.List(settings().ViewsDir)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(vs) == 0 {
			fmt.Fprintln(out, "No saved views")
			return nil
		}
		tw := newTable(out, []string{"name", "range", "songs", "top-n", "heatmap artists", "updated"})
		for _, v := range vs {
			rr := "default"
			if v.Range != nil {
				rr = v.Range.String()
			}
			tw.Append([]string{v.Name, rr, strconv.Itoa(len(v.Songs)), orDefault(v.TopN), orDefault(v.HeatmapMaxArtists), v.UpdatedAt.Format("2006-01-02 15:04")})
		}
		tw.Render()
		return nil
	},
}

var viewShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a saved view as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := view.Load(settings().ViewsDir, args[0])
		if err != nil {
			return err
		}
		b, err := utils.PrettyJSON(v)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

var viewDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := view.Delete(settings().ViewsDir, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted view '%s'\n", args[0])
		return nil
	},
}

func orDefault(n int) string {
	if n == 0 {
		return "default"
	}
	return strconv.Itoa(n)
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.AddCommand(viewSaveCmd, viewListCmd, viewShowCmd, viewDeleteCmd)
	viewSaveCmd.Flags().StringVarP(&viewDescription, "desc", "d", "", "short description")
	viewSaveCmd.Flags().IntVar(&viewRankMin, "rank-min", 0, "lowest early peak rank (unset = config default)")
	viewSaveCmd.Flags().IntVar(&viewRankMax, "rank-max", 0, "highest early peak rank (unset = config default)")
	viewSaveCmd.Flags().StringArrayVar(&viewSongs, "song", nil, "song title for the trend chart (repeatable)")
	viewSaveCmd.Flags().IntVarP(&viewTopN, "top-n", "n", 0, "top artists (0 = config default)")
	viewSaveCmd.Flags().IntVar(&viewMaxArtists, "max-artists", 0, "heatmap artist limit (0 = config default)")
	viewSaveCmd.Flags().BoolVar(&viewForce, "force", false, "overwrite an existing view")
}
