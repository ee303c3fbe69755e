package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/chartlens/internal/analysis"
	"github.com/KaramelBytes/chartlens/internal/cache"
	"github.com/KaramelBytes/chartlens/internal/logging"
	"github.com/KaramelBytes/chartlens/internal/parser"
	"github.com/KaramelBytes/chartlens/internal/server"
	"github.com/spf13/cobra"
)

var (
	srvInput   inputFlags
	srvAddr    string
	srvNoWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Run the HTTP dashboard and JSON API",
	Long: `Serve the interactive dashboard. The chart file is parsed once and kept in
memory; it is re-derived only when its content changes (detected by size,
mtime and content hash, and eagerly through a file watcher).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := dataPath(args)
		if err != nil {
			return err
		}
		popt, err := srvInput.options()
		if err != nil {
			return err
		}
		s := settings()
		log := logging.New(os.Stdout, s.LogLevel, debug)

		loader, err := cache.NewLoader(&cache.Config{
			Logger: log,
			Parse: func(name string, data []byte) ([]analysis.Observation, error) {
				return parser.ParseBytes(name, data, popt)
			},
			Derive: analysis.DeriveOptions{EarlyWeeks: s.EarlyWeeks},
			TTL:    time.Duration(s.CacheTTLSec) * time.Second,
		})
		if err != nil {
			return err
		}
		// Fail fast on unreadable or malformed input.
		t, err := loader.Load(path)
		if err != nil {
			return err
		}
		log.Info("chart table ready", "path", path, "rows", t.Len(), "songs", t.Keys())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if s.Watch && !srvNoWatch {
			w, err := cache.NewWatcher(log, loader)
			if err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			defer w.Close()
			if err := w.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			go func() {
				if err := w.Run(ctx); err != nil && ctx.Err() == nil {
					log.Error("watcher stopped", "error", err)
				}
			}()
		}

		srv, err := server.New(&server.Config{
			Logger:   log,
			Tables:   loader,
			DataPath: path,
			Defaults: server.Params{
				Range:             s.Range(),
				TopN:              s.TopN,
				HeatmapMaxArtists: s.HeatmapMaxArtists,
			},
			ViewsDir: s.ViewsDir,
			Chart:    chartOptions(),
			Debug:    debug,
		})
		if err != nil {
			return err
		}
		addr := s.ListenAddr
		if srvAddr != "" {
			addr = srvAddr
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Dashboard on http://%s/\n", displayAddr(addr))
		return srv.Run(ctx, addr)
	},
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

func init() {
	rootCmd.AddCommand(serveCmd)
	srvInput.register(serveCmd.Flags())
	serveCmd.Flags().StringVar(&srvAddr, "addr", "", "listen address (default from config, :8501)")
	serveCmd.Flags().BoolVar(&srvNoWatch, "no-watch", false, "do not watch the chart file for changes")
}
