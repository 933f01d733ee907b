package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/luxboard/internal/chart"
	"github.com/KaramelBytes/luxboard/internal/server"
)

var (
	srvAddr      string
	srvBanner    string
	srvAccessLog bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the browser dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g := effectiveConfig()
		log, err := newLogger()
		if err != nil {
			return err
		}
		ttl, err := g.TTL()
		if err != nil {
			return err
		}
		opt, err := ingestOptions(cmd)
		if err != nil {
			return err
		}

		sc := server.Config{
			Addr:            g.ListenAddr,
			BodyLimit:       g.UploadLimit(),
			SessionCapacity: g.SessionCapacity,
			SessionTTL:      ttl,
			Chart:           chart.Options{Width: g.ChartWidth, Height: g.ChartHeight},
			Parser:          opt,
			Site:            g.Site(),
			BannerPath:      g.BannerImage,
			Logger:          log,
		}
		if cmd.Flags().Changed("addr") {
			sc.Addr = srvAddr
		}
		if cmd.Flags().Changed("banner") {
			sc.BannerPath = srvBanner
		}
		if srvAccessLog {
			sc.AccessLog = os.Stderr
		}

		s, err := server.New(sc)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Dashboard on http://%s (Ctrl+C to stop)\n", sc.Addr)
		return s.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", "", "listen address (overrides listen_addr)")
	serveCmd.Flags().StringVar(&srvBanner, "banner", "", "banner image path (overrides banner_image)")
	serveCmd.Flags().BoolVar(&srvAccessLog, "access-log", false, "log one line per request to stderr")
	addIngestFlags(serveCmd)
}
