package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"webdesk/pkg/api"
	"webdesk/pkg/content"
	"webdesk/pkg/layout"
	"webdesk/pkg/server"
	"webdesk/pkg/session"
	"webdesk/pkg/wm"
)

func addServe(topLevel *cobra.Command, o *options) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the desktop API and front-end bundle.",
		Example: `
webdesk serve --addr :8080 --static-dir ./web/dist
WEBDESK_PROFILE=demo webdesk serve --watch
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return o.serve(ctx)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", "", "listen address (default :8080)")
	flags.String("static-dir", "", "directory of the front-end bundle")
	flags.Bool("watch", false, "reload the content file when it changes")
	_ = o.v.BindPFlag("addr", flags.Lookup("addr"))
	_ = o.v.BindPFlag("static_dir", flags.Lookup("static-dir"))
	_ = o.v.BindPFlag("watch_content", flags.Lookup("watch"))

	topLevel.AddCommand(cmd)
}

func (o *options) serve(ctx context.Context) error {
	tree, err := o.contentTree()
	if err != nil {
		return err
	}

	store := layout.NewStore(
		layout.NewDiskPersister(o.cfg.DataDir, o.cfg.Profile),
		layout.WithLogger(o.log),
	)

	windows := wm.DefaultConfig()
	windows.BaseZ = o.cfg.ZBase
	sessions := session.NewManager(session.ManagerConfig{
		Content: tree,
		Layout:  store,
		Windows: windows,
		TTL:     o.cfg.SessionTTL,
		Logger:  o.log,
	})

	if o.cfg.WatchContent && o.cfg.ContentFile != "" {
		w, err := content.NewWatcher(content.WatchConfig{Path: o.cfg.ContentFile, Logger: o.log})
		if err != nil {
			return err
		}
		trees, err := w.Start()
		if err != nil {
			return err
		}
		defer w.Stop()
		go func() {
			for t := range trees {
				sessions.SetContent(t)
			}
		}()
	}

	handler := api.New(sessions,
		api.WithLogger(o.log),
		api.WithCORS(o.cfg.CORSOrigins...),
		api.WithReadiness(o.ready),
	)
	srv, err := server.New(server.Config{
		Addr:      o.cfg.Addr,
		API:       handler,
		StaticDir: o.cfg.StaticDir,
		TLS:       server.TLSConfig{CertFile: o.cfg.TLS.Cert, KeyFile: o.cfg.TLS.Key},
		Logger:    o.log,
	})
	if err != nil {
		return err
	}

	o.log.Info().
		Str("profile", o.cfg.Profile).
		Str("data_dir", o.cfg.DataDir).
		Int("content_nodes", tree.Len()).
		Msg("starting webdesk")
	return srv.Run(ctx)
}

// ready fails while a configured content file is missing.
func (o *options) ready() error {
	if o.cfg.ContentFile == "" {
		return nil
	}
	if _, err := os.Stat(o.cfg.ContentFile); err != nil {
		return fmt.Errorf("content file: %w", err)
	}
	return nil
}
