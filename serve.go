package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"picklist/automation"
	"picklist/filter"
	"picklist/logger"
	"picklist/model"
	"picklist/watcher"
)

type serveOptions struct {
	Port      int
	NoBrowser bool
}

func serveCmd(cfgPath *string) *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *cfgPath, opts)
		},
	}
	cmd.Flags().IntVarP(&opts.Port, "port", "p", 0, "listen port (overrides app.port)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "do not open a browser window")
	return cmd
}

type groupLink struct {
	Filter model.FilterType
	Title  string
}

type indexData struct {
	Version string
	Backend string
	Groups  []groupLink
}

// indexHandler serves the single page. Everything else it needs comes from the API.
func indexHandler(tmpl *template.Template, data indexData) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
			logger.FromContext(r.Context()).Error("failed to render index", zap.Error(err))
		}
	}
}

func newMux(a *app) (*http.ServeMux, error) {
	tmpl, err := template.ParseFS(staticFiles, "static/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse index.html: %w", err)
	}
	assets, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, err
	}

	data := indexData{Version: Version, Backend: a.backend.Name()}
	for _, ft := range model.AllFilterTypes {
		data.Groups = append(data.Groups, groupLink{Filter: ft, Title: filter.GroupTitle(ft)})
	}

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(assets))))
	mux.HandleFunc("/", indexHandler(tmpl, data))
	SetupRoutes(mux, a.store, automation.NewPrinter(a.cfg.App.BrowserBin, a.log))
	return mux, nil
}

func runServe(ctx context.Context, cfgPath string, opts serveOptions) error {
	a, err := newApp(cfgPath)
	if err != nil {
		return err
	}
	defer a.Close()
	log := a.log

	if err := a.store.Open(ctx); err != nil {
		// Serve anyway; the page shows the error and can retry with Reload.
		log.Warn("initial load failed", zap.Error(err))
	} else {
		log.Info("picklist loaded", zap.Int("items", len(a.store.Items())))
	}

	mux, err := newMux(a)
	if err != nil {
		return err
	}

	port := a.cfg.App.Port
	if opts.Port > 0 {
		port = opts.Port
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           logger.Middleware(log, mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	// The write queue outlives the server so edits from in-flight requests are flushed.
	runCtx, stopRun := context.WithCancel(context.Background())
	defer stopRun()
	g.Go(func() error {
		return a.store.Run(runCtx)
	})

	g.Go(func() error {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		defer stopRun()
		return srv.Shutdown(shutdownCtx)
	})

	if dir := a.cfg.Import.WatchFolder; dir != "" {
		w := watcher.New(dir, a.store, a.cfg.Import.Debounce, log)
		g.Go(func() error {
			if err := w.Run(gctx); err != nil {
				// The server keeps running without the folder watch.
				log.Error("import folder watch stopped", zap.String("dir", dir), zap.Error(err))
			}
			return nil
		})
	}

	if a.cfg.App.OpenBrowser && !opts.NoBrowser {
		url := fmt.Sprintf("http://localhost:%d", port)
		go func() {
			time.Sleep(500 * time.Millisecond)
			if err := openBrowser(url); err != nil {
				log.Warn("failed to open browser", zap.String("url", url), zap.Error(err))
			}
		}()
	}

	return g.Wait()
}
