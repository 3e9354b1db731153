package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"udhayam/internal/capture"
	"udhayam/internal/catalog"
	"udhayam/internal/config"
	"udhayam/internal/export"
	appLog "udhayam/internal/log"
	"udhayam/internal/metrics"
	"udhayam/internal/model"
	"udhayam/internal/render"
	"udhayam/internal/timeline"
	"udhayam/internal/web"
)

const version = "0.1.0"

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string

	export   string
	category string
	dept     string
	day      int
	out      string

	capture bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if err := conf.Validate(); err != nil {
		appLog.Error("invalid config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if err := appLog.SetLevelString(conf.LogLevel); err != nil {
		appLog.Error("invalid log level", err)
		os.Exit(1)
	}

	appLog.Info("udhayam starting", "version", version)
	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"fest_start", conf.FestStart,
		"fest_days", conf.FestDays,
		"catalog_path", conf.CatalogPath,
		"catalog_url_set", conf.CatalogURL != "",
		"catalog_reload", conf.CatalogReload,
		"time_policy", conf.TimePolicy,
		"metrics", conf.Metrics,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	var m *metrics.Manager
	if conf.Metrics {
		m = metrics.NewManager()
	}

	src := catalog.Source{Path: conf.CatalogPath, URL: conf.CatalogURL}
	store, err := catalog.NewStore(src, catalog.NewFetcher(conf.CatalogCacheDir))
	if err != nil {
		appLog.Error("embedded catalog is invalid", err)
		os.Exit(1)
	}
	store.OnReload = func(source string, _ bool, err error) {
		m.RecordCatalogReload(source, err, store.Current().EventCount())
	}
	if src.String() != "embedded" {
		if _, err := store.Reload(ctx); err != nil {
			appLog.Warn("serving embedded catalog until the next successful reload", "source", src.String())
		}
	}

	switch {
	case flags.export != "":
		err = runExport(conf, store.Current(), flags)
	case flags.capture:
		err = runCapture(ctx, conf, store, m, flags)
	default:
		err = runServer(ctx, conf, store, m)
	}
	if err != nil {
		appLog.Error("udhayam failed", err)
		os.Exit(1)
	}
	appLog.Info("udhayam exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.export, "export", "", "Write one schedule as csv, ics or svg and exit")
	flag.StringVar(&cfg.category, "category", "department", "Schedule category: department, cultural or sports")
	flag.StringVar(&cfg.dept, "dept", "", "Department id for department schedules")
	flag.IntVar(&cfg.day, "day", 1, "Festival day (1 or 2)")
	flag.StringVar(&cfg.out, "out", "", "Export destination (default: the download file name; - for stdout)")
	flag.BoolVar(&cfg.capture, "capture", false, "Render the selected schedule to a PNG poster with headless Chromium and exit")

	flag.Parse()

	return cfg
}

func (f flagConfig) selection() (timeline.Selection, error) {
	sel := timeline.Selection{Category: model.Category(f.category), Day: f.day}
	if sel.Category == model.CategoryDepartment {
		sel.Department = f.dept
	}
	return sel, sel.Validate()
}

// runServer serves HTTP and reloads the catalog on cron until ctx ends.
func runServer(ctx context.Context, conf *config.Config, store *catalog.Store, m *metrics.Manager) error {
	srv, err := web.NewServer(conf, store, m)
	if err != nil {
		return err
	}

	if conf.CatalogPath != "" || conf.CatalogURL != "" {
		loc, err := conf.Location()
		if err != nil {
			return err
		}
		c := cron.New(cron.WithLocation(loc))
		// Reload failures are logged by the store.
		if _, err := c.AddFunc(conf.CatalogReload, func() { _, _ = store.Reload(ctx) }); err != nil {
			return fmt.Errorf("catalog_reload: %w", err)
		}
		c.Start()
		defer func() { <-c.Stop().Done() }()
		appLog.Info("catalog reload scheduled", "cron", conf.CatalogReload)
	}

	return srv.Serve(ctx)
}

// runExport writes one schedule download to a file or stdout.
func runExport(conf *config.Config, c *catalog.Catalog, f flagConfig) error {
	sel, err := f.selection()
	if err != nil {
		return err
	}
	policy, err := timeline.ParsePolicy(conf.TimePolicy)
	if err != nil {
		return err
	}

	subj := export.Subject{Selection: sel}
	if sel.Category == model.CategoryDepartment {
		if subj.Department, err = c.Department(sel.Department); err != nil {
			return err
		}
	}
	events, err := c.Events(sel.Category, sel.Department)
	if err != nil {
		return err
	}

	var body string
	switch f.export {
	case "csv":
		body = export.CSV(export.ScheduleTable(subj, events))
	case "ics":
		start, err := conf.FestStartTime()
		if err != nil {
			return err
		}
		body, err = export.ICS(subj, events, export.ICSOptions{
			FestStart: start,
			FestDays:  conf.FestDays,
			Policy:    policy,
		})
		if err != nil {
			return err
		}
	case "svg":
		opts := render.DefaultOptions()
		if subj.Department.Color != "" {
			opts.Accent = subj.Department.Color
		}
		body = render.SVG(timeline.BuildView(sel, subj.Title(), events, policy), opts)
	default:
		return fmt.Errorf("unknown export format %q (want csv, ics or svg)", f.export)
	}

	out := f.out
	if out == "" {
		out = subj.FileName(f.export)
	}
	var w io.Writer = os.Stdout
	if out != "-" {
		file, err := os.Create(out)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}
	if _, err := io.WriteString(w, body); err != nil {
		return err
	}
	appLog.Info("schedule exported", "format", f.export, "selection", sel.Key(), "out", out)
	return nil
}

// runCapture starts the server in-process, captures the selection's SVG
// poster as PNG and shuts the server down.
func runCapture(ctx context.Context, conf *config.Config, store *catalog.Store, m *metrics.Manager, f flagConfig) error {
	sel, err := f.selection()
	if err != nil {
		return err
	}
	// Credentials would block the headless browser.
	conf.BasicAuth = nil

	srv, err := web.NewServer(conf, store, m)
	if err != nil {
		return err
	}
	srvCtx, stop := context.WithCancel(ctx)
	defer stop()
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(srvCtx) }()

	host, port, err := net.SplitHostPort(conf.Listen)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	base := "http://" + net.JoinHostPort(host, port)
	if err := waitHealthy(ctx, base+"/health", errCh); err != nil {
		return err
	}

	u, err := capture.ScheduleURL(base, sel)
	if err != nil {
		return err
	}
	out := conf.CaptureOutput
	if f.out != "" {
		out = f.out
	}
	if err := capture.SchedulePNG(ctx, capture.Options{URL: u, OutputPath: out}); err != nil {
		return err
	}
	appLog.Info("schedule captured", "selection", sel.Key(), "out", out)

	stop()
	return <-errCh
}

func waitHealthy(ctx context.Context, url string, errCh <-chan error) error {
	client := &http.Client{Timeout: time.Second}
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case err := <-errCh:
			if err == nil {
				err = errors.New("server stopped before it became healthy")
			}
			return err
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		resp, err := client.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return errors.New("server did not become healthy in time")
}
