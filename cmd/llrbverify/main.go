package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/benz9527/xllrb/observability"
	"github.com/benz9527/xllrb/verifier"
	"github.com/benz9527/xllrb/xlog"
)

type cmdConfig struct {
	exporter      string
	metricsAddr   string
	level         string
	interval      time.Duration
	seed          uint64
	keys          int
	rounds        int
	workers       int
	validateEvery int
	plainText     bool
}

func parseFlags(args []string) (cmdConfig, error) {
	cfg := cmdConfig{}
	fs := flag.NewFlagSet("llrbverify", flag.ContinueOnError)
	fs.IntVar(&cfg.keys, "keys", 4096, "entries of the shared base map")
	fs.IntVar(&cfg.rounds, "rounds", 5000, "random operations per history")
	fs.IntVar(&cfg.workers, "workers", 0, "concurrent histories, 0 means GOMAXPROCS")
	fs.IntVar(&cfg.validateEvery, "validate-every", 64, "full invariant check interval in operations")
	fs.Uint64Var(&cfg.seed, "seed", 0, "random seed, 0 picks one")
	fs.StringVar(&cfg.exporter, "metrics", "none", "metrics exporter: none, console or prometheus")
	fs.StringVar(&cfg.metricsAddr, "metrics-addr", ":9464", "prometheus scrape address")
	fs.DurationVar(&cfg.interval, "metrics-interval", 10*time.Second, "console metrics export interval")
	fs.StringVar(&cfg.level, "log-level", "", "DEBUG, INFO, WARN or ERROR, defaults to $XLOG_LVL")
	fs.BoolVar(&cfg.plainText, "plain", false, "plain text logs instead of JSON")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments %v", fs.Args())
	}
	return cfg, nil
}

func levelOption(name string) xlog.XLoggerOption {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case xlog.LogLevelDebug.String():
		return xlog.WithXLoggerLevel(xlog.LogLevelDebug)
	case xlog.LogLevelInfo.String():
		return xlog.WithXLoggerLevel(xlog.LogLevelInfo)
	case xlog.LogLevelWarn.String():
		return xlog.WithXLoggerLevel(xlog.LogLevelWarn)
	case xlog.LogLevelError.String():
		return xlog.WithXLoggerLevel(xlog.LogLevelError)
	default:
	}
	return nil
}

func newLogger(cfg cmdConfig) xlog.XLogger {
	opts := []xlog.XLoggerOption{
		xlog.WithXLoggerStdOutWriter(),
		levelOption(cfg.level),
	}
	if cfg.plainText {
		opts = append(opts, xlog.WithXLoggerEncoder(xlog.PlainText))
	}
	return xlog.NewXLogger(opts...)
}

func newVerifier(cfg cmdConfig, logger xlog.XLogger) (*verifier.Verifier, error) {
	opts := []verifier.VerifierOption{
		verifier.WithLogger(logger),
		verifier.WithKeys(cfg.keys),
		verifier.WithRounds(cfg.rounds),
		verifier.WithValidateEvery(cfg.validateEvery),
		verifier.WithSeed(cfg.seed),
	}
	if cfg.workers > 0 {
		opts = append(opts, verifier.WithWorkers(cfg.workers))
	}
	return verifier.NewVerifier(opts...)
}

func registerMetrics(lc fx.Lifecycle, cfg cmdConfig) error {
	typ, err := observability.ParseExporterType(cfg.exporter)
	if err != nil {
		return fmt.Errorf("%w %q", err, cfg.exporter)
	}
	shutdown, err := observability.InitMetricsExporter(typ, cfg.interval)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	observability.InitAppStats(ctx, "llrbverify", nil)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			cancel()
			return shutdown(ctx)
		},
	})
	if typ == observability.PrometheusExporter {
		lc.Append(scrapeHook(cfg.metricsAddr))
	}
	return nil
}

// scrapeHook serves the prometheus default registry, where the
// otel prometheus exporter registers itself.
func scrapeHook(addr string) fx.Hook {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					fmt.Fprintln(os.Stderr, "llrbverify: metrics server:", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	}
}

type banner struct{}

func (banner) JSON() string {
	return `{"app":"llrbverify","desc":"persistent llrb map stress verifier"}`
}

func (banner) PlainText() string {
	return "llrbverify - persistent llrb map stress verifier"
}

// runVerification starts the verification once the app is up and
// shuts the app down with exit code 1 on any failure.
func runVerification(lc fx.Lifecycle, sd fx.Shutdowner, v *verifier.Verifier, logger xlog.XLogger) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Banner(banner{})
			go func() {
				report, err := v.Run(ctx)
				code := 0
				if err != nil {
					code = 1
				}
				logger.Info("llrb verification report",
					zap.Uint64("seed", report.Seed),
					zap.Int64("baseSize", report.BaseSize),
					zap.Int("histories", report.Histories),
					zap.Int("failed", report.Failed),
					zap.Int64("ops", report.Ops),
					zap.Int64("validations", report.Validations),
					zap.Int64("violations", report.Violations),
					zap.Duration("elapsed", report.Elapsed),
				)
				_ = sd.Shutdown(fx.ExitCode(code))
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			_ = logger.Sync()
			return nil
		},
	})
}

func newApp(cfg cmdConfig) *fx.App {
	return fx.New(
		fx.Supply(cfg),
		fx.Provide(newLogger, newVerifier),
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Invoke(registerMetrics, runVerification),
	)
}

func run(cfg cmdConfig) int {
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))

	app := newApp(cfg)
	startCtx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		fmt.Fprintln(os.Stderr, "llrbverify:", err)
		return 1
	}

	sig := <-app.Wait()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		fmt.Fprintln(os.Stderr, "llrbverify:", err)
	}
	return sig.ExitCode
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	os.Exit(run(cfg))
}
