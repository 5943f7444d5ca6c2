package runtime

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/JNickson/kube-log-annotator/internal/annotator"
	"github.com/JNickson/kube-log-annotator/internal/clients"
	"github.com/JNickson/kube-log-annotator/internal/collector"
	"github.com/JNickson/kube-log-annotator/internal/config"
	"github.com/JNickson/kube-log-annotator/internal/handlers"
	"github.com/JNickson/kube-log-annotator/internal/informers"
	"github.com/JNickson/kube-log-annotator/internal/metrics"
	"github.com/JNickson/kube-log-annotator/internal/pods"
	"github.com/JNickson/kube-log-annotator/internal/store"
	"k8s.io/client-go/kubernetes"
)

type App struct {
	manager     *informers.Manager
	collector   *collector.Collector
	hub         *collector.Hub
	metrics     *metrics.Metrics
	podsService pods.Service
	server      *http.Server
}

func New(cfg config.Config) (*App, error) {
	restCfg, err := clients.NewKubeConfig(cfg.Kubeconfig)
	if err != nil {
		return nil, err
	}

	kubeClient, err := clients.NewKubeClient(restCfg)
	if err != nil {
		return nil, err
	}

	return newApp(cfg, kubeClient, os.Stdout), nil
}

func newApp(cfg config.Config, client kubernetes.Interface, out io.Writer) *App {
	manager := informers.NewManager(client, cfg.NodeName)
	podStore := store.New(manager.PodLister())
	m := metrics.New()
	hub := collector.NewHub(m.StreamDropped)
	m.RegisterCachedPods(podStore.Len)
	m.RegisterStreamSubscribers(hub.Subscribers)

	var records collector.Sink = collector.DiscardSink{}
	if cfg.Output == config.OutputStdout {
		records = collector.NewJSONSink(out)
	}

	app := &App{
		manager: manager,
		collector: collector.New(
			annotator.New(podStore, cfg.Fields),
			collector.MultiSink{records, hub},
			collector.Options{
				LogDir:        cfg.LogDir,
				ReadFromStart: cfg.ReadFromStart,
				PollInterval:  cfg.PollInterval,
				Metrics:       m,
			},
		),
		hub:         hub,
		metrics:     m,
		podsService: pods.NewPodService(podStore),
	}

	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.setupRouter(),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return app
}

// Start blocks until ctx is done. The collector only starts once the pod
// cache has synced so the first lines are not left unannotated.
func (a *App) Start(ctx context.Context) {
	go func() {
		if !a.manager.Start(ctx) {
			return
		}
		if err := a.collector.Run(ctx); err != nil {
			slog.Error("log collector failed", "error", err)
		}
	}()

	go func() {
		slog.Info("starting server", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = a.server.Shutdown(shutdownCtx)
	a.manager.Shutdown()
}

func (a *App) setupRouter() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/pods", handlers.PodsHandler(a.podsService))
	api.HandleFunc("/logs/stream", a.handleLogStream)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handlers.HealthHandler())
	mux.HandleFunc("/readyz", handlers.ReadyHandler(a.manager.Synced))
	mux.Handle("/metrics", a.metrics.Handler())
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", api))

	return mux
}

func (a *App) handleLogStream(w http.ResponseWriter, r *http.Request) {
	opts, err := logStreamOptionsFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	if opts.Format == logStreamFormatJSON {
		w.Header().Set("Content-Type", "application/x-ndjson; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	entries, cancel := a.hub.Subscribe(opts.Buffer, opts.matches)
	defer cancel()

	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case entry, ok := <-entries:
			if !ok {
				return
			}
			if err := writeLogStreamEntry(w, entry, opts.Format); err != nil {
				slog.Warn("log stream ended with error", "namespace", opts.Namespace, "error", err)
				return
			}
			flusher.Flush()
		}
	}
}
