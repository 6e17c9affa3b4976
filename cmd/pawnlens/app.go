// # cmd/pawnlens/app.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"pawnlens/internal/core/config"
	"pawnlens/internal/discovery"
	"pawnlens/internal/graph"
	"pawnlens/internal/ipc"
	"pawnlens/internal/query"
	"pawnlens/internal/shared/observability"
	"pawnlens/internal/shared/util"
	"pawnlens/internal/watcher"
)

type App struct {
	Config  *config.Config
	Repo    *graph.Repository
	Service *query.Service

	store      *graph.SQLiteSnapshotStore
	stdlib     map[string]string // builtin name -> file path
	fsWatcher  *watcher.Watcher
	teaProgram *tea.Program
	log        *slog.Logger
}

func NewApp(cfg *config.Config) (*App, error) {
	a := &App{
		Config: cfg,
		stdlib: make(map[string]string),
		log:    slog.Default(),
	}

	if cfg.Stdlib.IsEnabled() {
		files, err := discovery.StdlibIncludes(cfg.Stdlib.Root)
		if err != nil {
			return nil, fmt.Errorf("enumerate stdlib under %q: %w", cfg.Stdlib.Root, err)
		}
		for _, f := range files {
			a.stdlib[f.Name] = f.Path
		}
	}

	if cfg.DB.Enabled {
		store, err := graph.OpenSnapshotStore(filepath.Join(cfg.Paths.CacheDir, cfg.DB.Path))
		if err != nil {
			return nil, err
		}
		a.store = store
	}

	a.Repo = graph.NewRepository(a.loadIdentity, a.log)
	a.Service = query.NewService(a.Repo, a.log)
	return a, nil
}

// loadIdentity reads file contents for the repository. Builtin identities
// are mapped through the stdlib index; everything else is an absolute
// slash-separated path.
func (a *App) loadIdentity(uri string) (string, bool) {
	path := ""
	if graph.IsBuiltinURI(uri) {
		name := strings.TrimPrefix(uri, graph.BuiltinScheme)
		mapped, ok := a.stdlib[name]
		if !ok {
			return "", false
		}
		path = mapped
	} else {
		path = filepath.FromSlash(uri)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func identityForPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return filepath.ToSlash(abs)
}

// InitialScan indexes the standard library and every project source file.
// Stdlib tables come from the snapshot store when the file content still
// matches; everything else is extracted fresh.
func (a *App) InitialScan() error {
	start := time.Now()

	for _, name := range util.SortedStringKeys(a.stdlib) {
		path := a.stdlib[name]
		uri := graph.BuiltinScheme + name
		data, err := os.ReadFile(path)
		if err != nil {
			a.log.Warn("failed to read stdlib include", "path", path, "error", err)
			continue
		}
		text := string(data)
		hash := graph.HashText(text)

		if a.store != nil {
			if table, ok, err := a.store.LoadTable(uri, hash); err == nil && ok {
				observability.SnapshotHitsTotal.WithLabelValues("hit").Inc()
				a.Repo.AdoptTable(table)
				continue
			}
			observability.SnapshotHitsTotal.WithLabelValues("miss").Inc()
		}

		table := a.Repo.IndexFile(uri, text, true)
		if a.store != nil {
			if err := a.store.SaveTable(table, hash); err != nil {
				a.log.Warn("failed to persist stdlib snapshot", "uri", uri, "error", err)
			}
		}
	}

	count, err := a.scanProject()
	if err != nil {
		return err
	}

	if a.store != nil {
		if err := a.store.Prune(a.Repo.URIs()); err != nil {
			a.log.Warn("failed to prune snapshot store", "error", err)
		}
	}

	a.log.Info("initial scan complete",
		"stdlib", len(a.stdlib),
		"project_files", count,
		"total", a.Repo.Len(),
		"elapsed", time.Since(start))
	return nil
}

func (a *App) scanProject() (int, error) {
	sources, err := discovery.ProjectSources(a.Config.Paths.ProjectRoot, a.Config.Watch.Extensions, a.Config.Exclude.Dirs)
	if err != nil {
		return 0, fmt.Errorf("scan project root %q: %w", a.Config.Paths.ProjectRoot, err)
	}

	for _, path := range sources {
		data, err := os.ReadFile(path)
		if err != nil {
			a.log.Warn("failed to read source file", "path", path, "error", err)
			continue
		}
		a.Repo.IndexFile(identityForPath(path), string(data), false)
	}

	observability.IndexedFiles.Set(float64(a.Repo.Len()))
	return len(sources), nil
}

// HandleChanges reparses a debounced batch of changed files. A file that no
// longer exists is dropped from the repository.
func (a *App) HandleChanges(paths []string) {
	for _, path := range paths {
		uri := identityForPath(path)
		data, err := os.ReadFile(path)
		if err != nil {
			a.Repo.Remove(uri)
			a.log.Debug("removed deleted file", "uri", uri)
			continue
		}
		a.Repo.IndexFile(uri, string(data), false)
	}
	observability.IndexedFiles.Set(float64(a.Repo.Len()))

	if a.teaProgram != nil {
		a.teaProgram.Send(indexUpdateMsg{
			files:  a.Repo.Len(),
			stdlib: len(a.stdlib),
			events: paths,
		})
	}
}

func (a *App) StartWatcher() error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Watch.Extensions,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		a.HandleChanges,
	)
	if err != nil {
		return err
	}
	a.fsWatcher = w
	return w.Watch([]string{a.Config.Paths.ProjectRoot})
}

// RunServer answers stdio queries until the context ends. The metrics
// listener, when enabled, runs alongside it.
func (a *App) RunServer(ctx context.Context) error {
	limiter := util.NewLimiter(a.Config.Server.RateLimit, a.Config.Server.RateBurst)
	srv := ipc.NewServer(a.Service, a.statusResult, a.reindex, limiter, a.log)

	g, ctx := errgroup.WithContext(ctx)

	if a.Config.Metrics.Enabled {
		metricsSrv := &http.Server{
			Addr:              a.Config.Metrics.Address,
			Handler:           promhttp.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			return metricsSrv.ListenAndServe()
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return metricsSrv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		return srv.Serve(ctx, os.Stdin, os.Stdout)
	})

	return g.Wait()
}

func (a *App) statusResult() ipc.StatusResult {
	result := ipc.StatusResult{
		Files:  a.Repo.Len(),
		HeapMB: util.GetHeapAllocMB(),
	}
	if a.store != nil {
		result.Generation = a.store.Generation()
	}
	return result
}

func (a *App) reindex(ctx context.Context) (int, error) {
	if _, err := a.scanProject(); err != nil {
		return 0, err
	}
	return a.Repo.Len(), nil
}

func (a *App) RunUI() error {
	m := initialModel()
	p := tea.NewProgram(m, tea.WithAltScreen())
	a.teaProgram = p

	go func() {
		p.Send(indexUpdateMsg{
			files:  a.Repo.Len(),
			stdlib: len(a.stdlib),
		})
	}()

	_, err := p.Run()
	return err
}

func (a *App) Close() error {
	if a.fsWatcher != nil {
		_ = a.fsWatcher.Close()
	}
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}
