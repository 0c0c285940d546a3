package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/streamnet/pkg/network"
	"github.com/matzehuels/streamnet/pkg/pipeline"
	"github.com/matzehuels/streamnet/pkg/store"
)

// serveCommand creates the serve command exposing a closure store over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		storePath  string
		addr       string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "serve [topology.csv]",
		Short: "Serve segment networks from a closure store over HTTP",
		Long: `Serve segment networks from a closure store over HTTP.

The serve command loads the topology (for id resolution) and opens a
closure store built with 'build --store'. It then answers network
lookups without recomputing anything:

  GET /healthz                      liveness probe
  GET /v1/manifest                  build metadata for the store
  GET /v1/segments/{id}/ancestors   one segment's full network

Segment ids in URLs are the external ids from the topology table.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.TopologyPath = args[0]
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg.apply(&opts)
			if storePath == "" {
				storePath = opts.StorePath
			}
			if storePath == "" {
				return fmt.Errorf("no closure store: pass --store or set store.path in the config")
			}
			if store.IsRemote(storePath) {
				return fmt.Errorf("serve reads file stores only; got remote target %q", storePath)
			}
			return c.runServe(cmd.Context(), opts, storePath, addr)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default streamnet.toml if present)")
	cmd.Flags().StringVar(&opts.IDColumn, "id-col", "", "segment id column (default comid)")
	cmd.Flags().StringVar(&opts.ToColumn, "to-col", "", "downstream node column (default tonode)")
	cmd.Flags().StringVar(&opts.FromColumn, "from-col", "", "upstream node column (default fromnode)")
	cmd.Flags().StringVarP(&opts.Direction, "direction", "d", "", "traversal direction: up (default), down")
	cmd.Flags().StringVar(&storePath, "store", "", "closure store file to serve")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}

// runServe loads topology and store, then blocks serving HTTP until ctx is
// cancelled.
func (c *CLI) runServe(ctx context.Context, opts pipeline.Options, storePath, addr string) error {
	runner := c.newRunner()
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Resolving topology...")
	spinner.Start()
	topo, err := runner.Ingest(ctx, opts)
	if err != nil {
		spinner.StopWithError("Topology ingestion failed")
		return err
	}
	spinner.Stop()
	printSuccess("Resolved %d segments", topo.IDs.Len())

	reader, err := store.OpenFile(storePath)
	if err != nil {
		return fmt.Errorf("open closure store %s: %w", storePath, err)
	}
	defer reader.Close()

	var manifest *store.Manifest
	if m, err := store.ReadManifest(store.ManifestPath(storePath)); err == nil {
		manifest = m
	} else if !os.IsNotExist(err) {
		c.Logger.Warn("could not read store manifest", "err", err)
	}

	srv := &storeServer{
		topo:     topo,
		reader:   reader,
		manifest: manifest,
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	printInfo("Serving %d networks on %s", reader.Len(), addr)
	if manifest != nil {
		printKeyValue("build", manifest.BuildID)
		printKeyValue("created", manifest.CreatedAt.Format(time.RFC3339))
	}
	printDetail("GET /v1/segments/{id}/ancestors")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// storeServer answers network lookups against an open closure store.
type storeServer struct {
	topo     *network.Topology
	reader   *store.FileStore
	manifest *store.Manifest
}

// routes wires the HTTP endpoints.
func (s *storeServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/v1/manifest", s.handleManifest)
	r.Get("/v1/segments/{id}/ancestors", s.handleAncestors)

	return r
}

func (s *storeServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"segments": s.topo.IDs.Len(),
		"networks": s.reader.Len(),
	})
}

func (s *storeServer) handleManifest(w http.ResponseWriter, _ *http.Request) {
	if s.manifest == nil {
		writeError(w, http.StatusNotFound, "store has no manifest")
		return
	}
	writeJSON(w, http.StatusOK, s.manifest)
}

// ancestorsResponse is the JSON body for a network lookup.
type ancestorsResponse struct {
	ID        string   `json:"id"`
	Count     int      `json:"count"`
	Ancestors []string `json:"ancestors"`
}

func (s *storeServer) handleAncestors(w http.ResponseWriter, r *http.Request) {
	external := chi.URLParam(r, "id")
	internal, ok := s.topo.IDs.Internal(external)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown segment %q", external))
		return
	}

	closure, err := s.reader.Get(r.Context(), internal)
	if err != nil {
		if err == store.ErrNotFound {
			writeError(w, http.StatusNotFound, fmt.Sprintf("no network stored for segment %q", external))
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ancestors := make([]string, 0, len(closure))
	for _, id := range closure {
		ext, ok := s.topo.IDs.External(id)
		if !ok {
			continue
		}
		ancestors = append(ancestors, ext)
	}

	writeJSON(w, http.StatusOK, ancestorsResponse{
		ID:        external,
		Count:     len(ancestors),
		Ancestors: ancestors,
	})
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError sends a JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
