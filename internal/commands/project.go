package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artis-laminates/ledgerimport/internal/catalog"
	"github.com/artis-laminates/ledgerimport/internal/config"
	"github.com/artis-laminates/ledgerimport/internal/logging"
)

// project is a loaded ledgerimport directory.
type project struct {
	root string
	cfg  *config.Config
	log  *slog.Logger
	pool *pgxpool.Pool
}

// openProject loads <repo>/ledgerimport.yaml (defaults when absent), applies
// the environment and sets up logging on logOut.
func openProject(repo string, logOut io.Writer) (*project, error) {
	root, err := filepath.Abs(repo)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if errors.Is(err, os.ErrNotExist) {
		cfg = config.Default()
	} else if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(root); err != nil {
		return nil, err
	}

	log := logging.Setup(logOut, cfg.Logging.Level, cfg.Logging.Format)
	return &project{root: root, cfg: cfg, log: log}, nil
}

// path resolves p against the project root unless it is absolute.
func (p *project) path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.root, rel)
}

// connect opens the database pool on first use.
func (p *project) connect(ctx context.Context) (*pgxpool.Pool, error) {
	if p.pool != nil {
		return p.pool, nil
	}
	if p.cfg.Database.URL == "" {
		return nil, errors.New("no database configured: set DATABASE_URL or database.url")
	}

	poolConfig, err := pgxpool.ParseConfig(p.cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	if p.cfg.Database.MaxConns > 0 {
		poolConfig.MaxConns = int32(p.cfg.Database.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if u, err := url.Parse(p.cfg.Database.URL); err == nil {
		p.log.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}
	p.pool = pool
	return pool, nil
}

func (p *project) close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// catalogSource picks the alias source named by kind ("csv" or "postgres").
func (p *project) catalogSource(ctx context.Context, kind string) (catalog.Source, error) {
	switch kind {
	case "csv":
		return catalog.CSVSource{Path: p.path(p.cfg.Catalog.Path)}, nil
	case "postgres":
		pool, err := p.connect(ctx)
		if err != nil {
			return nil, err
		}
		return catalog.PostgresSource{DB: pool}, nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q (want csv or postgres)", kind)
	}
}

// loadDirectory builds the product directory and logs alias collisions.
func (p *project) loadDirectory(ctx context.Context, kind string) (*catalog.Directory, error) {
	src, err := p.catalogSource(ctx, kind)
	if err != nil {
		return nil, err
	}
	dir, err := catalog.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	p.log.Info("product directory built", "products", dir.Products(), "aliases", dir.Len())
	for _, c := range dir.Collisions() {
		p.log.Warn("alias claimed by more than one product", "alias", c.Alias, "kept", c.Kept, "dropped", c.Dropped)
	}
	return dir, nil
}
