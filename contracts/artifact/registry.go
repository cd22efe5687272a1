package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"
)

const (
	defaultCacheSize = 64
)

type header struct {
	ContractName string          `json:"contractName"`
	SourceName   string          `json:"sourceName"`
	ABI          json.RawMessage `json:"abi"`
}

// Registry resolves contract names to compiled artifacts found under a root directory
type Registry struct {
	logger hclog.Logger
	root   string

	// contract name -> artifact paths
	byName map[string][]string
	// fully qualified name -> artifact path
	byFQN map[string]string

	cache *lru.Cache
}

// NewRegistry indexes every artifact below root
func NewRegistry(logger hclog.Logger, root string) (*Registry, error) {
	cache, err := lru.New(defaultCacheSize)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		logger: logger.Named("artifacts"),
		root:   root,
		byName: make(map[string][]string),
		byFQN:  make(map[string]string),
		cache:  cache,
	}

	if err := r.index(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Registry) index() error {
	err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if d.Name() == buildInfoDir {
				return filepath.SkipDir
			}

			return nil
		}

		if !strings.HasSuffix(path, ".json") || strings.HasSuffix(path, debugSuffix) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var h header
		if err := json.Unmarshal(data, &h); err != nil || len(h.ABI) == 0 {
			r.logger.Debug("skip non artifact file", "path", path)

			return nil
		}

		if h.ContractName == "" {
			h.ContractName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}

		r.byName[h.ContractName] = append(r.byName[h.ContractName], path)

		if h.SourceName != "" {
			r.byFQN[h.SourceName+":"+h.ContractName] = path
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to index artifacts in %s: %w", r.root, err)
	}

	r.logger.Debug("indexed artifacts", "root", r.root, "contracts", len(r.byName))

	return nil
}

// Names returns the indexed contract names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (r *Registry) resolve(name string) (string, error) {
	if strings.Contains(name, ":") {
		path, ok := r.byFQN[name]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
		}

		return path, nil
	}

	paths := r.byName[name]

	switch len(paths) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
	case 1:
		return paths[0], nil
	default:
		return "", fmt.Errorf("%w: %s (%s)", ErrAmbiguousArtifact, name, strings.Join(paths, ", "))
	}
}

// Lookup returns the artifact for a contract name or a fully qualified name
// (contracts/Whitelist.sol:Whitelist)
func (r *Registry) Lookup(name string) (*Artifact, error) {
	path, err := r.resolve(name)
	if err != nil {
		return nil, err
	}

	if cached, ok := r.cache.Get(path); ok {
		if a, ok := cached.(*Artifact); ok {
			return a, nil
		}
	}

	a, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	r.cache.Add(path, a)

	return a, nil
}

// Preload resolves all names concurrently, so that a missing or broken
// artifact is reported before anything is sent to the chain
func (r *Registry) Preload(ctx context.Context, names ...string) ([]*Artifact, error) {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]*Artifact, len(names))

	for i, name := range names {
		i := i
		name := name

		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				a, err := r.Lookup(name)
				if err != nil {
					return err
				}

				results[i] = a

				return nil
			}
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
