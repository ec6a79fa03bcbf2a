package migration

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"ariga.io/atlas/sql/migrate"

	"github.com/eleven-am/schemaviz/internal/logger"
)

// dependsOnDirective declares a dependency on another application's
// migration in a file header, e.g. "-- depends_on: users/0001_initial".
const dependsOnDirective = "depends_on:"

// GraphSource yields the migration graph of a project.
type GraphSource interface {
	Graph() (*Graph, error)
}

// Loaded adapts an already built graph to GraphSource.
func Loaded(g *Graph) GraphSource {
	return loaded{g: g}
}

type loaded struct {
	g *Graph
}

func (l loaded) Graph() (*Graph, error) {
	return l.g, nil
}

// DirLoader reads migrations from a root directory holding one
// sub-directory per application. Each application directory is an Atlas
// migration directory of <version>_<description>.sql files.
type DirLoader struct {
	root string
	log  logger.Logger
}

func NewDirLoader(root string) *DirLoader {
	return &DirLoader{
		root: root,
		log:  logger.Migration(),
	}
}

// Graph loads every application directory below the root. A missing root
// yields an empty graph.
func (l *DirLoader) Graph() (*Graph, error) {
	g := NewGraph()

	entries, err := os.ReadDir(l.root)
	if errors.Is(err, fs.ErrNotExist) {
		l.log.Warn("Migrations directory does not exist", "dir", l.root)
		return g, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if err := l.loadApp(g, entry.Name()); err != nil {
			return nil, err
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}

	l.log.Info("Loaded migration graph", "dir", l.root, "migrations", g.Len())
	return g, nil
}

func (l *DirLoader) loadApp(g *Graph, app string) error {
	dir, err := migrate.NewLocalDir(filepath.Join(l.root, app))
	if err != nil {
		return fmt.Errorf("failed to open migrations of %s: %w", app, err)
	}

	if err := migrate.Validate(dir); err != nil && !errors.Is(err, migrate.ErrChecksumNotFound) {
		return fmt.Errorf("failed to validate migrations of %s: %w", app, err)
	}

	files, err := dir.Files()
	if err != nil {
		return fmt.Errorf("failed to list migrations of %s: %w", app, err)
	}

	var previous *Key
	for _, f := range files {
		key := Key{App: app, Name: strings.TrimSuffix(f.Name(), ".sql")}

		var deps []Key
		if previous != nil {
			deps = append(deps, *previous)
		}

		explicit, err := parseDependencies(f.Bytes())
		if err != nil {
			return fmt.Errorf("migration %s: %w", key, err)
		}
		deps = append(deps, explicit...)

		m := &Migration{
			Key:          key,
			Version:      f.Version(),
			Description:  f.Desc(),
			Dependencies: deps,
			file:         f,
		}
		if err := g.Add(m); err != nil {
			return err
		}

		l.log.Debug("Loaded migration", "migration", key.String(), "dependencies", len(deps))
		previous = &key
	}

	return nil
}

// parseDependencies reads depends_on directives from the leading comment
// block of a migration file.
func parseDependencies(content []byte) ([]Key, error) {
	var deps []Key

	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "--") {
			break
		}

		comment := strings.TrimSpace(strings.TrimPrefix(line, "--"))
		refs, ok := strings.CutPrefix(comment, dependsOnDirective)
		if !ok {
			continue
		}
		for _, ref := range strings.Split(refs, ",") {
			key, err := ParseKey(ref)
			if err != nil {
				return nil, err
			}
			deps = append(deps, key)
		}
	}

	return deps, scanner.Err()
}
