// Package migration loads a project's migration graph, orders it by
// dependency and renders each migration to SQL.
package migration

import (
	"fmt"
	"sort"
	"strings"

	"ariga.io/atlas/sql/migrate"
)

// Key identifies a migration by application and name.
type Key struct {
	App  string
	Name string
}

func (k Key) String() string {
	return k.App + "/" + k.Name
}

// ParseKey parses the "app/name" form produced by Key.String.
func ParseKey(s string) (Key, error) {
	app, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || app == "" || name == "" {
		return Key{}, fmt.Errorf("invalid migration reference %q: expected app/name", s)
	}
	return Key{App: app, Name: strings.TrimSuffix(name, ".sql")}, nil
}

// Migration is a single schema change unit of an application.
type Migration struct {
	Key
	Version      string
	Description  string
	Dependencies []Key

	file migrate.File
}

// New creates a migration that is not backed by a file.
func New(app, name string, deps ...Key) *Migration {
	version, desc, _ := strings.Cut(name, "_")
	return &Migration{
		Key:          Key{App: app, Name: name},
		Version:      version,
		Description:  desc,
		Dependencies: deps,
	}
}

// Stmts returns the SQL statements of the migration file.
func (m *Migration) Stmts() ([]string, error) {
	if m.file == nil {
		return nil, nil
	}
	return m.file.Stmts()
}

// Graph holds migrations keyed by Key.
type Graph struct {
	nodes map[Key]*Migration
}

func NewGraph() *Graph {
	return &Graph{nodes: make(map[Key]*Migration)}
}

// Add inserts a migration. Keys must be unique.
func (g *Graph) Add(m *Migration) error {
	if _, exists := g.nodes[m.Key]; exists {
		return fmt.Errorf("duplicate migration %s", m.Key)
	}
	g.nodes[m.Key] = m
	return nil
}

func (g *Graph) Node(key Key) (*Migration, bool) {
	m, ok := g.nodes[key]
	return m, ok
}

func (g *Graph) Len() int {
	return len(g.nodes)
}

// Keys returns every node ordered by application, then name.
func (g *Graph) Keys() []Key {
	keys := make([]Key, 0, len(g.nodes))
	for k := range g.nodes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].App != keys[j].App {
			return keys[i].App < keys[j].App
		}
		return keys[i].Name < keys[j].Name
	})
	return keys
}

// Validate checks that every dependency refers to a node of the graph.
func (g *Graph) Validate() error {
	for _, key := range g.Keys() {
		for _, dep := range g.nodes[key].Dependencies {
			if _, ok := g.nodes[dep]; !ok {
				return &NodeNotFoundError{Migration: key, Dependency: dep}
			}
		}
	}
	return nil
}

// Plan returns every migration ordered so that each one appears after all
// of its dependencies. Nodes are visited in Keys order and dependencies in
// declaration order, which makes the plan reproducible.
func (g *Graph) Plan() ([]*Migration, error) {
	plan := make([]*Migration, 0, len(g.nodes))
	visited := make(map[Key]bool)
	visiting := make(map[Key]bool)

	var visit func(Key) error
	visit = func(key Key) error {
		if visited[key] {
			return nil
		}
		if visiting[key] {
			return &CircularDependencyError{Migration: key}
		}

		visiting[key] = true

		m := g.nodes[key]
		for _, dep := range m.Dependencies {
			if _, ok := g.nodes[dep]; !ok {
				return &NodeNotFoundError{Migration: key, Dependency: dep}
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		visiting[key] = false
		visited[key] = true
		plan = append(plan, m)

		return nil
	}

	for _, key := range g.Keys() {
		if err := visit(key); err != nil {
			return nil, err
		}
	}

	return plan, nil
}
