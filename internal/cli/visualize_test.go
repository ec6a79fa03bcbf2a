package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/schemaviz/internal/atlascloud"
	"github.com/eleven-am/schemaviz/internal/driver"
	"github.com/eleven-am/schemaviz/internal/logger"
	"github.com/eleven-am/schemaviz/internal/migration"
)

type call struct {
	op   string
	args []any
}

// fakeClient answers the three Atlas Cloud calls with canned results.
type fakeClient struct {
	calls []call

	schema     string
	computeErr error
	extID      string
	createErr  error
	shared     bool
	shareErr   error
}

func (f *fakeClient) ComputeSchema(_ context.Context, sql string, d driver.Driver) (string, error) {
	f.calls = append(f.calls, call{"ComputeSchema", []any{sql, d}})
	return f.schema, f.computeErr
}

func (f *fakeClient) CreateVisualization(_ context.Context, schema string, d driver.Driver) (string, error) {
	f.calls = append(f.calls, call{"CreateVisualization", []any{schema, d}})
	return f.extID, f.createErr
}

func (f *fakeClient) ShareVisualization(_ context.Context, extID string) (bool, error) {
	f.calls = append(f.calls, call{"ShareVisualization", []any{extID}})
	return f.shared, f.shareErr
}

func (f *fakeClient) ops() []string {
	ops := make([]string, len(f.calls))
	for i, c := range f.calls {
		ops[i] = c.op
	}
	return ops
}

func writeMigration(t *testing.T, root, app, name, content string) {
	t.Helper()
	dir := filepath.Join(root, app)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

// sampleProject mirrors two apps each creating a price history table.
func sampleProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeMigration(t, root, "app1", "0001_create_model_pricehistory.sql",
		`CREATE TABLE "app1_pricehistory" ("id" integer NOT NULL PRIMARY KEY AUTOINCREMENT, "price" decimal NOT NULL);`+"\n")
	writeMigration(t, root, "app2", "0001_create_model_pricehistory.sql",
		`CREATE TABLE "app2_pricehistory" ("id" integer NOT NULL PRIMARY KEY AUTOINCREMENT, "price" decimal NOT NULL);`+"\n")
	return root
}

const sampleSQL = "BEGIN;\n--\n-- Create model pricehistory\n--\n" +
	`CREATE TABLE "app1_pricehistory" ("id" integer NOT NULL PRIMARY KEY AUTOINCREMENT, "price" decimal NOT NULL);` + "\n" +
	"COMMIT;\n" +
	"BEGIN;\n--\n-- Create model pricehistory\n--\n" +
	`CREATE TABLE "app2_pricehistory" ("id" integer NOT NULL PRIMARY KEY AUTOINCREMENT, "price" decimal NOT NULL);` + "\n" +
	"COMMIT;\n"

type harness struct {
	v      *visualizer
	client *fakeClient
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newHarness(t *testing.T, source migration.GraphSource) *harness {
	t.Helper()
	logger.Configure(&bytes.Buffer{}, logger.LevelDebug)
	t.Cleanup(func() { logger.Configure(os.Stderr, logger.LevelWarn) })

	h := &harness{
		client: &fakeClient{schema: "schema \"main\" {}", extID: "first_extID", shared: true},
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
	}
	h.v = &visualizer{
		engine: "django.db.backends.sqlite3",
		source: source,
		client: h.client,
		host:   atlascloud.DefaultHost,
		print:  newPrinter(h.out, h.errOut),
		log:    logger.CLI(),
	}
	return h
}

func TestVisualizer_Success(t *testing.T) {
	h := newHarness(t, migration.NewDirLoader(sampleProject(t)))

	h.v.execute(context.Background())

	assert.Equal(t,
		"Here is a public link to your schema visualization: https://gh.atlasgo.cloud/explore/first_extID\n",
		h.out.String())
	assert.Empty(t, h.errOut.String())

	require.Len(t, h.client.calls, 3)
	assert.Equal(t, call{"ComputeSchema", []any{sampleSQL, driver.SQLite}}, h.client.calls[0])
	assert.Equal(t, call{"CreateVisualization", []any{"schema \"main\" {}", driver.SQLite}}, h.client.calls[1])
	assert.Equal(t, call{"ShareVisualization", []any{"first_extID"}}, h.client.calls[2])
}

func TestVisualizer_Failures(t *testing.T) {
	protocolErr := &atlascloud.ProtocolError{Detail: "not json"}

	tests := []struct {
		name       string
		engine     string
		source     func(t *testing.T) migration.GraphSource
		setup      func(f *fakeClient)
		wantOut    string
		wantDetail string
		wantOps    []string
	}{
		{
			name:       "unsupported driver",
			engine:     "django.db.backends.oracle",
			wantOut:    "failed to detect database driver\n",
			wantDetail: "error reading database driver: django.db.backends.oracle",
			wantOps:    []string{},
		},
		{
			name:       "missing driver",
			engine:     " ",
			wantOut:    "failed to detect database driver\n",
			wantDetail: "database engine is not configured",
			wantOps:    []string{},
		},
		{
			name: "no migrations",
			source: func(t *testing.T) migration.GraphSource {
				return migration.NewDirLoader(t.TempDir())
			},
			wantOut: "no migrations found\n",
			wantOps: []string{},
		},
		{
			name: "broken graph",
			source: func(t *testing.T) migration.GraphSource {
				root := t.TempDir()
				writeMigration(t, root, "blog", "0001_initial.sql", "-- depends_on: users/0001_initial\nCREATE TABLE posts (id int);\n")
				return migration.NewDirLoader(root)
			},
			wantOut:    "failed to load migrations\n",
			wantDetail: "nonexistent parent node users/0001_initial",
			wantOps:    []string{},
		},
		{
			name:       "compute protocol error",
			setup:      func(f *fakeClient) { f.computeErr = protocolErr },
			wantOut:    "failed to compute atlas schema\n",
			wantDetail: "Error in GraphQL query: not json",
			wantOps:    []string{"ComputeSchema"},
		},
		{
			name:    "compute without schema",
			setup:   func(f *fakeClient) { f.computeErr = atlascloud.ErrSchemaNotComputed },
			wantOut: "atlas schema was not created\n",
			wantOps: []string{"ComputeSchema"},
		},
		{
			name:       "visualize protocol error",
			setup:      func(f *fakeClient) { f.createErr = protocolErr },
			wantOut:    "failed to visualize schema\n",
			wantDetail: "Error in GraphQL query: not json",
			wantOps:    []string{"ComputeSchema", "CreateVisualization"},
		},
		{
			name:    "visualization not created",
			setup:   func(f *fakeClient) { f.createErr = atlascloud.ErrNotCreated },
			wantOut: "schema visualization was not created\n",
			wantOps: []string{"ComputeSchema", "CreateVisualization"},
		},
		{
			name:       "share transport error",
			setup:      func(f *fakeClient) { f.shareErr = errors.New("connection reset") },
			wantOut:    "failed to share visualization\n",
			wantDetail: "connection reset",
			wantOps:    []string{"ComputeSchema", "CreateVisualization", "ShareVisualization"},
		},
		{
			name:    "not shared",
			setup:   func(f *fakeClient) { f.shared = false },
			wantOut: "schema visualization was not shared\n",
			wantOps: []string{"ComputeSchema", "CreateVisualization", "ShareVisualization"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var source migration.GraphSource = migration.NewDirLoader(sampleProject(t))
			if tt.source != nil {
				source = tt.source(t)
			}

			h := newHarness(t, source)
			if tt.engine != "" {
				h.v.engine = tt.engine
			}
			if tt.setup != nil {
				tt.setup(h.client)
			}

			h.v.execute(context.Background())

			assert.Equal(t, tt.wantOut, h.out.String())
			if tt.wantDetail == "" {
				assert.Empty(t, h.errOut.String())
			} else {
				assert.Contains(t, h.errOut.String(), tt.wantDetail)
			}
			assert.Equal(t, tt.wantOps, h.client.ops())
		})
	}
}

func TestVisualizer_History(t *testing.T) {
	initial := migration.Key{App: "app1", Name: "0001_create_model_pricehistory"}

	t.Run("consistent", func(t *testing.T) {
		h := newHarness(t, migration.NewDirLoader(sampleProject(t)))
		h.v.applied = func(context.Context, driver.Driver) (map[migration.Key]bool, error) {
			return map[migration.Key]bool{initial: true}, nil
		}

		h.v.execute(context.Background())
		assert.Contains(t, h.out.String(), shareMessage)
	})

	t.Run("inconsistent", func(t *testing.T) {
		root := sampleProject(t)
		writeMigration(t, root, "app1", "0002_add_volume.sql", `ALTER TABLE "app1_pricehistory" ADD COLUMN "volume" integer;`+"\n")

		h := newHarness(t, migration.NewDirLoader(root))
		h.v.applied = func(context.Context, driver.Driver) (map[migration.Key]bool, error) {
			return map[migration.Key]bool{{App: "app1", Name: "0002_add_volume"}: true}, nil
		}

		h.v.execute(context.Background())
		assert.Equal(t, "inconsistent migration history\n", h.out.String())
		assert.Contains(t, h.errOut.String(), "is applied before its dependency app1/0001_create_model_pricehistory")
		assert.Empty(t, h.client.calls)
	})

	t.Run("database url missing", func(t *testing.T) {
		h := newHarness(t, migration.NewDirLoader(sampleProject(t)))
		h.v.applied = readApplied("", "schema_migrations")

		h.v.execute(context.Background())
		assert.Equal(t, "inconsistent migration history\n", h.out.String())
		assert.Contains(t, h.errOut.String(), errDatabaseURLMissing.Error())
	})
}

func TestVisualizer_Strict(t *testing.T) {
	h := newHarness(t, migration.NewDirLoader(sampleProject(t)))
	h.v.strict = true

	h.v.execute(context.Background())
	assert.Contains(t, h.out.String(), shareMessage, "strict mode does not affect renderable migrations")
}

func TestVisualizer_Skipped(t *testing.T) {
	h := newHarness(t, migration.Loaded(migration.NewGraph()))

	h.v.skipped(migration.New("app1", "0003_broken"), errors.New("unexpected token"))

	assert.Equal(t, "failed to get migration app1 0003_broken\n", h.out.String())
	assert.Equal(t, "unexpected token\n", h.errOut.String())
}

func TestStageError(t *testing.T) {
	err := &StageError{Stage: StageShare, Err: atlascloud.ErrNotShared}
	assert.True(t, err.Logical())
	assert.Equal(t, "schema visualization was not shared", err.Message())
	assert.ErrorIs(t, err, atlascloud.ErrNotShared)

	err = &StageError{Stage: StageCompute, Err: errors.New("boom")}
	assert.False(t, err.Logical())
	assert.Equal(t, "failed to compute atlas schema", err.Message())
	assert.Equal(t, "failed to compute atlas schema: boom", err.Error())
	assert.Equal(t, "compute", err.Stage.String())
}
