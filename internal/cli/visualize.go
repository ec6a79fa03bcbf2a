package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/eleven-am/schemaviz/internal/atlascloud"
	"github.com/eleven-am/schemaviz/internal/driver"
	"github.com/eleven-am/schemaviz/internal/history"
	"github.com/eleven-am/schemaviz/internal/logger"
	"github.com/eleven-am/schemaviz/internal/migration"
	"github.com/eleven-am/schemaviz/pkg/schemaviz"
)

const shareMessage = "Here is a public link to your schema visualization: "

var errDatabaseURLMissing = errors.New("database url is not configured")

// schemaClient is the subset of the Atlas Cloud API used by visualize.
type schemaClient interface {
	ComputeSchema(ctx context.Context, sql string, d driver.Driver) (string, error)
	CreateVisualization(ctx context.Context, schema string, d driver.Driver) (string, error)
	ShareVisualization(ctx context.Context, extID string) (bool, error)
}

// appliedFunc returns the migrations recorded as applied in the database.
type appliedFunc func(ctx context.Context, d driver.Driver) (map[migration.Key]bool, error)

// visualizer runs driver detection, migration collection and the three
// Atlas Cloud calls in order, stopping at the first failing stage.
type visualizer struct {
	engine  string
	source  migration.GraphSource
	client  schemaClient
	host    string
	strict  bool
	applied appliedFunc
	print   *printer
	log     logger.Logger
}

func newVisualizeCommand() *cobra.Command {
	var (
		strict       bool
		checkHistory bool
	)

	cmd := &cobra.Command{
		Use:   "visualize",
		Short: "Publish a visualization of the migrated schema",
		Long: `Collect the SQL of every migration in dependency order, let Atlas Cloud
compute the resulting schema, create a visualization of it and share it.
Prints a public link on success.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			v := newVisualizer(cmd, config, strict)
			if checkHistory {
				v.applied = readApplied(config.Database.URL, config.Database.HistoryTable)
			}
			v.execute(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "abort when a migration cannot be rendered instead of skipping it")
	cmd.Flags().BoolVar(&checkHistory, "check-history", false, "verify the applied migration history of the configured database first")

	return cmd
}

func newVisualizer(cmd *cobra.Command, cfg *Config, strict bool) *visualizer {
	client := atlascloud.New(atlascloud.APIEndpoint(cfg.Atlas.Host),
		atlascloud.WithUserAgent(schemaviz.UserAgent()),
		atlascloud.WithTimeout(cfg.Atlas.Timeout))

	return &visualizer{
		engine: cfg.Database.Engine,
		source: migration.NewDirLoader(cfg.Migrations.Directory),
		client: client,
		host:   cfg.Atlas.Host,
		strict: strict,
		print:  newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		log:    logger.CLI(),
	}
}

func readApplied(url, table string) appliedFunc {
	return func(ctx context.Context, d driver.Driver) (map[migration.Key]bool, error) {
		if url == "" {
			return nil, errDatabaseURLMissing
		}
		reader, err := history.Open(ctx, d, url, table)
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		return reader.Applied(ctx)
	}
}

// execute runs the pipeline and prints its outcome.
func (v *visualizer) execute(ctx context.Context) {
	link, err := v.run(ctx)
	if err != nil {
		v.fail(err)
		return
	}
	v.print.Success(shareMessage + link)
}

func (v *visualizer) fail(err error) {
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		stageErr = &StageError{Stage: StageCollect, Err: err}
	}

	v.log.Debug("Visualization failed", "stage", stageErr.Stage.String(), "error", stageErr.Err)
	v.print.Failure(stageErr.Message())
	if !stageErr.Logical() {
		v.print.Detail(stageErr.Err)
	}
}

func (v *visualizer) run(ctx context.Context) (string, error) {
	d, doc, err := v.collect(ctx)
	if err != nil {
		return "", err
	}

	schema, err := v.client.ComputeSchema(ctx, doc, d)
	if err != nil {
		return "", &StageError{Stage: StageCompute, Err: err}
	}

	extID, err := v.client.CreateVisualization(ctx, schema, d)
	if err != nil {
		return "", &StageError{Stage: StageVisualize, Err: err}
	}

	shared, err := v.client.ShareVisualization(ctx, extID)
	if err != nil {
		return "", &StageError{Stage: StageShare, Err: err}
	}
	if !shared {
		return "", &StageError{Stage: StageShare, Err: atlascloud.ErrNotShared}
	}

	v.log.Info("Visualization shared", "ext_id", extID)
	return atlascloud.ShareURL(v.host, extID), nil
}

// collect detects the driver and assembles the SQL document. An empty
// document is reported as migration.ErrNoMigrations.
func (v *visualizer) collect(ctx context.Context) (driver.Driver, string, error) {
	d, err := driver.Detect(v.engine)
	if err != nil {
		return driver.Unknown, "", &StageError{Stage: StageDriver, Err: err}
	}

	g, err := v.source.Graph()
	if err != nil {
		return d, "", &StageError{Stage: StageCollect, Err: err}
	}

	if v.applied != nil {
		applied, err := v.applied(ctx, d)
		if err == nil {
			err = migration.CheckConsistentHistory(g, applied)
		}
		if err != nil {
			return d, "", &StageError{Stage: StageHistory, Err: err}
		}
	}

	collector := migration.NewCollector(migration.Loaded(g), migration.SQLRenderer{Driver: d},
		migration.WithStrict(v.strict),
		migration.WithFailureReporter(v.skipped))

	doc, err := collector.Collect(ctx)
	if err != nil {
		return d, "", &StageError{Stage: StageCollect, Err: err}
	}
	if doc == "" {
		return d, "", &StageError{Stage: StageCollect, Err: migration.ErrNoMigrations}
	}

	return d, doc, nil
}

func (v *visualizer) skipped(m *migration.Migration, err error) {
	v.print.Failure("failed to get migration " + m.App + " " + m.Name)
	v.print.Detail(err)
}
