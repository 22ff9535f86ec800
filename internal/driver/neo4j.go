package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/agenthands/companion/internal/config"
	"github.com/agenthands/companion/internal/metrics"
)

type Neo4jDriver struct {
	Driver   neo4j.DriverWithContext
	database string
	timeout  time.Duration
	breaker  *gobreaker.CircuitBreaker[*neo4j.EagerResult]
	logger   zerolog.Logger
}

func NewNeo4jDriver(ctx context.Context, cfg config.GraphConfig, logger zerolog.Logger) (*Neo4jDriver, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating graph driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("connecting to graph store at %s: %w", cfg.URI, err)
	}

	d := &Neo4jDriver{
		Driver:   driver,
		database: cfg.Database,
		timeout:  cfg.QueryTimeout.Duration,
		logger:   logger,
	}
	d.breaker = gobreaker.NewCircuitBreaker[*neo4j.EagerResult](gobreaker.Settings{
		Name:    "graph-store",
		Timeout: cfg.BreakerTimeout.Duration,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("graph store circuit breaker changed state")
		},
	})

	logger.Info().Str("uri", cfg.URI).Msg("connected to graph store")
	return d, nil
}

func (d *Neo4jDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

// ExecuteQuery runs one query under the configured timeout. Failures are
// returned as-is (wrapped); nothing here retries.
func (d *Neo4jDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	var opts []neo4j.ExecuteQueryConfigurationOption
	if d.database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(d.database))
	}

	result, err := d.breaker.Execute(func() (*neo4j.EagerResult, error) {
		return neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer, opts...)
	})
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

func (d *Neo4jDriver) BuildIndices(ctx context.Context) error {
	for _, q := range ConstraintQueries {
		start := time.Now()
		_, err := d.ExecuteQuery(ctx, q, nil)
		metrics.ObserveGraphQuery("build_indices", start, err)
		if err != nil {
			// Continue: the constraint usually exists already.
			d.logger.Warn().Err(err).Str("query", q).Msg("failed to create constraint")
		}
	}
	return nil
}
