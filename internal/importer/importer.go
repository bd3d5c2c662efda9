package importer

import (
	"context"
	"log/slog"
	"time"

	"tastebase/internal/cache"
	"tastebase/internal/database"
	"tastebase/internal/middleware"
	"tastebase/internal/models"
	"tastebase/internal/observability"
	"tastebase/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// Importer runs one bulk import: ensure schema, then clear, normalize, load,
// and sweep aggregates inside a single transaction. Either the whole dataset
// replaces the prior state or nothing changes.
type Importer struct {
	db         *gorm.DB
	normalizer *Normalizer
	loader     *Loader
	logger     *slog.Logger
	traces     *observability.TraceLayer
}

// NewImporter creates an importer writing chunks of at most batchSize rows.
func NewImporter(db *gorm.DB, batchSize int) *Importer {
	return &Importer{
		db:         db,
		normalizer: NewNormalizer(middleware.Logger),
		loader:     NewLoader(batchSize),
		logger:     middleware.Logger,
		traces:     observability.GetTraceLayer(),
	}
}

// stage runs fn under its own import-stage span.
func (im *Importer) stage(ctx context.Context, name string, fn func() error) error {
	stageCtx, span := im.traces.TraceImportStage(ctx, name)
	defer span.End()
	if err := fn(); err != nil {
		observability.RecordErrorInContext(stageCtx, err)
		return err
	}
	return nil
}

// Run ingests the three raw collections. Schema provisioning happens outside
// the transaction since DDL is not transactional on every backend; everything
// destructive or additive is inside it.
func (im *Importer) Run(ctx context.Context, users []RawUserRecord, recipes []RawRecipeRecord, reviews []RawReviewRecord) error {
	span, ctx := observability.NewSpan(ctx, "importer.Run")
	defer span.End()
	span.AddAttributes(
		attribute.Int("import.input_users", len(users)),
		attribute.Int("import.input_recipes", len(recipes)),
		attribute.Int("import.input_reviews", len(reviews)),
	)

	start := time.Now()

	if err := database.EnsureSchema(im.db); err != nil {
		span.SetError(err)
		return models.NewUnavailableError(err)
	}

	err := im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := im.stage(ctx, "clear", func() error {
			return im.loader.Clear(tx)
		}); err != nil {
			return err
		}

		var rows *RowSet
		if err := im.stage(ctx, "normalize", func() error {
			rows = im.normalizer.Normalize(users, recipes, reviews)
			return nil
		}); err != nil {
			return err
		}

		if err := im.stage(ctx, "load", func() error {
			return im.loader.Load(tx, rows)
		}); err != nil {
			return err
		}

		return im.stage(ctx, "sweep", func() error {
			return im.sweepAggregates(tx)
		})
	})
	if err != nil {
		span.SetError(err)
		return err
	}

	// The dataset was replaced wholesale; every cached view is stale.
	cache.FlushAll(ctx)

	im.logger.InfoContext(ctx, "bulk import completed",
		slog.Int("input_users", len(users)),
		slog.Int("input_recipes", len(recipes)),
		slog.Int("input_reviews", len(reviews)),
		slog.Duration("elapsed", time.Since(start)),
		slog.String("trace_id", span.TraceID()),
	)
	return nil
}

// sweepAggregates recomputes the derived fields for every recipe that has at
// least one review, inside the import transaction.
func (im *Importer) sweepAggregates(tx *gorm.DB) error {
	var recipeIDs []int64
	if err := tx.Model(&models.Review{}).
		Distinct("recipe_id").
		Pluck("recipe_id", &recipeIDs).Error; err != nil {
		return models.NewUnavailableError(err)
	}

	for _, id := range recipeIDs {
		if _, err := repository.RecomputeTx(tx, id); err != nil {
			return err
		}
		middleware.AggregateRecomputes.WithLabelValues("import_sweep").Inc()
	}
	return nil
}
