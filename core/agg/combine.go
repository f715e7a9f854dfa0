package agg

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/githours/internal/contract"
	"github.com/huangsam/githours/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/huangsam/githours/core/agg"

// CombineOptions controls multi-repository retrieval.
type CombineOptions struct {
	Branches []string
	Location *time.Location
	IsMerge  MergePredicate
	Workers  int // Concurrent fetches; values below 1 mean 1
}

// Combine retrieves and normalizes commits from every repository and
// concatenates them in input order. The same commit appearing in two
// repositories is kept twice. The first retrieval error aborts the run and
// no partial stream is returned.
func Combine(ctx context.Context, provider contract.CommitProvider, repos []string, opts CombineOptions) ([]schema.CommitRecord, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "agg.Combine")
	defer span.End()
	span.SetAttributes(attribute.Int("repos", len(repos)), attribute.String("provider", provider.Name()))

	workers := max(opts.Workers, 1)
	perRepo := make([][]schema.CommitRecord, len(repos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, repo := range repos {
		g.Go(func() error {
			// A failed sibling cancels gctx; queued repositories stop here
			if err := gctx.Err(); err != nil {
				return err
			}
			records, err := fetchRepo(gctx, provider, repo, opts)
			if err != nil {
				return err
			}
			perRepo[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	total := 0
	for _, records := range perRepo {
		total += len(records)
	}
	combined := make([]schema.CommitRecord, 0, total)
	for _, records := range perRepo {
		combined = append(combined, records...)
	}
	span.SetAttributes(attribute.Int("commits", len(combined)))
	return combined, nil
}

// fetchRepo retrieves and normalizes a single repository.
func fetchRepo(ctx context.Context, provider contract.CommitProvider, repo string, opts CombineOptions) ([]schema.CommitRecord, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "agg.fetchRepo")
	defer span.End()
	span.SetAttributes(attribute.String("repo", repo))

	started := time.Now()
	raws, err := provider.ListCommits(ctx, repo, opts.Branches)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("repository %q: %w", repo, err)
	}
	records := Normalize(raws, NormalizeOptions{
		Location: opts.Location,
		IsMerge:  opts.IsMerge,
		Branches: opts.Branches,
		Repo:     repo,
	})

	contract.Logger().Debug("fetched repository",
		zap.String("repo", repo),
		zap.Int("raw", len(raws)),
		zap.Int("kept", len(records)),
		zap.Duration("took", time.Since(started)))
	span.SetAttributes(attribute.Int("commits", len(records)))
	return records, nil
}
