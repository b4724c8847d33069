package driver

import (
	"context"

	"golang.org/x/sync/errgroup"

	"cbrace/internal/diag"
)

// runBatch применяет fn к каждому файлу. При jobs <= 1 файлы обрабатываются
// по порядку; иначе через errgroup с ограничением параллелизма.
// Результаты всегда возвращаются в порядке files.
func runBatch(ctx context.Context, files []string, opts FormatOptions, fn func(context.Context, string) FormatResult) ([]FormatResult, error) {
	results := make([]FormatResult, len(files))
	for _, path := range files {
		emit(opts.Progress, Event{File: path, Status: StatusQueued})
	}

	if opts.Jobs <= 1 {
		for i, path := range files {
			if err := ctx.Err(); err != nil {
				cancelRest(results[i:], files[i:], err)
				return results, err
			}
			results[i] = fn(ctx, path)
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(opts.Jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			// Проверка отмены
			if err := gctx.Err(); err != nil {
				results[i] = canceledResult(path, err)
				return nil
			}
			// мьютекс не нужен — индекс i уникален
			results[i] = fn(gctx, path)
			return nil
		})
	}
	_ = g.Wait()
	return results, ctx.Err()
}

func cancelRest(results []FormatResult, files []string, err error) {
	for i, path := range files {
		results[i] = canceledResult(path, err)
	}
}

func canceledResult(path string, err error) FormatResult {
	return FormatResult{Path: path, Err: err, Kind: Classify(err), Bag: diag.NewBag(1)}
}
