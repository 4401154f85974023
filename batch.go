package alphafix

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Locate pairs every regular file under originalRoot with the same relative
// path under upscaledRoot and outputRoot. When maskRoot is not empty each
// task also gets a mask dump path. Tasks come back in lexical order.
func Locate(originalRoot, upscaledRoot, outputRoot, maskRoot string) ([]Task, error) {
	var tasks []Task
	err := filepath.WalkDir(originalRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(originalRoot, path)
		if err != nil {
			return err
		}
		t := Task{
			Original: path,
			Upscaled: filepath.Join(upscaledRoot, rel),
			Output:   filepath.Join(outputRoot, rel),
		}
		if maskRoot != "" {
			t.Mask = filepath.Join(maskRoot, rel) + ".png"
		}
		tasks = append(tasks, t)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return tasks, nil
}

type Report struct {
	Copied   int
	Repaired int
}

// Run processes tasks on up to cfg.Workers goroutines. The first failure
// stops further submission and is returned as a *TaskError; tasks already
// running are allowed to finish.
func Run(ctx context.Context, tasks []Task, cfg Config) (Report, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))

	var copied, repaired atomic.Int64
	for _, t := range tasks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			outcome, err := Process(t, cfg)
			if err != nil {
				return &TaskError{Task: t, Err: err}
			}
			if outcome == OutcomeRepaired {
				repaired.Add(1)
			} else {
				copied.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return Report{Copied: int(copied.Load()), Repaired: int(repaired.Load())}, err
}
