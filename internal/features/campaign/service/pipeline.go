package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// errHalt ends a pipeline early without failing it.
var errHalt = errors.New("pipeline halted")

// stage is one step of a sequential write. Later stages read what earlier
// ones stored in the shared state captured by their closures.
type stage struct {
	name string
	run  func(ctx context.Context) error
}

// runPipeline executes stages in order and stops at the first failure. No
// stage after the failing one is invoked.
func runPipeline(ctx context.Context, logger zerolog.Logger, operation string, stages ...stage) error {
	started := time.Now()
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			logger.Warn().Err(err).Str("operation", operation).Str("stage", s.name).Msg("pipeline canceled")
			return err
		}
		err := s.run(ctx)
		if errors.Is(err, errHalt) {
			logger.Debug().Str("operation", operation).Str("stage", s.name).Msg("pipeline halted")
			return nil
		}
		if err != nil {
			logger.Warn().Err(err).Str("operation", operation).Str("stage", s.name).Msg("pipeline aborted")
			return err
		}
	}
	logger.Debug().
		Str("operation", operation).
		Dur("latency", time.Since(started)).
		Msg("pipeline completed")
	return nil
}
