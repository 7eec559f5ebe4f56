package events

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/username/calendar-pager/pkg/dateutil"
)

// Composite merges the marks of several sources in order. A failing
// source is logged and skipped; the month fails only when every source
// failed.
type Composite struct {
	sources []Source
	logger  *zap.Logger
}

// NewComposite creates a Composite over sources.
func NewComposite(sources []Source, logger *zap.Logger) *Composite {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composite{
		sources: sources,
		logger:  logger,
	}
}

// MarksIn implements Source.
func (c *Composite) MarksIn(month dateutil.Month) ([]Mark, error) {
	var (
		marks   []Mark
		found   bool
		lastErr error
	)
	for i, src := range c.sources {
		got, err := src.MarksIn(month)
		switch {
		case errors.Is(err, ErrNotFound):
			continue
		case err != nil:
			c.logger.Warn("Mark source failed, skipping",
				zap.Int("source", i),
				zap.String("month", month.String()),
				zap.Error(err))
			lastErr = err
			continue
		}
		found = true
		marks = append(marks, got...)
	}

	if found {
		return marks, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("all mark sources failed: %w", lastErr)
	}
	return nil, fmt.Errorf("no source has %s: %w", month, ErrNotFound)
}
