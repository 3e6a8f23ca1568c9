package grid

import (
	"time"

	"go.uber.org/zap"
)

// Coordinator moves focus to a cell and scrolls it into view
type Coordinator struct {
	host   Host
	settle time.Duration
	log    *zap.Logger
}

// NewCoordinator creates a coordinator. settle delays the first focus attempt.
func NewCoordinator(host Host, settle time.Duration, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{host: host, settle: settle, log: log}
}

// Focus returns the deferred work that focuses target. Nothing happens until the host runs it.
func (c *Coordinator) Focus(target CellRef) []Deferred {
	return []Deferred{{
		Delay: c.settle,
		Run:   func() []Deferred { return c.focusAndScroll(target) },
	}}
}

func (c *Coordinator) focusAndScroll(target CellRef) []Deferred {
	if err := c.host.SetFocus(target.RowID, target.Field); err != nil {
		c.log.Debug("focus failed, retrying once",
			zap.String("row", target.RowID), zap.String("field", target.Field), zap.Error(err))
		return c.retry(target)
	}

	el, err := c.host.CellElement(target.RowID, target.Field)
	if err != nil || el == nil {
		c.log.Debug("cell element unavailable, retrying focus once",
			zap.String("row", target.RowID), zap.String("field", target.Field), zap.Error(err))
		return c.retry(target)
	}
	el.ScrollIntoView(AlignNearest, AlignNearest)
	return nil
}

// retry is focus only, no scroll, and never schedules again.
func (c *Coordinator) retry(target CellRef) []Deferred {
	return []Deferred{{
		Delay: c.settle,
		Run: func() []Deferred {
			if err := c.host.SetFocus(target.RowID, target.Field); err != nil {
				c.log.Debug("focus retry failed, giving up",
					zap.String("row", target.RowID), zap.String("field", target.Field), zap.Error(err))
			}
			return nil
		},
	}}
}
