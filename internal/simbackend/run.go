package simbackend

import (
	"context"
	"time"
)

// Run steps the simulator every interval until ctx is cancelled.
func (s *Simulator) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if done := s.Step(now); done > 0 {
				s.logger.Debug("step", "activities", done)
			}
		}
	}
}
