package health

import "context"

// FrameChecker runs the reference frame self-check.
type FrameChecker interface {
	Run(ctx context.Context) map[string]error
}
