package api

import (
	"context"

	"github.com/ayusman/yanagihara/internal/app"
	"github.com/ayusman/yanagihara/internal/landmark"
	"github.com/ayusman/yanagihara/internal/scoring"
)

// Grader is the part of the application the handlers drive.
type Grader interface {
	Evaluate(ctx context.Context, id scoring.ID, side landmark.Side) (*app.Capture, error)
	Replay(ctx context.Context, id scoring.ID, side landmark.Side, rec landmark.Recording) (*app.Capture, error)
	Capture(id string) (*app.Capture, error)
	Snapshot(captureID, name string) ([]byte, error)

	StartSession() app.SessionView
	Session(id string) (app.SessionView, error)
	CaptureStep(ctx context.Context, id string, side landmark.Side) (app.SessionView, *app.Capture, error)
	NextStep(id string) (app.SessionView, error)
	RetryStep(id string) (app.SessionView, error)
	CancelSession(id string) error
}

var _ Grader = (*app.App)(nil)
