package app

import (
	"time"

	"github.com/ayusman/yanagihara/internal/capture"
	"github.com/ayusman/yanagihara/internal/landmark"
)

// Preview is one frame of the live preview shown between captures.
type Preview struct {
	Timestamp int64           `json:"timestamp"`
	Faces     int             `json:"faces"`
	Face      *landmark.Frame `json:"face,omitempty"`
	Still     bool            `json:"still"`
	Changed   float64         `json:"changed"`
	Busy      bool            `json:"busy"`
}

// watcherBuffer is how many previews a slow watcher may lag behind before
// frames are dropped for it.
const watcherBuffer = 4

// runPreview reads the camera at the preview rate, detects the face and
// publishes the result to every watcher. Frames are skipped while a
// capture owns the camera.
func (a *App) runPreview(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if a.Busy() {
				continue
			}
			a.previewOnce()
		}
	}
}

func (a *App) previewOnce() {
	img, err := a.camera.ReadFrame()
	if err != nil {
		a.log.WithError(err).Debug("preview read failed")
		return
	}
	defer img.Close()

	p := Preview{Timestamp: time.Now().UnixMilli()}
	p.Still, p.Changed = a.still.Measure(img)

	if a.detector != nil {
		faces, err := a.detector.Detect(img)
		if err != nil {
			a.log.WithError(err).Debug("preview detection failed")
		}
		p.Faces = len(faces)
		if len(faces) > 0 {
			face := faces[0]
			p.Face = &face
		}
	}

	jpeg, err := capture.EncodeJPEG(*img)
	if err != nil {
		a.log.WithError(err).Debug("preview encode failed")
	}
	a.publish(p, jpeg)
}

// publish stores p as the latest preview and offers it to every watcher
// without blocking.
func (a *App) publish(p Preview, jpeg []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.preview = p
	if jpeg != nil {
		a.frame = jpeg
	}
	for ch := range a.watchers {
		select {
		case ch <- p:
		default:
		}
	}
}

// LatestPreview returns the most recent preview.
func (a *App) LatestPreview() Preview {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p := a.preview
	p.Busy = a.Busy()
	return p
}

// LatestFrame returns the most recent preview image as JPEG, or nil.
func (a *App) LatestFrame() []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.frame
}

// Watch subscribes to previews. The channel is closed by the returned
// cancel function or when the App stops.
func (a *App) Watch() (<-chan Preview, func()) {
	ch := make(chan Preview, watcherBuffer)

	a.mu.Lock()
	a.watchers[ch] = struct{}{}
	a.mu.Unlock()

	cancel := func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if _, ok := a.watchers[ch]; ok {
			delete(a.watchers, ch)
			close(ch)
		}
	}
	return ch, cancel
}
