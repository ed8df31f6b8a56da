package hosting

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/zqily/FNote-v2/src/features/jobs"
	"github.com/zqily/FNote-v2/src/features/songs"
	"github.com/zqily/FNote-v2/src/infra/watcher"
)

const notificationBuffer = 100

// MediaScanner surfaces externally added audio files as import candidates.
type MediaScanner interface {
	ScanNewFiles(ctx context.Context, dir string) ([]songs.ImportCandidate, error)
}

// Notification is one entry in the buffer the UI polls: either a finished
// job or new files spotted in the media directory.
type Notification struct {
	Kind       string                  `json:"kind"`
	Job        *jobs.JobResult         `json:"job,omitempty"`
	Dir        string                  `json:"dir,omitempty"`
	Candidates []songs.ImportCandidate `json:"candidates,omitempty"`
}

// notifier drains job results and media events into a bounded buffer.
type notifier struct {
	scanner MediaScanner
	mu      sync.Mutex
	pending []Notification
}

func newNotifier(results <-chan jobs.JobResult, events <-chan watcher.MediaEvent, scanner MediaScanner) *notifier {
	n := &notifier{scanner: scanner}
	go n.drainLoop(results, events)
	return n
}

func (n *notifier) drainLoop(results <-chan jobs.JobResult, events <-chan watcher.MediaEvent) {
	for results != nil || events != nil {
		select {
		case result, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			slog.Info("Job finished", "jobID", result.JobID, "type", result.Type, "status", result.Status)
			n.push(Notification{Kind: "job", Job: &result})
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			n.handleMediaEvent(event)
		}
	}
}

func (n *notifier) handleMediaEvent(event watcher.MediaEvent) {
	candidates, err := n.scanner.ScanNewFiles(context.Background(), event.Dir)
	if err != nil {
		slog.Error("Could not scan media directory for new files", "dir", event.Dir, "error", err)
		return
	}
	if len(candidates) == 0 {
		return
	}
	slog.Info("New media files detected", "dir", event.Dir, "count", len(candidates))
	n.push(Notification{Kind: "media", Dir: event.Dir, Candidates: candidates})
}

func (n *notifier) push(notification Notification) {
	n.mu.Lock()
	n.pending = append(n.pending, notification)
	if len(n.pending) > notificationBuffer {
		n.pending = n.pending[len(n.pending)-notificationBuffer:]
	}
	n.mu.Unlock()
}

// Drain returns the buffered notifications and clears the buffer.
func (n *notifier) Drain(c *fiber.Ctx) error {
	n.mu.Lock()
	pending := n.pending
	n.pending = nil
	n.mu.Unlock()

	if pending == nil {
		pending = []Notification{}
	}
	return c.JSON(pending)
}
