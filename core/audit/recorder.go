package audit

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/terakoya-app/terakoya/core"
)

const writeTimeout = 5 * time.Second

// Recorder appends audit entries without holding up the caller's response.
// Callers invoke Record only after the triggering mutation's backend call
// reported success, so the log can never claim an action that did not
// happen. The reverse window (mutation committed, log write failed) is
// accepted: the failure goes to telemetry, never back into the response.
type Recorder struct {
	repo    Repository
	logger  core.Logger
	metrics Metrics

	wg sync.WaitGroup
}

func NewRecorder(repo Repository, logger core.Logger, metrics Metrics) *Recorder {
	return &Recorder{repo: repo, logger: logger, metrics: metrics}
}

// Record commits an entry in the background. It must not be awaited by the
// response path; the returned response is already determined by the
// mutation's own outcome.
func (rec *Recorder) Record(actorID string, action Action, targetTable, targetID string) {
	entry := NewEntry(actorID, action, targetTable, targetID)

	rec.wg.Add(1)
	go func() {
		defer rec.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		if err := rec.repo.AppendEntry(ctx, entry); err != nil {
			if rec.metrics != nil {
				rec.metrics.RecordAuditFailure(action)
			}
			rec.logger.Error("audit: entry write failed", errors.Wrap(err, "appending audit entry"), entry)
		}
	}()
}

// Wait blocks until all in-flight writes settle. Used by graceful shutdown
// and by tests.
func (rec *Recorder) Wait() {
	rec.wg.Wait()
}
