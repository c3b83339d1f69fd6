package export

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/woxer/ueport/report"
)

// Job is one deferred asset-processing step.
type Job struct {
	ID      string
	AssetID string
	Message string
	Run     func(ctx context.Context) error
}

// Queue batches jobs during asset collection and drains them in order
// afterwards. Not safe for concurrent use; everything runs on the
// caller's goroutine.
type Queue struct {
	jobs []*Job
}

// Push appends a job and returns it.
func (q *Queue) Push(assetID, message string, run func(ctx context.Context) error) *Job {
	job := &Job{
		ID:      uuid.NewString(),
		AssetID: assetID,
		Message: message,
		Run:     run,
	}
	q.jobs = append(q.jobs, job)
	return job
}

// Len is the number of queued jobs.
func (q *Queue) Len() int {
	return len(q.jobs)
}

// Drain runs the queued jobs in push order, reporting progress per
// job. The first failing job stops the drain; the remaining jobs stay
// queued.
func (q *Queue) Drain(ctx context.Context) error {
	total := len(q.jobs)
	for len(q.jobs) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		job := q.jobs[0]
		report.Progress(float32(total-len(q.jobs))/float32(total), "%v", job.Message)
		if err := job.Run(ctx); err != nil {
			return errors.Wrapf(err, "Job %q failed", job.Message)
		}
		q.jobs = q.jobs[1:]
	}
	report.Progress(1, "Done")
	return nil
}
