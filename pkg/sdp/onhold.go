package sdp

import "time"

// OnHoldOptions shapes an update that places a request on hold.
type OnHoldOptions struct {
	// ResumeTime schedules the automatic status change back; nil places the
	// request on hold indefinitely.
	ResumeTime *time.Time

	// Comment travels inside onhold_scheduler.comments. The provider only
	// accepts scheduler comments alongside a scheduled time, so a comment
	// without ResumeTime is silently dropped.
	Comment string

	// ResumeStatus is the status the scheduler changes back to; empty
	// defaults to Open.
	ResumeStatus string
}

// BuildOnHoldUpdate builds the request update envelope for an on-hold
// transition. The resulting envelope always carries status.name "Onhold";
// it carries an onhold_scheduler only when a resume time is present.
func BuildOnHoldUpdate(opts OnHoldOptions) *RequestUpdate {
	update := &RequestUpdate{Status: NamedRef(StatusOnHold)}

	if opts.ResumeTime == nil {
		return update
	}

	resumeStatus := opts.ResumeStatus
	if resumeStatus == "" {
		resumeStatus = StatusOpenRequest
	}

	update.OnHoldScheduler = &OnHoldScheduler{
		ScheduledTime:  NewTime(*opts.ResumeTime),
		ChangeToStatus: NamedRef(resumeStatus),
		Comments:       opts.Comment,
	}

	return update
}
