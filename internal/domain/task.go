package domain

import "context"

// TaskKind names an asynchronous task.
type TaskKind string

const (
	TaskSendConfirmationEmail TaskKind = "send_confirmation_email"
	TaskSetFeaturedSpeaker    TaskKind = "set_featured_speaker"
	TaskRefreshAnnouncement   TaskKind = "refresh_announcement"
)

// Task parameter names.
const (
	TaskParamEmail          = "email"
	TaskParamConferenceInfo = "conferenceInfo"
	TaskParamSpeaker        = "speaker"
	TaskParamSessionNames   = "sessionNames"
)

// TaskQueue accepts fire-and-forget work. Submit never blocks and reports no result;
// tasks that cannot be queued or that fail are logged by the queue.
type TaskQueue interface {
	Submit(kind TaskKind, params map[string]string)
}

// TaskHandler processes one task.
type TaskHandler func(ctx context.Context, params map[string]string) error
