package driver

import "time"

// Status captures the progress state of one file.
type Status string

const (
	// StatusQueued indicates the file is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is being formatted.
	StatusWorking Status = "formatting"
	// StatusUnchanged indicates the file was already formatted.
	StatusUnchanged Status = "unchanged"
	// StatusChanged indicates the file was (or would be) reformatted.
	StatusChanged Status = "reformatted"
	// StatusError indicates the file could not be processed.
	StatusError Status = "error"
)

// Done reports whether s is a terminal status.
func (s Status) Done() bool {
	return s == StatusUnchanged || s == StatusChanged || s == StatusError
}

// Event reports progress for a file.
type Event struct {
	File    string
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent may be called from several
// goroutines at once.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

// OnEvent sends evt to the channel; a nil channel drops it.
func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, evt Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(evt)
}
