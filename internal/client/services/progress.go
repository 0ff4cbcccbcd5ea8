package services

import (
	"sync"

	"github.com/dmitrijs2005/sealstream/internal/client/models"
)

// ProgressUpdate is one progress notification for a job.
type ProgressUpdate struct {
	JobID   string
	Phase   models.Phase
	Percent int
}

// ProgressSink receives pipeline progress. Implementations must be safe for
// concurrent use and must never block the pipeline.
type ProgressSink interface {
	Publish(update ProgressUpdate)
}

// NopSink discards updates.
type NopSink struct{}

func (NopSink) Publish(ProgressUpdate) {}

// ChannelSink delivers updates over a buffered channel. Duplicate
// percentages for the same job are dropped, and so are updates that would
// block on a full channel: progress is advisory, the journal is the record.
type ChannelSink struct {
	mu   sync.Mutex
	last map[string]int
	ch   chan ProgressUpdate
}

// NewChannelSink creates a sink with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{
		last: make(map[string]int),
		ch:   make(chan ProgressUpdate, buffer),
	}
}

// Updates returns the receive side of the sink.
func (s *ChannelSink) Updates() <-chan ProgressUpdate {
	return s.ch
}

func (s *ChannelSink) Publish(u ProgressUpdate) {
	s.mu.Lock()
	if prev, ok := s.last[u.JobID]; ok && prev == u.Percent {
		s.mu.Unlock()
		return
	}
	s.last[u.JobID] = u.Percent
	s.mu.Unlock()

	select {
	case s.ch <- u:
	default:
	}
}

// Forget releases bookkeeping for a finished job.
func (s *ChannelSink) Forget(jobID string) {
	s.mu.Lock()
	delete(s.last, jobID)
	s.mu.Unlock()
}
