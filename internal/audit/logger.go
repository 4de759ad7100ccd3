// Sequanix - Laboratory Information Management for Sequencing Facilities
// Copyright 2026 Sequanix Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sequanix/sequanix

package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sequanix/sequanix/internal/logging"
)

// Config holds configuration for the audit logger.
type Config struct {
	// Enabled controls whether audit logging is active.
	Enabled bool `json:"enabled"`

	// BufferSize is the size of the async write buffer. Events are dropped
	// (with a warning) when the buffer is full.
	BufferSize int `json:"buffer_size"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled:    true,
		BufferSize: 1000,
	}
}

// Logger records audit events asynchronously.
type Logger struct {
	config    *Config
	store     Store
	eventChan chan *Event
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewLogger creates a new audit logger and starts its writer.
func NewLogger(store Store, config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}

	l := &Logger{
		config:    config,
		store:     store,
		eventChan: make(chan *Event, config.BufferSize),
		stopChan:  make(chan struct{}),
	}

	l.wg.Add(1)
	go l.asyncWriter()

	return l
}

// Close stops the writer after draining buffered events.
func (l *Logger) Close() {
	l.stopOnce.Do(func() {
		close(l.stopChan)
	})
	l.wg.Wait()
}

// asyncWriter persists events from the buffer.
func (l *Logger) asyncWriter() {
	defer l.wg.Done()

	for {
		select {
		case <-l.stopChan:
			for {
				select {
				case event := <-l.eventChan:
					l.writeEvent(event)
				default:
					return
				}
			}
		case event := <-l.eventChan:
			l.writeEvent(event)
		}
	}
}

// writeEvent persists a single event to the store.
func (l *Logger) writeEvent(event *Event) {
	if l.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := l.store.Save(ctx, event); err != nil {
		logging.Error().Err(err).Str("type", string(event.Type)).Msg("save audit event")
	}
}

// Log records an audit event. Missing id and timestamp are filled in.
// Non-blocking: the event is dropped with a warning when the buffer is full.
func (l *Logger) Log(event *Event) {
	if l == nil || !l.config.Enabled || event == nil {
		return
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Severity == "" {
		event.Severity = SeverityInfo
	}

	select {
	case l.eventChan <- event:
	default:
		logging.Warn().Str("type", string(event.Type)).Msg("audit buffer full, event dropped")
	}
}
