// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"sync/atomic"

	"ringviz/internal/log"
)

// LoggingTransport writes every Nth message to the debug log as JSON.
type LoggingTransport struct {
	every uint64
	count atomic.Uint64
}

// NewLoggingTransport logs one message in every. Values below 1 log all.
func NewLoggingTransport(every int) *LoggingTransport {
	if every < 1 {
		every = 1
	}
	log.Infof("Transport: Using LoggingTransport (every %d frames)", every)
	return &LoggingTransport{every: uint64(every)}
}

func (lt *LoggingTransport) Send(data any) error {
	n := lt.count.Add(1)
	if (n-1)%lt.every != 0 {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		log.Debugf("Transport: %T %+v", data, data)
		return nil
	}
	log.Debugf("Transport: %s", b)
	return nil
}

// Sent returns the number of messages received, logged or not.
func (lt *LoggingTransport) Sent() uint64 {
	return lt.count.Load()
}

func (lt *LoggingTransport) Close() error {
	log.Debugf("Transport: LoggingTransport closed after %d messages", lt.count.Load())
	return nil
}

var _ Transport = (*LoggingTransport)(nil)
