// SPDX-License-Identifier: MIT
/*
Package transport publishes per-frame engine statistics to observers outside
the process. Every Send is non-blocking: a slow or absent observer never
stalls the frame tick.
*/
package transport

import "errors"

// Transport defines a generic interface for sending frame statistics.
// Implementations must be safe for concurrent use and must not block in Send.
type Transport interface {
	Send(data any) error
	Close() error
}

// Multi fans one Send out to several transports.
type Multi []Transport

func (m Multi) Send(data any) error {
	var errs []error
	for _, t := range m {
		if err := t.Send(data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every transport, reporting all failures.
func (m Multi) Close() error {
	var errs []error
	for _, t := range m {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Transport = Multi(nil)
