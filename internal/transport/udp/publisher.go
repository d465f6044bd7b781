// SPDX-License-Identifier: MIT
package udp

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"time"

	"ringviz/internal/band"
	"ringviz/internal/engine"
	"ringviz/internal/log"
)

const (
	headerSize = 4 + 8 + 8 + 1 + 2 + 1
	PacketSize = headerSize + band.Count*4

	defaultInterval = 33 * time.Millisecond
)

// StatsProvider is the engine side of the publisher.
type StatsProvider interface {
	Stats() engine.FrameStats
}

// PacketSender transmits one datagram.
type PacketSender interface {
	Send(packet []byte) error
}

/*
Publisher periodically packs the latest frame statistics and sends them as
one datagram. Packet layout (BigEndian):

	+-----------------+---------+------+----------------------------------+
	| Field           | Type    | Size | Description                      |
	+-----------------+---------+------+----------------------------------+
	| Sequence        | uint32  | 4    | Monotonically increasing         |
	| Timestamp       | int64   | 8    | Nanoseconds since epoch          |
	| Frame           | uint64  | 8    | Engine frame counter             |
	| Dominant        | uint8   | 1    | Band ID of the dominant band     |
	| Rings           | uint16  | 2    | Live ring count (saturating)     |
	| Band count      | uint8   | 1    | Number of energies that follow   |
	| Energies        | float32 | N*4  | Raw energies in canonical order  |
	+-----------------+---------+------+----------------------------------+
*/
type Publisher struct {
	sender   PacketSender
	stats    StatsProvider
	interval time.Duration
	now      func() time.Time

	sequence uint32
	packet   []byte // reused across sends
}

// NewPublisher builds a publisher. An interval <= 0 falls back to ~30Hz.
func NewPublisher(interval time.Duration, sender PacketSender, stats StatsProvider) (*Publisher, error) {
	if sender == nil {
		return nil, errors.New("udp: sender cannot be nil")
	}
	if stats == nil {
		return nil, errors.New("udp: stats provider cannot be nil")
	}
	if interval <= 0 {
		log.Warnf("UDP: Invalid interval %v, defaulting to %v", interval, defaultInterval)
		interval = defaultInterval
	}
	return &Publisher{
		sender:   sender,
		stats:    stats,
		interval: interval,
		now:      time.Now,
		packet:   make([]byte, 0, PacketSize),
	}, nil
}

// Run publishes on every interval until ctx is cancelled. Send failures are
// logged and never end the loop.
func (p *Publisher) Run(ctx context.Context) error {
	log.Infof("UDP: Publisher started (Interval: %v)", p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Infof("UDP: Publisher stopped after %d packets", p.sequence)
			return nil
		case <-ticker.C:
			if err := p.Publish(); err != nil {
				log.Debugf("UDP: %v", err)
			}
		}
	}
}

// Publish packs and sends the current statistics once.
func (p *Publisher) Publish() error {
	p.sequence++
	p.packet = Pack(p.packet[:0], p.sequence, p.now(), p.stats.Stats())
	return p.sender.Send(p.packet)
}

// Close closes the sender when it can be closed.
func (p *Publisher) Close() error {
	if c, ok := p.sender.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Pack appends one packet for stats to dst.
func Pack(dst []byte, sequence uint32, ts time.Time, stats engine.FrameStats) []byte {
	dominant, err := band.Parse(stats.Dominant)
	if err != nil {
		dominant = band.Bass
	}
	rings := min(stats.Rings, math.MaxUint16)

	dst = binary.BigEndian.AppendUint32(dst, sequence)
	dst = binary.BigEndian.AppendUint64(dst, uint64(ts.UnixNano()))
	dst = binary.BigEndian.AppendUint64(dst, stats.Frame)
	dst = append(dst, uint8(dominant))
	dst = binary.BigEndian.AppendUint16(dst, uint16(rings))
	dst = append(dst, band.Count)
	for _, id := range band.All {
		dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(float32(stats.Bands[id.String()])))
	}
	return dst
}
