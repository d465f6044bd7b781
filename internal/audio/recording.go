// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"ringviz/internal/log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// RecordingFilename returns the configured output file, or a timestamped
// name when none is set.
func RecordingFilename(configured string, now time.Time) string {
	if configured != "" {
		return configured
	}
	return now.Format("ringviz-20060102-150405.wav")
}

// StartRecording writes every captured buffer, all channels, to filename at
// the configured bit depth (16 or 32).
func (e *Engine) StartRecording(filename string) error {
	if atomic.LoadInt32(&e.isRecording) == 1 {
		return fmt.Errorf("already recording")
	}

	bitDepth := e.recording.BitDepth
	if bitDepth != 16 && bitDepth != 32 {
		return fmt.Errorf("unsupported recording bit depth: %d", bitDepth)
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	e.outputFile = file

	e.wavEncoder = wav.NewEncoder(file, int(e.config.SampleRate),
		bitDepth, e.config.InputChannels, 1)

	e.sampleBuf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: e.config.InputChannels,
			SampleRate:  int(e.config.SampleRate),
		},
		Data:           make([]int, e.config.FramesPerBuffer*e.config.InputChannels),
		SourceBitDepth: bitDepth,
	}

	atomic.StoreInt32(&e.isRecording, 1)
	log.Infof("Audio: Recording to %s (%d-bit, %d channels)", filename, bitDepth, e.config.InputChannels)

	return nil
}

// writeRecording converts and writes one buffer when recording. Samples are
// scaled down from 32 bits for 16-bit files.
func (e *Engine) writeRecording(buffer []int32) {
	if atomic.LoadInt32(&e.isRecording) != 1 || e.wavEncoder == nil {
		return
	}

	shift := uint(32 - e.sampleBuf.SourceBitDepth)
	data := e.sampleBuf.Data[:cap(e.sampleBuf.Data)]
	n := min(len(buffer), len(data))
	for i := range n {
		data[i] = int(buffer[i] >> shift)
	}
	e.sampleBuf.Data = data[:n]

	if err := e.wavEncoder.Write(e.sampleBuf); err != nil {
		log.Errorf("Audio: Error writing to WAV file: %v", err)
	}
}

func (e *Engine) StopRecording() error {
	if atomic.LoadInt32(&e.isRecording) == 0 {
		return nil
	}

	atomic.StoreInt32(&e.isRecording, 0)

	if e.wavEncoder != nil {
		if err := e.wavEncoder.Close(); err != nil {
			return err
		}
		e.wavEncoder = nil
	}

	if e.outputFile != nil {
		if err := e.outputFile.Close(); err != nil {
			return err
		}
		e.outputFile = nil
	}

	return nil
}

// Recording reports whether a recording is in progress.
func (e *Engine) Recording() bool {
	return atomic.LoadInt32(&e.isRecording) == 1
}
