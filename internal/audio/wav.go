package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/wav"
)

var (
	errShortWAV   = errors.New("wav data too short")
	errNotWAV     = errors.New("not a valid WAV file")
	errNoData     = errors.New("data chunk not found in WAV")
	errBadFormat  = errors.New("unsupported WAV format")
	errNoFmtChunk = errors.New("fmt chunk not found in WAV")
)

// wavFormat is the subset of the "fmt " chunk the player cares about.
type wavFormat struct {
	AudioFormat   uint16 // 1 = PCM
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
}

// decodeWAV reads the format and returns the raw PCM payload of the data
// chunk. The bytes are handed to oto as they are, so nothing is converted
// to sample buffers.
func decodeWAV(data []byte) ([]byte, wavFormat, error) {
	var format wavFormat
	if len(data) < 12 {
		return nil, format, errShortWAV
	}
	// The decoder checks the RIFF id but not the form type.
	if string(data[8:12]) != "WAVE" {
		return nil, format, errNotWAV
	}

	d := wav.NewDecoder(bytes.NewReader(data))
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return nil, format, fmt.Errorf("%w: %v", errNotWAV, err)
	}
	if d.NumChans == 0 {
		return nil, format, errNoFmtChunk
	}
	format = wavFormat{
		AudioFormat:   d.WavAudioFormat,
		Channels:      d.NumChans,
		SampleRate:    d.SampleRate,
		BitsPerSample: d.BitDepth,
	}

	if err := d.FwdToPCM(); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, format, errNoData
		}
		return nil, format, fmt.Errorf("seeking to PCM: %w", err)
	}
	if d.PCMChunk == nil {
		return nil, format, errNoData
	}

	// A truncated data chunk plays what is there.
	pcm := make([]byte, d.PCMSize)
	n, err := io.ReadFull(d.PCMChunk, pcm)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, format, fmt.Errorf("reading PCM: %w", err)
	}
	return pcm[:n], format, nil
}

// playablePCM decodes data and checks it matches the output device.
func playablePCM(data []byte) ([]byte, error) {
	pcm, f, err := decodeWAV(data)
	if err != nil {
		return nil, err
	}
	if f.AudioFormat != 1 || f.Channels != ChannelCount || f.SampleRate != SampleRate || f.BitsPerSample != BitDepth {
		return nil, fmt.Errorf("%w: %d Hz, %d ch, %d bit (want %d Hz, %d ch, %d bit PCM)",
			errBadFormat, f.SampleRate, f.Channels, f.BitsPerSample, SampleRate, ChannelCount, BitDepth)
	}
	return pcm, nil
}
