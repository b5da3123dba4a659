// Package audio plays the greeting clips: it finds or synthesizes the WAV
// data for a greeting and hands it to the system audio device.
package audio

// Audio parameters every clip must match. Azure's
// riff-24khz-16bit-mono-pcm output format matches them too.
const (
	SampleRate   = 24000
	ChannelCount = 1
	BitDepth     = 16
)

// DefaultAudioFormat is requested from Azure when synthesizing.
const DefaultAudioFormat = "riff-24khz-16bit-mono-pcm"
