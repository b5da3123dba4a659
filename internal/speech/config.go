package speech

import "time"

// DefaultPrompt is shown while the recognizer is listening.
const DefaultPrompt = "Speak now..."

// DefaultRecordDuration is how long one dictation clip lasts.
const DefaultRecordDuration = 5 * time.Second

// DefaultTempDir holds the recorder's temporary WAV files.
const DefaultTempDir = ".springbreak-stt"
