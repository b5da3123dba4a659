package domain

// User-visible notices.
const (
	MsgSpeechUnsupported = "Speech input not supported on this device"
	MsgSpeechBusy        = "Already listening, finish the current dictation first"
	MsgSpeechFailed      = "Speech recognition failed"
	MsgSelectLanguage    = "Please select a language from the list"
	MsgNoMapViewer       = "No map viewer available"
	MsgNoSensor          = "Accelerometer not available"
)
