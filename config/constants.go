package config

// Audio Extraction Constants
const (
	// AudioSampleRate is the waveform sample rate the transcription backend expects
	AudioSampleRate = 16000

	// AudioChannels downmixes extracted audio to mono
	AudioChannels = 1

	// AudioFormat is the container format for extracted audio
	AudioFormat = "wav"
)

// Upload Constants
const (
	// DefaultMaxUploadBytes caps a single uploaded video (2 GiB)
	DefaultMaxUploadBytes int64 = 2 << 30
)
