package entities

// Pipeline stages fail with distinct error kinds so callers can tell a model
// problem from a tooling problem. None of them are retried; the orchestrator
// aborts the whole request on the first one it sees.

// GenerationError reports a failed or unparseable language-model reply.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return "generate reply: " + e.Err.Error() }
func (e *GenerationError) Unwrap() error { return e.Err }

// SynthesisError reports a failed text-to-speech fetch.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string { return "synthesize speech: " + e.Err.Error() }
func (e *SynthesisError) Unwrap() error { return e.Err }

// TranscodeError reports a failed audio format conversion.
type TranscodeError struct {
	Err error
}

func (e *TranscodeError) Error() string { return "transcode audio: " + e.Err.Error() }
func (e *TranscodeError) Unwrap() error { return e.Err }

// LipSyncError reports a failed or unreadable viseme extraction.
type LipSyncError struct {
	Err error
}

func (e *LipSyncError) Error() string { return "extract visemes: " + e.Err.Error() }
func (e *LipSyncError) Unwrap() error { return e.Err }
