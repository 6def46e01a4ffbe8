package services

import (
	"context"

	"sensevoice-asr/internal/app/asr"
)

// TranscriptionService runs one transcription. *asr.Service satisfies it.
type TranscriptionService interface {
	Transcribe(ctx context.Context, in asr.Input) (string, error)
}

var _ TranscriptionService = (*asr.Service)(nil)
