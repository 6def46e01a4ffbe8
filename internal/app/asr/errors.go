package asr

import "errors"

var (
	// ErrEmptyUpload is returned when the uploaded audio has no bytes.
	ErrEmptyUpload = errors.New("uploaded audio is empty")

	// ErrUploadTooLarge is returned when the upload exceeds the configured cap.
	ErrUploadTooLarge = errors.New("uploaded audio exceeds the size limit")

	// ErrEmptyTranscription is returned when post-processing leaves no text.
	ErrEmptyTranscription = errors.New("no transcription text produced")

	// ErrModelNotLoaded is returned when a request arrives before the model
	// handle has been loaded.
	ErrModelNotLoaded = errors.New("model is not loaded")

	// ErrUnsupportedLanguage is returned for an unknown language hint.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)
