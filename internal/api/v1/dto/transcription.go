package dto

// TranscriptionRequest holds the optional /asr parameters. Both are read from
// the query string first, then from the multipart form.
type TranscriptionRequest struct {
	Language string `form:"language" validate:"omitempty,asrlang"`
	UseITN   string `form:"use_itn" validate:"omitempty,boolish"`
}

// TranscriptionResponse is the success body of POST /asr.
type TranscriptionResponse struct {
	Text string `json:"text" example:"🎼hello world😊"`
}
