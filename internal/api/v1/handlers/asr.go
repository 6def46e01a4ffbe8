package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sensevoice-asr/internal/api/errors"
	"sensevoice-asr/internal/api/middleware"
	"sensevoice-asr/internal/api/v1/dto"
	"sensevoice-asr/internal/api/v1/services"
	"sensevoice-asr/internal/app/asr"
)

// multipartOverhead is added to the upload cap to leave room for the form
// boundaries and the non-file fields.
const multipartOverhead = 1 << 20

// ASRHandler serves the transcription endpoint.
type ASRHandler struct {
	service        services.TranscriptionService
	maxUploadBytes int64
}

// NewASRHandler creates a new ASR handler. maxUploadBytes of zero disables
// the request body cap.
func NewASRHandler(service services.TranscriptionService, maxUploadBytes int64) *ASRHandler {
	return &ASRHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// Transcribe handles POST /asr
//
// @Summary Transcribe an audio file
// @Description Recognises speech in the uploaded audio and returns the text with emotion and event markers rendered as emoji
// @Tags asr
// @Accept multipart/form-data
// @Produce json
// @Param audio formData file true "Audio file"
// @Param language query string false "Language hint" Enums(auto, zh, en, yue, ja, ko, nospeech) default(auto)
// @Param use_itn query bool false "Inverse text normalisation and punctuation" default(true)
// @Success 200 {object} dto.TranscriptionResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /asr [post]
func (h *ASRHandler) Transcribe(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			middleware.HandleError(c, asr.ErrUploadTooLarge)
			return
		}
		middleware.HandleError(c, errors.NewInvalidInputError("missing audio file"))
		return
	}

	req := dto.TranscriptionRequest{
		Language: middleware.Param(c, "language"),
		UseITN:   middleware.Param(c, "use_itn"),
	}
	if err := middleware.ValidateStruct(req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	useITN := true
	if req.UseITN != "" {
		useITN, _ = middleware.ParseBoolParam(req.UseITN)
	}

	file, err := fileHeader.Open()
	if err != nil {
		middleware.HandleError(c, errors.NewInternalError("failed to read uploaded audio"))
		return
	}
	defer file.Close()

	text, err := h.service.Transcribe(c.Request.Context(), asr.Input{
		Audio:    file,
		Filename: fileHeader.Filename,
		Language: req.Language,
		UseITN:   useITN,
	})
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TranscriptionResponse{Text: text})
}
