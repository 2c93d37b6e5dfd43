package v1

import (
	"net/http"

	"go-interview-backend/internal/delivery/http/response"
	"go-interview-backend/internal/domain"
	"go-interview-backend/pkg/apperror"
	"go-interview-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

type VoiceHandler struct {
	voiceUC domain.VoiceUsecase
}

// NewVoiceHandler registers the synthesis routes behind the candidate
// session middleware.
func NewVoiceHandler(session *gin.RouterGroup, voiceUC domain.VoiceUsecase) {
	handler := &VoiceHandler{
		voiceUC: voiceUC,
	}

	session.POST("/voice/stream", handler.Stream)
	session.GET("/voice/voices", handler.Voices)
}

// Stream godoc
// @Summary      Stream synthesized speech
// @Description  Synthesizes the given text and streams the audio back in order as it renders, serving from cache when the text was already synthesized. The response body is raw MP3 audio, not the JSON envelope.
// @Tags         voice
// @Accept       json
// @Produce      audio/mpeg
// @Security     BearerAuth
// @Param        speech  body      domain.SynthesisRequest  true  "Text to synthesize"
// @Success      200     {file}    byte
// @Failure      400     {object}  response.Response
// @Failure      401     {object}  response.Response
// @Failure      502     {object}  response.Response
// @Failure      503     {object}  response.Response
// @Router       /voice/stream [post]
func (h *VoiceHandler) Stream(c *gin.Context) {
	var req domain.SynthesisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid synthesis payload: " + err.Error()))
		return
	}

	// The request context is cancelled when the candidate disconnects, which
	// stops chunk production upstream instead of rendering into the void.
	chunks, err := h.voiceUC.Stream(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	wrote := false
	for chunk := range chunks {
		if chunk.Err != nil {
			if !wrote {
				// Nothing sent yet: the client still gets a proper JSON error.
				c.Error(chunk.Err)
				return
			}
			// Mid-stream failure: headers are gone, all we can do is cut the
			// stream short and log.
			logger.Log.Warn("Audio stream aborted mid-response", "error", chunk.Err)
			return
		}

		if !wrote {
			c.Header("Content-Type", "audio/mpeg")
			c.Header("Cache-Control", "no-store")
			c.Status(http.StatusOK)
			wrote = true
		}
		if _, err := c.Writer.Write(chunk.Data); err != nil {
			return
		}
		c.Writer.Flush()
	}
}

// Voices godoc
// @Summary      List available voices
// @Tags         voice
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]domain.Voice}
// @Failure      401  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /voice/voices [get]
func (h *VoiceHandler) Voices(c *gin.Context) {
	voices, err := h.voiceUC.Voices(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Voices retrieved", voices)
}
