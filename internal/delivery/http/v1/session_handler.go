package v1

import (
	"net/http"

	"go-interview-backend/internal/delivery/http/response"
	"go-interview-backend/internal/domain"
	"go-interview-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	inviteUC domain.InviteUsecase
}

// NewSessionHandler registers the invite redemption route (public, the
// candidate has no credentials yet)
func NewSessionHandler(public *gin.RouterGroup, inviteUC domain.InviteUsecase) {
	handler := &SessionHandler{
		inviteUC: inviteUC,
	}

	public.POST("/sessions", handler.CreateSession)
}

type createSessionRequest struct {
	ShortCode string `json:"short_code" binding:"required"`
}

// CreateSession godoc
// @Summary      Redeem an interview invite
// @Description  Exchange an invite short code for a candidate session token plus everything the interview client needs to render. Consumes one use of the invite.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        invite  body      createSessionRequest  true  "Invite short code"
// @Success      201     {object}  response.Response{data=domain.SessionPayload}
// @Failure      400     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Failure      410     {object}  response.Response
// @Router       /sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("short_code is required"))
		return
	}

	payload, err := h.inviteUC.Redeem(c.Request.Context(), req.ShortCode)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Interview session created", payload)
}
