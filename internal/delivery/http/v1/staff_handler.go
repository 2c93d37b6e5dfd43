package v1

import (
	"net/http"
	"strconv"

	"go-interview-backend/internal/delivery/http/response"
	"go-interview-backend/internal/domain"
	"go-interview-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type StaffHandler struct {
	inviteUC domain.InviteUsecase
	cloneUC  domain.VoiceCloneUsecase
}

// NewStaffHandler registers the staff-key-guarded routes used by the
// surrounding recruitment platform, not by candidates.
func NewStaffHandler(staff *gin.RouterGroup, inviteUC domain.InviteUsecase, cloneUC domain.VoiceCloneUsecase) {
	handler := &StaffHandler{
		inviteUC: inviteUC,
		cloneUC:  cloneUC,
	}

	staff.POST("/invites/:id/refresh", handler.RefreshInvite)
	staff.POST("/invites/:id/revoke", handler.RevokeInvite)
	staff.POST("/voice/clone", handler.RequestVoiceClone)
}

func inviteIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.BadRequest("Invalid invite ID")
	}
	return id, nil
}

// RefreshInvite godoc
// @Summary      Refresh an invite
// @Description  Revokes the current short code and activates a fresh one with a reset use count and extended deadline. The applicant is re-notified by email when mail is configured.
// @Tags         staff
// @Produce      json
// @Security     StaffKeyAuth
// @Param        id   path      int  true  "Invite ID"
// @Success      200  {object}  response.Response{data=domain.Invite}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /staff/invites/{id}/refresh [post]
func (h *StaffHandler) RefreshInvite(c *gin.Context) {
	id, err := inviteIDParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	invite, err := h.inviteUC.Refresh(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Invite refreshed", invite)
}

// RevokeInvite godoc
// @Summary      Revoke an invite
// @Description  Permanently deactivates the invite. Revocation is terminal; use refresh to issue a replacement code.
// @Tags         staff
// @Produce      json
// @Security     StaffKeyAuth
// @Param        id   path      int  true  "Invite ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /staff/invites/{id}/revoke [post]
func (h *StaffHandler) RevokeInvite(c *gin.Context) {
	id, err := inviteIDParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.inviteUC.Revoke(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Invite revoked", nil)
}

type voiceCloneRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Name   string `json:"name" binding:"required"`
}

// RequestVoiceClone godoc
// @Summary      Request a voice clone slot
// @Description  Admits at most one voice clone per user per cooldown window. A passed check records the attempt; the caller then runs the actual clone against the provider.
// @Tags         staff
// @Accept       json
// @Produce      json
// @Security     StaffKeyAuth
// @Param        clone  body      voiceCloneRequest  true  "Requesting user"
// @Success      200    {object}  response.Response
// @Failure      400    {object}  response.Response
// @Failure      401    {object}  response.Response
// @Failure      429    {object}  response.Response
// @Router       /staff/voice/clone [post]
func (h *StaffHandler) RequestVoiceClone(c *gin.Context) {
	var req voiceCloneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("user_id and name are required"))
		return
	}

	if err := h.cloneUC.CheckAndRecord(c.Request.Context(), req.UserID); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Voice clone slot granted", gin.H{
		"user_id": req.UserID,
		"name":    req.Name,
	})
}
