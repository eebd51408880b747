package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trainyourai/mervlink/internal/mervlink"
	"github.com/trainyourai/mervlink/internal/model"
)

type inviteInput struct {
	Token     string `json:"token"`
	LinkedUID string `json:"linked_uid"`
	Name      string `json:"name"`
}

// bindInvite reads the token and fields from the JSON body, falling back
// to the query string for the token.
func bindInvite(c *gin.Context) (inviteInput, bool) {
	var in inviteInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return in, false
		}
	}
	if in.Token == "" {
		in.Token = c.Query("token")
	}
	if in.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "token is required"})
		return in, false
	}
	return in, true
}

func (h *Handler) CreateInvite(c *gin.Context) {
	var input struct {
		UserUID     string         `json:"user_uid" binding:"required"`
		LinkType    string         `json:"link_type"`
		Permissions map[string]any `json:"permissions"`
		Name        string         `json:"name"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	created, err := h.svc().CreateInvite(c.Request.Context(), mervlink.CreateInviteParams{
		UserUID:     input.UserUID,
		UserName:    input.Name,
		LinkType:    input.LinkType,
		Permissions: input.Permissions,
	})
	if err != nil {
		h.fail(c, err, "link_type must be personal, business or dating")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": created.Token, "invite_url": created.InviteURL})
}

// ValidateInvite reports 404 for an unknown token and 410 for one that
// has already been accepted or declined.
func (h *Handler) ValidateInvite(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "token is required"})
		return
	}
	inv, err := h.svc().ValidateInvite(c.Request.Context(), token)
	if err != nil {
		h.fail(c, err, "invite not found")
		return
	}
	if inv.Status != model.InvitePending {
		h.fail(c, model.ErrGone, "invite already used")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "invite": inv})
}

func (h *Handler) AcceptInvite(c *gin.Context) {
	in, ok := bindInvite(c)
	if !ok {
		return
	}
	if in.LinkedUID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "linked_uid is required"})
		return
	}
	inv, err := h.svc().AcceptInvite(c.Request.Context(), in.Token, in.LinkedUID, in.Name)
	if err != nil {
		h.fail(c, err, "invite not found or already used")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "invite": inv})
}

func (h *Handler) DeclineInvite(c *gin.Context) {
	in, ok := bindInvite(c)
	if !ok {
		return
	}
	if err := h.svc().DeclineInvite(c.Request.Context(), in.Token); err != nil {
		h.fail(c, err, "invite not found or already used")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
