// Package api exposes MervLink over HTTP.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/trainyourai/mervlink/internal/mervlink"
	"github.com/trainyourai/mervlink/internal/model"
	"github.com/trainyourai/mervlink/internal/store"
)

type Handler struct {
	Router *mervlink.Router
	Log    *slog.Logger
}

func (h *Handler) svc() *mervlink.Service { return h.Router.Service() }

func (h *Handler) logger() *slog.Logger {
	if h.Log == nil {
		return slog.Default()
	}
	return h.Log
}

// NewEngine builds a gin engine serving h.
func NewEngine(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.logger()))
	h.Routes(r)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	return r
}

// Routes registers the MervLink endpoints on r.
func (h *Handler) Routes(r gin.IRouter) {
	r.GET("/healthz", h.Health)

	ml := r.Group("/api/mervlink")
	{
		ml.POST("/send", h.Send)
		ml.GET("/messages", h.Messages)
		ml.POST("/messages/:id/read", h.MarkRead)
		ml.GET("/approvals", h.Approvals)
		ml.POST("/approvals/respond", h.RespondApproval)
	}

	r.GET("/api/chef/recipes", h.Recipes)

	inv := r.Group("/api/invites")
	{
		inv.POST("", h.CreateInvite)
		inv.GET("/validate", h.ValidateInvite)
		inv.POST("/accept", h.AcceptInvite)
		inv.POST("/decline", h.DeclineInvite)
	}
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// fail writes the status code matching err. Unexpected errors are logged
// and reported without their text.
func (h *Handler) fail(c *gin.Context, err error, msg string) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrInvalid):
		code = http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, model.ErrAlreadyResolved), errors.Is(err, model.ErrDuplicate), errors.Is(err, model.ErrAlreadyShared):
		code = http.StatusConflict
	case errors.Is(err, model.ErrGone):
		code = http.StatusGone
	}
	if code == http.StatusInternalServerError {
		h.logger().Error("request failed", "path", c.FullPath(), "error", err)
		msg = "internal error"
	}
	c.JSON(code, gin.H{"success": false, "error": msg})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Send(c *gin.Context) {
	var req mervlink.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	res, err := h.Router.Ingest(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "sender_uid, receiver_uid and a valid message are required")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": res})
}

func (h *Handler) Messages(c *gin.Context) {
	uid := c.Query("uid")
	if uid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "uid is required"})
		return
	}
	msgs, err := h.svc().Messages(c.Request.Context(), store.MessageFilter{
		UID:       uid,
		Peer:      c.Query("peer"),
		Assistant: c.Query("assistant"),
		Unread:    c.Query("unread") == "true",
	})
	if err != nil {
		h.fail(c, err, "could not load messages")
		return
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "messages": msgs})
}

func (h *Handler) MarkRead(c *gin.Context) {
	if err := h.svc().MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "message not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) Approvals(c *gin.Context) {
	owner := c.Query("owner_uid")
	if owner == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "owner_uid is required"})
		return
	}
	approvals, err := h.svc().PendingApprovals(c.Request.Context(), owner)
	if err != nil {
		h.fail(c, err, "could not load approvals")
		return
	}
	if approvals == nil {
		approvals = []model.Approval{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "approvals": approvals})
}

func (h *Handler) RespondApproval(c *gin.Context) {
	var input struct {
		ID     string `json:"id" binding:"required"`
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	res, err := h.svc().Respond(c.Request.Context(), input.ID, input.Action)
	switch {
	case errors.Is(err, model.ErrInvalid):
		h.fail(c, err, "action must be approve or deny")
		return
	case errors.Is(err, model.ErrNotFound):
		h.fail(c, err, "approval not found")
		return
	case errors.Is(err, model.ErrAlreadyResolved):
		h.fail(c, err, "approval already resolved")
		return
	case err != nil:
		h.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": res.Message, "approval": res.Approval})
}

func (h *Handler) Recipes(c *gin.Context) {
	owner := c.Query("owner_uid")
	if owner == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "owner_uid is required"})
		return
	}
	list, err := h.svc().ListRecipes(c.Request.Context(), owner)
	if err != nil {
		h.fail(c, err, "could not load recipes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "recipes": list})
}
