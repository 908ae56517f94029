package resumes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-portal/internal/shared/identity"
	"resume-portal/internal/shared/server/middleware"
	"resume-portal/internal/shared/server/respond"
	"resume-portal/internal/shared/telemetry"
)

const (
	loginPath     = "/accounts/login/"
	forbiddenPath = "/resume_access_forbidden/"

	answerFailedMessage = "We could not get an answer right now. Please try again later."
)

type Handler struct {
	Svc    *Service
	Policy *Policy
	// AskLimit guards the AI answer route when set.
	AskLimit gin.HandlerFunc
}

func NewHandler(svc *Service, policy *Policy, askLimit gin.HandlerFunc) *Handler {
	return &Handler{Svc: svc, Policy: policy, AskLimit: askLimit}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resume_access_forbidden/", h.forbidden)
	rg.GET("/resume/:username", h.detail)
	if h.AskLimit != nil {
		rg.POST("/resume/:username", h.AskLimit, h.ask)
	} else {
		rg.POST("/resume/:username", h.ask)
	}

	owner := rg.Group("/resume/:username", middleware.RequireLogin(loginPath))
	owner.GET("/create", h.createForm)
	owner.POST("/create", h.create)
	owner.GET("/edit", h.updateForm)
	owner.POST("/edit", h.update)
}

func (h *Handler) ready(c *gin.Context) bool {
	if h.Svc == nil || h.Policy == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Service unavailable.")
		return false
	}
	return true
}

func (h *Handler) detail(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	resume, owner, err := h.Svc.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.NotFound(c, "Resume not found.")
			return
		}
		h.internalError(c, "resume.load_failed", err)
		return
	}
	viewer := middleware.IdentityFromContext(c)
	if decision := h.Policy.CanView(viewer, resume); !decision.Allowed {
		h.logDenied(c, "view", decision)
		respond.Redirect(c, forbiddenPath)
		return
	}
	respond.OK(c, "resume_details.html", gin.H{
		"Title":   owner.Username,
		"Resume":  resume,
		"Owner":   owner,
		"IsOwner": viewer.Is(owner.Username),
	})
}

func (h *Handler) createForm(c *gin.Context) {
	if !h.ready(c) || !h.allowCreate(c) {
		return
	}
	h.renderForm(c, http.StatusOK, "resume_create.html", Form{}, nil)
}

func (h *Handler) create(c *gin.Context) {
	if !h.ready(c) || !h.allowCreate(c) {
		return
	}
	var form Form
	if errs := respond.BindForm(c, &form); errs != nil {
		h.renderForm(c, http.StatusUnprocessableEntity, "resume_create.html", form, errs)
		return
	}
	actor := middleware.IdentityFromContext(c)
	created, err := h.Svc.Create(c.Request.Context(), actor, form)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			h.logDenied(c, "create", Decision{Reason: ReasonResumeExists})
			respond.Forbidden(c, "You already have a resume.")
			return
		}
		h.internalError(c, "resume.create_failed", err)
		return
	}
	respond.Redirect(c, "/resume/"+created.OwnerUsername)
}

func (h *Handler) updateForm(c *gin.Context) {
	if !h.ready(c) || !h.allowEdit(c) {
		return
	}
	resume, _, err := h.Svc.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.NotFound(c, "Resume not found.")
			return
		}
		h.internalError(c, "resume.load_failed", err)
		return
	}
	h.renderForm(c, http.StatusOK, "resume_update.html", FormFrom(resume), nil)
}

func (h *Handler) update(c *gin.Context) {
	if !h.ready(c) || !h.allowEdit(c) {
		return
	}
	var form Form
	if errs := respond.BindForm(c, &form); errs != nil {
		h.renderForm(c, http.StatusUnprocessableEntity, "resume_update.html", form, errs)
		return
	}
	updated, err := h.Svc.Update(c.Request.Context(), middleware.IdentityFromContext(c), form)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.NotFound(c, "Resume not found.")
			return
		}
		h.internalError(c, "resume.update_failed", err)
		return
	}
	respond.Redirect(c, "/resume/"+updated.OwnerUsername)
}

func (h *Handler) ask(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	var q QuestionForm
	if err := c.ShouldBind(&q); err != nil {
		respond.Error(c, http.StatusBadRequest, "bad_request", "Invalid form submission.")
		return
	}
	answer, err := h.Svc.Ask(c.Request.Context(), q)
	if err != nil {
		telemetry.Error("resume.answer_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"owner":      c.Param("username"),
			"error":      err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", answerFailedMessage)
		return
	}
	ownerUsername := q.Username
	if ownerUsername == "" {
		ownerUsername = c.Param("username")
	}
	respond.OK(c, "ai_answer.html", gin.H{
		"Title":         "Answer",
		"OwnerUsername": ownerUsername,
		"Answer":        answer,
	})
}

func (h *Handler) forbidden(c *gin.Context) {
	respond.Page(c, http.StatusOK, "resume_access_forbidden.html", gin.H{"Title": "Access denied"})
}

func (h *Handler) allowCreate(c *gin.Context) bool {
	actor := middleware.IdentityFromContext(c)
	decision, err := h.Policy.CanCreate(c.Request.Context(), actor, c.Param("username"))
	return h.enforce(c, "create", decision, err, "A resume already exists for this user.")
}

func (h *Handler) allowEdit(c *gin.Context) bool {
	actor := middleware.IdentityFromContext(c)
	decision, err := h.Policy.CanEdit(c.Request.Context(), actor, c.Param("username"))
	return h.enforce(c, "edit", decision, err, "You can only edit your own resume.")
}

func (h *Handler) enforce(c *gin.Context, action string, decision Decision, err error, message string) bool {
	if err != nil {
		h.internalError(c, "resume.policy_failed", err)
		return false
	}
	if !decision.Allowed {
		h.logDenied(c, action, decision)
		respond.Forbidden(c, message)
		return false
	}
	return true
}

func (h *Handler) renderForm(c *gin.Context, status int, name string, form Form, errs map[string]string) {
	respond.Page(c, status, name, gin.H{
		"Title":    "Resume",
		"Username": c.Param("username"),
		"Form":     form,
		"Errors":   errs,
	})
}

func (h *Handler) logDenied(c *gin.Context, action string, decision Decision) {
	telemetry.Info("resume.access_denied", map[string]any{
		"request_id": middleware.RequestIDFromContext(c),
		"action":     action,
		"reason":     decision.Reason,
		"target":     c.Param("username"),
		"actor":      actorName(middleware.IdentityFromContext(c)),
	})
}

func (h *Handler) internalError(c *gin.Context, event string, err error) {
	telemetry.Error(event, map[string]any{
		"request_id": middleware.RequestIDFromContext(c),
		"target":     c.Param("username"),
		"error":      err.Error(),
	})
	respond.Error(c, http.StatusInternalServerError, "internal_error", "Something went wrong. Please try again later.")
}

func actorName(id identity.Identity) string {
	if !id.Authenticated() {
		return "anonymous"
	}
	return id.Username
}
