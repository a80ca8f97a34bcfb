package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/xlsexport/internal/logger"
	"github.com/locvowork/xlsexport/internal/service"
	"github.com/locvowork/xlsexport/internal/service/serviceutils"
)

type PostHandler struct {
	svc service.PostService
}

func NewPostHandler(svc service.PostService) *PostHandler {
	return &PostHandler{svc: svc}
}

// ListHandler handles GET /posts
func (h *PostHandler) ListHandler(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := h.svc.List(ctx)
	if err != nil {
		logger.ErrorLog(ctx, "failed to list posts: %v", err)
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to list posts", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "OK", posts)
}

// GetHandler handles GET /posts/:id, the target of exported links.
func (h *PostHandler) GetHandler(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid post id", err)
	}

	post, err := h.svc.Get(ctx, id)
	if errors.Is(err, service.ErrPostNotFound) {
		return serviceutils.ResponseError(c, http.StatusNotFound, "Post not found", err)
	}
	if err != nil {
		logger.ErrorLog(ctx, "failed to get post %d: %v", id, err)
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to get post", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "OK", post)
}
