package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/xlsexport/internal/admin"
	"github.com/locvowork/xlsexport/internal/logger"
	"github.com/locvowork/xlsexport/internal/service/serviceutils"
	"github.com/locvowork/xlsexport/pkg/xlsexport"
)

const (
	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMECSV  = "text/csv; charset=utf-8"
)

// echoView resolves named routes through the echo router.
type echoView struct {
	e *echo.Echo
}

// NewView returns a ViewContext whose URL reverses routes registered on e.
func NewView(e *echo.Echo) xlsexport.ViewContext {
	return echoView{e: e}
}

func (v echoView) URL(name string, params ...interface{}) string {
	return v.e.Reverse(name, params...)
}

type ExportHandler struct {
	ns *admin.Namespace
}

func NewExportHandler(ns *admin.Namespace) *ExportHandler {
	return &ExportHandler{ns: ns}
}

// ExportXLSXHandler handles GET /admin/:resource/export.xlsx
func (h *ExportHandler) ExportXLSXHandler(c echo.Context) error {
	return h.export(c, "xlsx", MIMEXLSX)
}

// ExportCSVHandler handles GET /admin/:resource/export.csv
func (h *ExportHandler) ExportCSVHandler(c echo.Context) error {
	return h.export(c, "csv", MIMECSV, admin.AsDocument(xlsexport.NewCSVDocument))
}

func (h *ExportHandler) export(c echo.Context, ext, contentType string, opts ...admin.ExportOption) error {
	ctx := logger.WithContext(c.Request().Context())
	name := c.Param("resource")

	resource, err := h.ns.Resource(name)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusNotFound, "Unknown resource", err)
	}

	start := time.Now()
	data, err := resource.Export(ctx, NewView(c.Echo()), opts...)
	if err != nil {
		logger.ErrorLog(ctx, "export %s failed: %v", name, err)
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to export "+name, err)
	}
	logger.InfoLog(ctx, "exported %s as %s (%d bytes) in %s", name, ext, len(data), time.Since(start))

	filename := fmt.Sprintf("%s_%s.%s", name, time.Now().Format("20060102"), ext)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Response().Header().Set(echo.HeaderContentLength, strconv.Itoa(len(data)))
	return c.Blob(http.StatusOK, contentType, data)
}
