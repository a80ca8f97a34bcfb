package handler

import (
	"github.com/labstack/echo/v4"
)

// PostRouteName names the post detail route; exported links reverse it.
const PostRouteName = "post"

// Register mounts the post and admin export routes on e. Post detail lives
// outside /admin so that it cannot shadow /admin/posts/export.xlsx.
func Register(e *echo.Echo, posts *PostHandler, exports *ExportHandler) {
	e.GET("/posts", posts.ListHandler)
	e.GET("/posts/:id", posts.GetHandler).Name = PostRouteName

	g := e.Group("/admin")
	g.GET("/:resource/export.xlsx", exports.ExportXLSXHandler)
	g.GET("/:resource/export.csv", exports.ExportCSVHandler)
}
