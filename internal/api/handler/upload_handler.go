package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/microblog/pkg/response"
)

// Upload stores a post image and returns the URL to put on the form.
// @Summary Upload image
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "image file"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /upload/ [post]
func (h *Handler) Upload(c *gin.Context) {
	if h.images == nil {
		response.BadRequest(c, "image storage not configured")
		return
	}
	file, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, "missing image file")
		return
	}
	src, err := file.Open()
	if err != nil {
		response.BadRequest(c, "unreadable image file")
		return
	}
	defer src.Close()

	url, err := h.images.Save(c.Request.Context(), file.Filename, file.Header.Get("Content-Type"), file.Size, src)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"url": url})
}
