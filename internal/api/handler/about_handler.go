package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/microblog/pkg/response"
)

// AboutAuthor is a static page.
// @Summary About the author
// @Tags about
// @Produce json
// @Success 200 {object} response.Response
// @Router /about/author/ [get]
func (h *Handler) AboutAuthor(c *gin.Context) {
	response.Success(c, gin.H{"title": "Об авторе", "template": "about/author.html"})
}

// AboutTech is a static page.
// @Summary About the stack
// @Tags about
// @Produce json
// @Success 200 {object} response.Response
// @Router /about/tech/ [get]
func (h *Handler) AboutTech(c *gin.Context) {
	response.Success(c, gin.H{"title": "Технологии", "template": "about/tech.html"})
}
