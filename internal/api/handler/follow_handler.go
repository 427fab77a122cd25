package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/microblog/internal/api/middleware"
	"github.com/d60-Lab/microblog/internal/service"
	"github.com/d60-Lab/microblog/pkg/paginator"
	"github.com/d60-Lab/microblog/pkg/response"
)

// Profile lists one author's posts plus whether the viewer follows them.
// @Summary Author profile
// @Tags profile
// @Produce json
// @Param username path string true "author username"
// @Param page query int false "page number" default(1)
// @Success 200 {object} response.Response{data=service.ProfilePage}
// @Failure 404 {object} response.Response
// @Router /profile/{username}/ [get]
func (h *Handler) Profile(c *gin.Context) {
	page := paginator.ParsePage(c.Query("page"))
	out, err := h.posts.Profile(c.Request.Context(), c.Param("username"), middleware.UserID(c), page)
	if errors.Is(err, service.ErrNotFound) {
		response.NotFound(c, "profile not found")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, out)
}

// Follow subscribes the viewer to an author. Self-follow and duplicate
// follows are quiet no-ops; the redirect happens either way.
// @Summary Follow author
// @Tags profile
// @Param username path string true "author username"
// @Success 302 {string} string "redirect to the author's profile"
// @Failure 404 {object} response.Response
// @Router /profile/{username}/follow/ [get]
func (h *Handler) Follow(c *gin.Context) {
	username := c.Param("username")
	_, err := h.relations.Follow(c.Request.Context(), middleware.UserID(c), username)
	if errors.Is(err, service.ErrNotFound) {
		response.NotFound(c, "profile not found")
		return
	}
	if err != nil && !errors.Is(err, service.ErrFollowSelf) {
		response.InternalError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/profile/"+username+"/")
}

// Unfollow removes the subscription if present.
// @Summary Unfollow author
// @Tags profile
// @Param username path string true "author username"
// @Success 302 {string} string "redirect to the author's profile"
// @Failure 404 {object} response.Response
// @Router /profile/{username}/unfollow/ [get]
func (h *Handler) Unfollow(c *gin.Context) {
	username := c.Param("username")
	_, err := h.relations.Unfollow(c.Request.Context(), middleware.UserID(c), username)
	if errors.Is(err, service.ErrNotFound) {
		response.NotFound(c, "profile not found")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/profile/"+username+"/")
}

// FollowIndex is the personalized feed: posts by followed authors.
// Never cached, unlike the home listing.
// @Summary Followed-authors feed
// @Tags profile
// @Produce json
// @Param page query int false "page number" default(1)
// @Success 200 {object} response.Response{data=service.PostPage}
// @Router /follow/ [get]
func (h *Handler) FollowIndex(c *gin.Context) {
	page := paginator.ParsePage(c.Query("page"))
	out, err := h.posts.Feed(c.Request.Context(), middleware.UserID(c), page)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, out)
}
