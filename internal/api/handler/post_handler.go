package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/microblog/internal/api/middleware"
	"github.com/d60-Lab/microblog/internal/form"
	"github.com/d60-Lab/microblog/internal/service"
	"github.com/d60-Lab/microblog/pkg/paginator"
	"github.com/d60-Lab/microblog/pkg/response"
)

// Index lists all posts, newest first.
// @Summary Home listing
// @Tags posts
// @Produce json
// @Param page query int false "page number" default(1)
// @Success 200 {object} response.Response{data=service.PostPage}
// @Router / [get]
func (h *Handler) Index(c *gin.Context) {
	page := paginator.ParsePage(c.Query("page"))
	out, err := h.posts.ListAll(c.Request.Context(), page)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, out)
}

// GroupPosts lists one group's posts.
// @Summary Group listing
// @Tags posts
// @Produce json
// @Param slug path string true "group slug"
// @Param page query int false "page number" default(1)
// @Success 200 {object} response.Response{data=service.GroupPage}
// @Failure 404 {object} response.Response
// @Router /group/{slug}/ [get]
func (h *Handler) GroupPosts(c *gin.Context) {
	page := paginator.ParsePage(c.Query("page"))
	out, err := h.posts.ListByGroup(c.Request.Context(), c.Param("slug"), page)
	if errors.Is(err, service.ErrNotFound) {
		response.NotFound(c, "group not found")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, out)
}

// PostDetail shows one post with its comments and derived title.
// @Summary Post detail
// @Tags posts
// @Produce json
// @Param id path string true "post id"
// @Success 200 {object} response.Response{data=service.PostDetail}
// @Failure 404 {object} response.Response
// @Router /posts/{id}/ [get]
func (h *Handler) PostDetail(c *gin.Context) {
	out, err := h.posts.Detail(c.Request.Context(), c.Param("id"))
	if errors.Is(err, service.ErrNotFound) {
		response.NotFound(c, "post not found")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, out)
}

// CreatePostForm returns the blank form descriptor the client renders.
// @Summary New post form
// @Tags posts
// @Produce json
// @Success 200 {object} response.Response
// @Router /create/ [get]
func (h *Handler) CreatePostForm(c *gin.Context) {
	response.Success(c, gin.H{"form": form.PostForm{}, "is_edit": false})
}

// CreatePost persists a new post for the authenticated user.
// @Summary Create post
// @Tags posts
// @Accept x-www-form-urlencoded
// @Produce json
// @Param text formData string true "post text"
// @Param group_id formData string false "group id"
// @Param image_url formData string false "uploaded image URL"
// @Success 302 {string} string "redirect to the author's profile"
// @Failure 400 {object} response.Response
// @Router /create/ [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var f form.PostForm
	_ = c.ShouldBind(&f)
	if errs := form.Check(f); errs != nil {
		response.FormInvalid(c, errs)
		return
	}
	userID := middleware.UserID(c)
	author, err := h.accounts.User(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	_, err = h.posts.Create(c.Request.Context(), userID, service.PostInput{
		Text:     f.Text,
		GroupID:  f.GroupID,
		ImageURL: f.ImageURL,
	})
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/profile/"+author.Username+"/")
}

// EditPostForm shows the edit form; non-authors are silently redirected
// to the detail page instead of seeing an error.
// @Summary Edit post form
// @Tags posts
// @Produce json
// @Param id path string true "post id"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /posts/{id}/edit/ [get]
func (h *Handler) EditPostForm(c *gin.Context) {
	postID := c.Param("id")
	detail, err := h.posts.Detail(c.Request.Context(), postID)
	if errors.Is(err, service.ErrNotFound) {
		response.NotFound(c, "post not found")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if detail.Post.AuthorID != middleware.UserID(c) {
		c.Redirect(http.StatusFound, "/posts/"+postID+"/")
		return
	}
	f := form.PostForm{Text: detail.Post.Text, ImageURL: detail.Post.ImageURL}
	if detail.Post.GroupID != nil {
		f.GroupID = *detail.Post.GroupID
	}
	response.Success(c, gin.H{"form": f, "is_edit": true})
}

// EditPost persists changes to text/image/group. Authorship is checked
// before validation so a non-author gets the same redirect for any body.
// @Summary Edit post
// @Tags posts
// @Accept x-www-form-urlencoded
// @Produce json
// @Param id path string true "post id"
// @Param text formData string true "post text"
// @Success 302 {string} string "redirect to the post detail"
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /posts/{id}/edit/ [post]
func (h *Handler) EditPost(c *gin.Context) {
	postID := c.Param("id")
	detail, err := h.posts.Detail(c.Request.Context(), postID)
	if errors.Is(err, service.ErrNotFound) {
		response.NotFound(c, "post not found")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if detail.Post.AuthorID != middleware.UserID(c) {
		c.Redirect(http.StatusFound, "/posts/"+postID+"/")
		return
	}
	var f form.PostForm
	_ = c.ShouldBind(&f)
	if errs := form.Check(f); errs != nil {
		response.FormInvalid(c, errs)
		return
	}
	_, err = h.posts.Edit(c.Request.Context(), postID, middleware.UserID(c), service.PostInput{
		Text:     f.Text,
		GroupID:  f.GroupID,
		ImageURL: f.ImageURL,
	})
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/posts/"+postID+"/")
}

// AddComment attaches a comment to a post.
// @Summary Add comment
// @Tags posts
// @Accept x-www-form-urlencoded
// @Produce json
// @Param id path string true "post id"
// @Param text formData string true "comment text"
// @Success 302 {string} string "redirect to the post detail"
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /posts/{id}/comment/ [post]
func (h *Handler) AddComment(c *gin.Context) {
	postID := c.Param("id")
	var f form.CommentForm
	_ = c.ShouldBind(&f)
	if errs := form.Check(f); errs != nil {
		response.FormInvalid(c, errs)
		return
	}
	_, err := h.posts.AddComment(c.Request.Context(), postID, middleware.UserID(c), f.Text)
	if errors.Is(err, service.ErrNotFound) {
		response.NotFound(c, "post not found")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/posts/"+postID+"/")
}
