package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/microblog/internal/api/middleware"
	"github.com/d60-Lab/microblog/internal/form"
	"github.com/d60-Lab/microblog/internal/service"
	"github.com/d60-Lab/microblog/pkg/response"
)

// cookieMaxAge keeps the jwt cookie alive for a day, matching the
// token's own expiry.
const cookieMaxAge = 24 * 60 * 60

// Signup registers a new account.
// @Summary Sign up
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "username"
// @Param password formData string true "password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/signup/ [post]
func (h *Handler) Signup(c *gin.Context) {
	var f form.SignupForm
	_ = c.ShouldBind(&f)
	if errs := form.Check(f); errs != nil {
		response.FormInvalid(c, errs)
		return
	}
	user, err := h.accounts.Signup(c.Request.Context(), service.SignupInput{
		Username:  f.Username,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Password:  f.Password,
	})
	if errors.Is(err, service.ErrUsernameTaken) {
		response.FormInvalid(c, map[string]string{"username": "already taken"})
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"user": user})
}

// Login verifies credentials and sets the auth cookie. The optional
// `next` query value is echoed back so clients can resume navigation.
// @Summary Log in
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "username"
// @Param password formData string true "password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/login/ [post]
func (h *Handler) Login(c *gin.Context) {
	var f form.LoginForm
	_ = c.ShouldBind(&f)
	if errs := form.Check(f); errs != nil {
		response.FormInvalid(c, errs)
		return
	}
	token, user, err := h.accounts.Login(c.Request.Context(), f.Username, f.Password)
	if errors.Is(err, service.ErrBadCredentials) {
		response.BadRequest(c, "invalid username or password")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.SetCookie(middleware.AuthCookie, token, cookieMaxAge, "/", "", false, true)
	response.Success(c, gin.H{
		"token": token,
		"user":  user,
		"next":  c.Query("next"),
	})
}

// Logout clears the auth cookie.
// @Summary Log out
// @Tags auth
// @Success 200 {object} response.Response
// @Router /auth/logout/ [post]
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(middleware.AuthCookie, "", -1, "/", "", false, true)
	response.Success(c, nil)
}
