package service

import "errors"

var (
	// ErrNotFound 目标资源不存在（组/用户/帖子）
	ErrNotFound = errors.New("resource not found")
	// ErrFollowSelf 不允许关注自己
	ErrFollowSelf = errors.New("cannot follow self")
	// ErrNotAuthor 只有作者可以编辑帖子
	ErrNotAuthor = errors.New("not the post author")
	// ErrUsernameTaken 注册用户名冲突
	ErrUsernameTaken = errors.New("username already taken")
	// ErrBadCredentials 登录失败
	ErrBadCredentials = errors.New("invalid username or password")
)
