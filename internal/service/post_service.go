package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/microblog/internal/model"
	"github.com/d60-Lab/microblog/internal/repository"
	"github.com/d60-Lab/microblog/pkg/paginator"
)

// PostInput carries the client-settable post fields. Everything else
// (author, timestamps) is server-assigned.
type PostInput struct {
	Text     string
	GroupID  string
	ImageURL string
}

// PostPage 一页帖子列表
type PostPage struct {
	Posts []*model.Post  `json:"posts"`
	Page  paginator.Page `json:"page"`
}

// ProfilePage 作者主页：帖子 + 是否已关注
type ProfilePage struct {
	Author    *model.User `json:"author"`
	Following bool        `json:"following"`
	PostPage
}

// GroupPage 社区页
type GroupPage struct {
	Group *model.Group `json:"group"`
	PostPage
}

// PostDetail 帖子详情：正文、评论、派生标题、作者署名
type PostDetail struct {
	Post           *model.Post      `json:"post"`
	Comments       []*model.Comment `json:"comments"`
	Title          string           `json:"title"`
	AuthorFullName string           `json:"author_fullname"`
}

type PostService interface {
	ListAll(ctx context.Context, page int) (*PostPage, error)
	ListByGroup(ctx context.Context, slug string, page int) (*GroupPage, error)
	Profile(ctx context.Context, username, viewerID string, page int) (*ProfilePage, error)
	Feed(ctx context.Context, userID string, page int) (*PostPage, error)
	Detail(ctx context.Context, postID string) (*PostDetail, error)
	Create(ctx context.Context, authorID string, in PostInput) (*model.Post, error)
	Edit(ctx context.Context, postID, editorID string, in PostInput) (*model.Post, error)
	AddComment(ctx context.Context, postID, authorID, text string) (*model.Comment, error)
	DeletePost(ctx context.Context, postID string) error
}

type postService struct {
	posts    repository.PostRepository
	groups   repository.GroupRepository
	users    repository.UserRepository
	comments repository.CommentRepository
	follows  repository.FollowRepository
	pageSize int
}

func NewPostService(
	posts repository.PostRepository,
	groups repository.GroupRepository,
	users repository.UserRepository,
	comments repository.CommentRepository,
	follows repository.FollowRepository,
	pageSize int,
) PostService {
	if pageSize <= 0 {
		pageSize = paginator.DefaultPageSize
	}
	return &postService{
		posts: posts, groups: groups, users: users,
		comments: comments, follows: follows, pageSize: pageSize,
	}
}

func (s *postService) paged(ctx context.Context, f repository.PostFilter, page int) (*PostPage, error) {
	total, err := s.posts.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	p := paginator.Resolve(page, s.pageSize, total)
	posts, err := s.posts.List(ctx, f, p.Offset(), p.Size)
	if err != nil {
		return nil, err
	}
	return &PostPage{Posts: posts, Page: p}, nil
}

func (s *postService) ListAll(ctx context.Context, page int) (*PostPage, error) {
	return s.paged(ctx, repository.PostFilter{}, page)
}

func (s *postService) ListByGroup(ctx context.Context, slug string, page int) (*GroupPage, error) {
	group, err := s.groups.GetBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	pp, err := s.paged(ctx, repository.PostFilter{GroupID: group.ID}, page)
	if err != nil {
		return nil, err
	}
	return &GroupPage{Group: group, PostPage: *pp}, nil
}

func (s *postService) Profile(ctx context.Context, username, viewerID string, page int) (*ProfilePage, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	pp, err := s.paged(ctx, repository.PostFilter{AuthorID: author.ID}, page)
	if err != nil {
		return nil, err
	}
	following := false
	if viewerID != "" && viewerID != author.ID {
		following, err = s.follows.Exists(ctx, viewerID, author.ID)
		if err != nil {
			return nil, err
		}
	}
	return &ProfilePage{Author: author, Following: following, PostPage: *pp}, nil
}

func (s *postService) Feed(ctx context.Context, userID string, page int) (*PostPage, error) {
	return s.paged(ctx, repository.PostFilter{FollowedBy: userID}, page)
}

func (s *postService) Detail(ctx context.Context, postID string) (*PostDetail, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &PostDetail{
		Post:           post,
		Comments:       comments,
		Title:          post.DetailTitle(),
		AuthorFullName: post.Author.FullName(),
	}, nil
}

func (s *postService) Create(ctx context.Context, authorID string, in PostInput) (*model.Post, error) {
	post := &model.Post{
		ID:       uuid.New().String(),
		AuthorID: authorID,
		Text:     in.Text,
		ImageURL: in.ImageURL,
	}
	if in.GroupID != "" {
		post.GroupID = &in.GroupID
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Edit(ctx context.Context, postID, editorID string, in PostInput) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if post.AuthorID != editorID {
		return nil, ErrNotAuthor
	}
	post.Text = in.Text
	post.ImageURL = in.ImageURL
	post.GroupID = nil
	if in.GroupID != "" {
		post.GroupID = &in.GroupID
	}
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) AddComment(ctx context.Context, postID, authorID, text string) (*model.Comment, error) {
	// Unlike the historical behavior, a missing post is answered with a
	// proper not-found instead of an unhandled lookup error.
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	comment := &model.Comment{
		ID:       uuid.New().String(),
		PostID:   postID,
		AuthorID: authorID,
		Text:     text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *postService) DeletePost(ctx context.Context, postID string) error {
	return s.posts.Delete(ctx, postID)
}
