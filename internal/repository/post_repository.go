package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/microblog/internal/model"
)

// PostFilter narrows a listing. Zero value means "all posts".
// FollowedBy selects posts whose author is followed by the given user.
type PostFilter struct {
	AuthorID   string
	GroupID    string
	FollowedBy string
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	Update(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	List(ctx context.Context, f PostFilter, offset, limit int) ([]*model.Post, error)
	Count(ctx context.Context, f PostFilter) (int64, error)
	Delete(ctx context.Context, id string) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	// 仅允许改 text/image/group；作者与创建时间不可变
	return r.db.WithContext(ctx).Model(&model.Post{ID: post.ID}).
		Select("text", "image_url", "group_id").
		Updates(map[string]any{
			"text":      post.Text,
			"image_url": post.ImageURL,
			"group_id":  post.GroupID,
		}).Error
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).
		Preload("Author").Preload("Group").
		First(&post, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) scope(f PostFilter) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if f.AuthorID != "" {
			tx = tx.Where("posts.author_id = ?", f.AuthorID)
		}
		if f.GroupID != "" {
			tx = tx.Where("posts.group_id = ?", f.GroupID)
		}
		if f.FollowedBy != "" {
			tx = tx.Joins("JOIN follows ON follows.author_id = posts.author_id").
				Where("follows.user_id = ?", f.FollowedBy)
		}
		return tx
	}
}

func (r *postRepository) List(ctx context.Context, f PostFilter, offset, limit int) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.db.WithContext(ctx).
		Scopes(r.scope(f)).
		Preload("Author").Preload("Group").
		Order("posts.created_at DESC, posts.id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Count(ctx context.Context, f PostFilter) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).Scopes(r.scope(f)).Count(&cnt).Error
	return cnt, err
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	// 评论随帖子删除
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Post{}, "id = ?", id).Error
	})
}
