// Seeds a handful of demo users, groups, posts, comments and follows
// so a fresh instance has something to render.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/microblog/internal/config"
	"github.com/d60-Lab/microblog/internal/model"
	"github.com/d60-Lab/microblog/internal/repository"
)

func main() {
	cfg := must(config.Load(""))
	db := must(repository.Open(cfg.DB.Driver, cfg.DB.DSN))
	ctx := context.Background()

	hash := must(bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost))

	users := []model.User{
		{ID: uuid.NewString(), Username: "leo", FirstName: "Лев", LastName: "Толстой", Email: "leo@example.com", PasswordHash: string(hash)},
		{ID: uuid.NewString(), Username: "anna", FirstName: "Анна", LastName: "Ахматова", Email: "anna@example.com", PasswordHash: string(hash)},
		{ID: uuid.NewString(), Username: "anton", FirstName: "Антон", LastName: "Чехов", Email: "anton@example.com", PasswordHash: string(hash)},
	}
	mustDo(db.WithContext(ctx).Create(&users).Error)

	groups := []model.Group{
		{ID: uuid.NewString(), Title: "Проза", Slug: "proza", Description: "Длинные тексты"},
		{ID: uuid.NewString(), Title: "Стихи", Slug: "stihi", Description: "Короткие тексты"},
	}
	mustDo(db.WithContext(ctx).Create(&groups).Error)

	base := time.Now()
	posts := make([]model.Post, 0, 30)
	for i := 0; i < 30; i++ {
		author := users[i%len(users)]
		post := model.Post{
			ID:        uuid.NewString(),
			AuthorID:  author.ID,
			Text:      fmt.Sprintf("Пробный пост №%d от %s", i+1, author.Username),
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		}
		if i%2 == 0 {
			post.GroupID = &groups[i%len(groups)].ID
		}
		posts = append(posts, post)
	}
	mustDo(db.WithContext(ctx).CreateInBatches(&posts, 100).Error)

	comments := []model.Comment{
		{ID: uuid.NewString(), PostID: posts[0].ID, AuthorID: users[1].ID, Text: "Отличный пост!"},
		{ID: uuid.NewString(), PostID: posts[0].ID, AuthorID: users[2].ID, Text: "Согласен."},
	}
	mustDo(db.WithContext(ctx).Create(&comments).Error)

	follows := repository.NewFollowRepository(db)
	mustDo(follows.Create(ctx, users[1].ID, users[0].ID))
	mustDo(follows.Create(ctx, users[2].ID, users[0].ID))
	mustDo(follows.Create(ctx, users[0].ID, users[1].ID))

	fmt.Printf("seeded %d users, %d groups, %d posts\n", len(users), len(groups), len(posts))
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}
