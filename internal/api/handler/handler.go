package handler

import (
	"github.com/d60-Lab/microblog/internal/service"
	"github.com/d60-Lab/microblog/internal/storage"
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	posts     service.PostService
	relations service.RelationshipService
	accounts  service.AccountService
	images    storage.ImageStore
}

func NewHandler(
	posts service.PostService,
	relations service.RelationshipService,
	accounts service.AccountService,
	images storage.ImageStore,
) *Handler {
	return &Handler{
		posts:     posts,
		relations: relations,
		accounts:  accounts,
		images:    images,
	}
}
