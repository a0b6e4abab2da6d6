package api

import "github.com/tagmarks/tagmarks-server/internal/service"

// Services groups the business logic used by the API server.
type Services struct {
	Users       *service.UserService
	Bookmarks   *service.BookmarkService
	Tags        *service.TagService
	Directories *service.DirectoryService
	Search      *service.SearchService
}
