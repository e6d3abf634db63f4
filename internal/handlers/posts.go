package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/conexahub/conexa/internal/middleware"
	"github.com/conexahub/conexa/internal/services"
	"github.com/conexahub/conexa/pkg/response"
)

type PostHandler struct {
	posts *services.PostService
}

func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

type createPostRequest struct {
	Content  string `json:"content" validate:"required,max=4000"`
	ImageURL string `json:"image_url" validate:"omitempty,url,max=1024"`
}

// GET /api/posts
func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.posts.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"posts": posts})
}

// POST /api/posts
func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if !bindAndValidate(c, &req) {
		return
	}

	post, err := h.posts.Create(requestContext(c), services.CreatePostInput{
		AuthorID: c.GetString(middleware.CtxMemberIDKey),
		Content:  req.Content,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"post": post})
}

// DELETE /api/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.posts.Delete(requestContext(c), c.Param("id"), c.GetString(middleware.CtxMemberIDKey)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// DELETE /api/admin/posts/:id
func (h *PostHandler) AdminDelete(c *gin.Context) {
	if err := h.posts.Delete(requestContext(c), c.Param("id"), ""); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
