package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	communitydomain "github.com/healthsync/backend/internal/community/domain"
)

// ListCommunityPosts is public; authentication only personalizes logging
// upstream, never the result.
func (s *Server) ListCommunityPosts(c *gin.Context) {
	posts, err := s.communitySvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

type createPostRequest struct {
	Content string `json:"content"`
	Rating  int    `json:"rating"`
}

func (s *Server) CreateCommunityPost(c *gin.Context) {
	sub, _ := Subject(c)

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	post, err := s.communitySvc.Create(c.Request.Context(), sub, communitydomain.CreateRequest{
		Content: req.Content,
		Rating:  req.Rating,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) DeleteCommunityPost(c *gin.Context) {
	sub, _ := Subject(c)

	if err := s.communitySvc.Delete(c.Request.Context(), ownerKey(sub), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
