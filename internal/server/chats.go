package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	chatdomain "github.com/healthsync/backend/internal/chat/domain"
)

func (s *Server) ListChats(c *gin.Context) {
	sub, _ := Subject(c)

	chats, err := s.chatSvc.List(c.Request.Context(), ownerKey(sub))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

func (s *Server) GetChat(c *gin.Context) {
	sub, _ := Subject(c)

	chat, err := s.chatSvc.Get(c.Request.Context(), ownerKey(sub), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

type chatPayload struct {
	Title    *string         `json:"title"`
	Messages json.RawMessage `json:"messages"`
}

func (s *Server) CreateChat(c *gin.Context) {
	sub, _ := Subject(c)

	var req chatPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	create := chatdomain.CreateRequest{Messages: req.Messages}
	if req.Title != nil {
		create.Title = *req.Title
	}

	chat, err := s.chatSvc.Create(c.Request.Context(), ownerKey(sub), create)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, chat)
}

func (s *Server) UpdateChat(c *gin.Context) {
	sub, _ := Subject(c)

	var req chatPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	err := s.chatSvc.Update(c.Request.Context(), ownerKey(sub), c.Param("id"), chatdomain.UpdateRequest{
		Title:    req.Title,
		Messages: req.Messages,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) DeleteChat(c *gin.Context) {
	sub, _ := Subject(c)

	if err := s.chatSvc.Delete(c.Request.Context(), ownerKey(sub), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
