package httpapi

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/viewtube/viewtube/internal/common"
	"github.com/viewtube/viewtube/internal/filex"
	"github.com/viewtube/viewtube/internal/server/services"
)

// writeError translates service sentinels into HTTP statuses. Unknown errors
// are logged and surface as an opaque 500.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, common.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	default:
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// spoolUpload saves a multipart file into the spool directory under a random
// name. The service layer removes the file once it is pushed to storage.
func (s *Server) spoolUpload(c *gin.Context, fh *multipart.FileHeader) (string, error) {
	name := uuid.NewString() + filepath.Ext(fh.Filename)
	dst := filepath.Join(s.spoolDir, name)
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		return "", err
	}
	return dst, nil
}

func (s *Server) handleRegister(c *gin.Context) {
	in := services.RegisterInput{
		FullName: c.PostForm("fullName"),
		Email:    c.PostForm("email"),
		Username: c.PostForm("username"),
		Password: c.PostForm("password"),
	}

	if fh, err := c.FormFile("avatar"); err == nil {
		path, err := s.spoolUpload(c, fh)
		if err != nil {
			s.writeError(c, err)
			return
		}
		in.AvatarPath = path
	}
	if fh, err := c.FormFile("coverImage"); err == nil {
		path, err := s.spoolUpload(c, fh)
		if err != nil {
			s.writeError(c, err)
			return
		}
		in.CoverImagePath = path
	}

	// the uploader removes spooled files it touches; these cover validation
	// failures that happen before any upload
	defer func() {
		_ = filex.RemoveQuietly(in.AvatarPath)
		_ = filex.RemoveQuietly(in.CoverImagePath)
	}()

	user, err := s.sessions.Register(c.Request.Context(), in)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	login := req.Username
	if login == "" {
		login = req.Email
	}

	user, pair, err := s.sessions.Login(c.Request.Context(), login, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.setTokenCookies(c, pair)
	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) handleRefresh(c *gin.Context) {
	presented, _ := c.Cookie(common.RefreshTokenCookieName)
	if presented == "" {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			presented = req.RefreshToken
		}
	}

	pair, err := s.sessions.Refresh(c.Request.Context(), presented)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.setTokenCookies(c, pair)
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	if err := s.sessions.Logout(c.Request.Context(), currentUserID(c)); err != nil {
		s.writeError(c, err)
		return
	}

	s.clearTokenCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (s *Server) handleChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := s.sessions.ChangePassword(c.Request.Context(), currentUserID(c), req.OldPassword, req.NewPassword); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}

func (s *Server) handleCurrentUser(c *gin.Context) {
	user, err := s.sessions.CurrentUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (s *Server) handlePublishVideo(c *gin.Context) {
	duration, _ := strconv.ParseFloat(c.PostForm("duration"), 64)

	in := services.PublishInput{
		OwnerID:     currentUserID(c),
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Duration:    duration,
	}

	if fh, err := c.FormFile("videoFile"); err == nil {
		path, err := s.spoolUpload(c, fh)
		if err != nil {
			s.writeError(c, err)
			return
		}
		in.VideoPath = path
	}
	if fh, err := c.FormFile("thumbnail"); err == nil {
		path, err := s.spoolUpload(c, fh)
		if err != nil {
			s.writeError(c, err)
			return
		}
		in.ThumbnailPath = path
	}

	defer func() {
		_ = filex.RemoveQuietly(in.VideoPath)
		_ = filex.RemoveQuietly(in.ThumbnailPath)
	}()

	video, err := s.videos.Publish(c.Request.Context(), in)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"video": video})
}

func (s *Server) handleWatchVideo(c *gin.Context) {
	video, err := s.videos.Watch(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"video": video})
}

func (s *Server) handleWatchHistory(c *gin.Context) {
	history, err := s.videos.History(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}
