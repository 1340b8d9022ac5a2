package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/getsiphon/siphonfs/internal/fs"
	"github.com/getsiphon/siphonfs/internal/fserr"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"uptime_seconds": int64(s.metrics.Uptime().Seconds()),
	})
}

func (s *Server) handleRoots(c *gin.Context) {
	roots := gin.H{
		"caches":    s.svc.CachesDirectoryPath(),
		"documents": s.svc.DocumentDirectoryPath(),
	}
	if lib, ok := s.svc.LibraryDirectoryPath(); ok {
		roots["library"] = lib
	}
	c.JSON(http.StatusOK, roots)
}

func (s *Server) handleReadDir(c *gin.Context) {
	path := c.Query("path")
	entries, err := s.svc.ReadDir(c.Request.Context(), path)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path, "entries": entries})
}

func (s *Server) handleReaddir(c *gin.Context) {
	path := c.Query("path")
	names, err := s.svc.Readdir(c.Request.Context(), path)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path, "names": names})
}

func (s *Server) handleStat(c *gin.Context) {
	st, err := s.svc.Stat(c.Request.Context(), c.Query("path"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ctime":        st.CTime,
		"mtime":        st.MTime,
		"size":         st.Size,
		"mode":         st.Mode,
		"type":         st.Type.String(),
		"is_file":      st.Type.IsFile(),
		"is_directory": st.Type.IsDirectory(),
	})
}

func (s *Server) handleExists(c *gin.Context) {
	ok, err := s.svc.Exists(c.Request.Context(), c.Query("path"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": ok})
}

func (s *Server) handleReadFile(c *gin.Context) {
	path := c.Query("path")
	contents, err := s.svc.ReadFile(c.Request.Context(), path, c.Query("encoding"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path, "contents": contents})
}

type writeFileRequest struct {
	Path     string `json:"path" binding:"required"`
	Contents string `json:"contents"`
	Encoding string `json:"encoding"`
	Append   bool   `json:"append"`
}

func (s *Server) handleWriteFile(c *gin.Context) {
	var req writeFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fserr.Invalid("invalid request body: %v", err))
		return
	}

	err := s.svc.WriteFile(c.Request.Context(), req.Path, req.Contents, req.Encoding,
		&fs.WriteOptions{Append: req.Append})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"written": true, "path": req.Path})
}

func (s *Server) handleUnlink(c *gin.Context) {
	path := c.Query("path")
	if err := s.svc.Unlink(c.Request.Context(), path); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true, "path": path})
}

type moveRequest struct {
	SrcPath  string `json:"src_path" binding:"required"`
	DestPath string `json:"dest_path" binding:"required"`
}

func (s *Server) handleMove(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fserr.Invalid("invalid request body: %v", err))
		return
	}

	if err := s.svc.MoveFile(c.Request.Context(), req.SrcPath, req.DestPath); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"moved": true})
}

type mkdirRequest struct {
	Path              string `json:"path" binding:"required"`
	ExcludeFromBackup bool   `json:"exclude_from_backup"`
}

func (s *Server) handleMkdir(c *gin.Context) {
	var req mkdirRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fserr.Invalid("invalid request body: %v", err))
		return
	}

	if err := s.svc.Mkdir(c.Request.Context(), req.Path, req.ExcludeFromBackup); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": true, "path": req.Path})
}

type downloadRequest struct {
	URL             string            `json:"url" binding:"required"`
	ToFile          string            `json:"to_file" binding:"required"`
	Headers         map[string]string `json:"headers"`
	ProgressDivider int               `json:"progress_divider"`
}

func (s *Server) handleDownload(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fserr.Invalid("invalid request body: %v", err))
		return
	}

	divider := req.ProgressDivider
	if divider == 0 {
		divider = s.cfg.Download.ProgressDivider
	}

	res, err := s.svc.DownloadFile(c.Request.Context(), fs.DownloadRequest{
		URL:             req.URL,
		ToFile:          req.ToFile,
		Headers:         req.Headers,
		ProgressDivider: divider,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleStopDownload(c *gin.Context) {
	jobID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, fserr.Invalid("invalid job id: %q", c.Param("id")))
		return
	}

	// Fire and forget: cancellation does not settle the job.
	s.svc.StopDownload(jobID)
	c.Status(http.StatusAccepted)
}

func fail(c *gin.Context, err error) {
	code := fserr.CodeOf(err)
	c.JSON(statusFor(code), gin.H{"error": err.Error(), "code": code})
}

func statusFor(code string) int {
	switch code {
	case fserr.CodeInvalidArgument, fserr.CodeNotDir:
		return http.StatusBadRequest
	case fserr.CodeInvalidRoot, fserr.CodeAccessDenied:
		return http.StatusForbidden
	case fserr.CodeNotFound:
		return http.StatusNotFound
	case fserr.CodeExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
