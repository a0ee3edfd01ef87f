package server

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/iburimskiy/vfx-studio/internal/config"
	"github.com/iburimskiy/vfx-studio/internal/effect"
	"github.com/iburimskiy/vfx-studio/internal/effect/script"
	"github.com/iburimskiy/vfx-studio/internal/storage"
)

// multipart framing on top of the file itself
const uploadOverhead = 1 << 20

func (s *Server) listEffects(c *gin.Context) {
	list, err := s.store.ListEffects()
	if err != nil {
		log.Printf("[server] list effects: %v", err)
		message(c, http.StatusInternalServerError, "Failed to fetch effects")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) getEffect(c *gin.Context) {
	rec, err := s.store.GetEffect(c.Param("id"))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		message(c, http.StatusNotFound, "Effect not found")
	case err != nil:
		log.Printf("[server] get effect: %v", err)
		message(c, http.StatusInternalServerError, "Failed to fetch effect")
	default:
		c.JSON(http.StatusOK, rec)
	}
}

func (s *Server) uploadEffect(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.MaxUploadBytes+uploadOverhead)

	fh, err := c.FormFile("effectFile")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			message(c, http.StatusBadRequest, "File too large")
			return
		}
		message(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	if fh.Size > config.MaxUploadBytes {
		message(c, http.StatusBadRequest, "File too large")
		return
	}

	f, err := fh.Open()
	if err != nil {
		message(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	code, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		log.Printf("[server] read upload: %v", err)
		message(c, http.StatusInternalServerError, "Failed to create effect")
		return
	}

	name, kind, err := storage.ValidateEffectFile(fh.Filename, code)
	if err != nil {
		message(c, http.StatusBadRequest, uploadMessage(err))
		return
	}

	in := storage.NewEffect{Name: name, Filename: fh.Filename, Code: string(code)}
	if kind == storage.KindLua {
		fx, err := script.Load(effect.Info{ID: fh.Filename, Name: name}, in.Code)
		if err != nil {
			message(c, http.StatusBadRequest, "Invalid effect file: "+err.Error())
			return
		}
		in.Parameters = fx.Schema().Specs()
		fx.Destroy()
	}

	rec, err := s.store.CreateEffect(in)
	if err != nil {
		log.Printf("[server] create effect: %v", err)
		message(c, http.StatusInternalServerError, "Failed to create effect")
		return
	}

	if kind == storage.KindLua && s.registry != nil {
		info := effect.Info{ID: rec.ID, Name: rec.Name, Category: "scripted", Version: "1.0", Performance: "unknown"}
		if err := script.Register(s.registry, info, rec.Code); err != nil {
			log.Printf("[server] register script %s: %v", rec.ID, err)
		}
	}
	log.Printf("[server] stored effect %s (%s)", rec.ID, rec.Filename)
	c.JSON(http.StatusCreated, rec)
}

func uploadMessage(err error) string {
	switch {
	case errors.Is(err, storage.ErrUnsupportedType):
		return "Only .js or .lua effect files are allowed"
	case errors.Is(err, storage.ErrInvalidEffectFile):
		detail := strings.TrimPrefix(err.Error(), storage.ErrInvalidEffectFile.Error()+": ")
		return "Invalid effect file: " + detail
	default:
		return "Invalid effect data"
	}
}

func (s *Server) deleteEffect(c *gin.Context) {
	id := c.Param("id")
	rec, err := s.store.GetEffect(id)
	if errors.Is(err, storage.ErrNotFound) {
		message(c, http.StatusNotFound, "Effect not found")
		return
	}
	if err == nil {
		err = s.store.DeleteEffect(id)
	}
	if err != nil {
		log.Printf("[server] delete effect: %v", err)
		message(c, http.StatusInternalServerError, "Failed to delete effect")
		return
	}

	if s.registry != nil && strings.HasSuffix(strings.ToLower(rec.Filename), storage.KindLua) {
		s.registry.Unregister(id)
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) createSession(c *gin.Context) {
	var in storage.NewPerformanceSession
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid session data", "errors": []string{err.Error()}})
		return
	}

	rec, err := s.store.CreateSession(in)
	switch {
	case errors.Is(err, storage.ErrInvalidSession):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid session data", "errors": []string{err.Error()}})
	case err != nil:
		log.Printf("[server] create session: %v", err)
		message(c, http.StatusInternalServerError, "Failed to create performance session")
	default:
		c.JSON(http.StatusCreated, rec)
	}
}

func (s *Server) listSessions(c *gin.Context) {
	list, err := s.store.SessionsByEffect(c.Param("id"))
	if err != nil {
		log.Printf("[server] list sessions: %v", err)
		message(c, http.StatusInternalServerError, "Failed to fetch performance sessions")
		return
	}
	c.JSON(http.StatusOK, list)
}
