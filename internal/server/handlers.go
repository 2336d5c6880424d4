package server

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jmylchreest/stripscan/internal/classify"
	"github.com/jmylchreest/stripscan/internal/colour"
	"github.com/jmylchreest/stripscan/internal/session"
	"github.com/jmylchreest/stripscan/internal/strip"
	"github.com/jmylchreest/stripscan/internal/version"
)

// formField is the multipart field carrying the image.
const formField = "image"

const indexHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>stripscan</title></head>
<body>
<h1>stripscan</h1>
<form action="/api/classify" method="post" enctype="multipart/form-data">
<input type="file" name="image" accept="image/jpeg,image/png,image/gif,image/webp" capture="environment">
<button type="submit">Analyse</button>
</form>
</body>
</html>
`

// handleIndex serves a bare upload form.
func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.SendString(indexHTML)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleVersion(c *fiber.Ctx) error {
	return c.JSON(version.GetInfo())
}

// TableResponse describes the active reference table.
type TableResponse struct {
	Name      string               `json:"name"`
	NotFound  string               `json:"not_found"`
	Threshold float64              `json:"threshold"`
	Entries   []classify.Reference `json:"entries"`
}

func (s *Server) handleTable(c *fiber.Ctx) error {
	table := s.analyser.Table()
	return c.JSON(TableResponse{
		Name:      table.Name(),
		NotFound:  table.NotFoundLabel(),
		Threshold: s.analyser.Threshold(),
		Entries:   table.Entries(),
	})
}

// handleClassify analyses one upload without creating a session.
// An optional "threshold" form value overrides the configured one.
func (s *Server) handleClassify(c *fiber.Ctx) error {
	analyser, err := s.analyserFor(c)
	if err != nil {
		return err
	}
	up, err := s.readUpload(c)
	if err != nil {
		return err
	}
	if err := up.Validate(); err != nil {
		return err
	}

	report, err := analyser.AnalyseBytes(up.Data)
	if err != nil {
		return err
	}
	return c.JSON(report)
}

func (s *Server) handleCreateSession(c *fiber.Ctx) error {
	sess := s.sessions.Create()
	return c.Status(fiber.StatusCreated).JSON(sess)
}

func (s *Server) handleGetSession(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(sess)
}

func (s *Server) handleSubmit(c *fiber.Ctx) error {
	id := c.Params("id")
	// Unknown sessions are reported before the body is read.
	if _, err := s.sessions.Get(id); err != nil {
		return err
	}

	analyser, err := s.analyserFor(c)
	if err != nil {
		return err
	}
	up, err := s.readUpload(c)
	if err != nil {
		return err
	}

	sess, err := s.sessions.Submit(id, up, analyser.AnalyseBytes)
	if err != nil {
		return err
	}
	return c.JSON(sess)
}

func (s *Server) handleReset(c *fiber.Ctx) error {
	sess, err := s.sessions.Reset(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(sess)
}

func (s *Server) handleDeleteSession(c *fiber.Ctx) error {
	id := c.Params("id")
	if !s.sessions.Delete(id) {
		return fmt.Errorf("%w: %s", session.ErrNotFound, id)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// analyserFor returns the server's analyser, or a copy with the request's threshold.
func (s *Server) analyserFor(c *fiber.Ctx) (*strip.Analyser, error) {
	raw := c.FormValue("threshold")
	if raw == "" {
		return s.analyser, nil
	}
	th, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: threshold %q is not a number", colour.ErrInvalidInput, raw)
	}
	return s.analyser.WithThreshold(th)
}

// readUpload pulls the image out of the multipart form.
func (s *Server) readUpload(c *fiber.Ctx) (session.Upload, error) {
	fh, err := c.FormFile(formField)
	if err != nil {
		return session.Upload{}, fmt.Errorf("%w: missing %q file field: %v", colour.ErrInvalidInput, formField, err)
	}
	if s.maxBytes > 0 && fh.Size > int64(s.maxBytes) {
		return session.Upload{}, fiber.NewError(fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("upload is %d bytes, limit is %d", fh.Size, s.maxBytes))
	}

	f, err := fh.Open()
	if err != nil {
		return session.Upload{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return session.Upload{}, fmt.Errorf("failed to read upload: %w", err)
	}

	return session.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
