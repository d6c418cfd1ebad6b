package session

import (
	"context"
	"errors"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"

	jwtController "github.com/nkoroteev/bleep/internal/controller/jwt"
	"github.com/nkoroteev/bleep/internal/models"
	"github.com/nkoroteev/bleep/internal/service"
)

// New returns a fiber.App serving the whole session
// surface: lifecycle, source upload, version history and
// download, transcription, profanity and edit operations.
func New(
	srvSession Session,
	srvTranscript Transcript,
	srvProfanity Profanity,
	srvEditor Editor,
	jwtC *jwtController.JWT,
	tmpDir string,
) *fiber.App {
	sesCtr := sessionController{
		srvSession:    srvSession,
		srvTranscript: srvTranscript,
		srvProfanity:  srvProfanity,
		srvEditor:     srvEditor,
		tmpDir:        tmpDir,
	}

	app := fiber.New(fiber.Config{
		EnableSplittingOnParsers: true,
	})

	app.Use(jwtC.AuthRequired())

	// Lifecycle
	app.Post("/", sesCtr.newSession)
	app.Delete("/:id", sesCtr.destroySession)
	app.Get("/:id/history", sesCtr.history)

	// Sources and outputs
	app.Post("/:id/source", sesCtr.uploadSource)
	app.Get("/:id/source", sesCtr.sources)
	app.Get("/:id/version/:version", sesCtr.download)

	// Transcription
	app.Post("/:id/transcript", sesCtr.transcribe)
	app.Post("/:id/transcript/search", sesCtr.search)

	// Profanity
	app.Post("/:id/profanity", sesCtr.detect)
	app.Get("/:id/words", sesCtr.words)
	app.Post("/:id/words", sesCtr.addWords)

	// Edits
	app.Post("/:id/mute", sesCtr.mute)
	app.Post("/:id/trim", sesCtr.trim)
	app.Post("/:id/join", sesCtr.join)

	return app
}

type sessionController struct {
	srvSession    Session
	srvTranscript Transcript
	srvProfanity  Profanity
	srvEditor     Editor
	tmpDir        string
}

type Session interface {
	CreateSession(ctx context.Context) (models.Session, error)
	DestroySession(ctx context.Context, sessionID string) error
	History(ctx context.Context, sessionID string) ([]models.EditVersion, error)
	RegisterSource(ctx context.Context, sessionID, path, originalName string) (models.SourceVideo, error)
	Sources(ctx context.Context, sessionID string) ([]models.SourceVideo, error)
	ResolveInput(ctx context.Context, sessionID, sourceVersion string) (string, error)
}

// fail maps service sentinels to response statuses.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "session not found",
		})
	case errors.Is(err, service.ErrVersionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "version not found",
		})
	case errors.Is(err, service.ErrSourceNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "source not found",
		})
	case errors.Is(err, service.ErrSourceAmbiguous):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "several sources registered, explicit version required",
		})
	case errors.Is(err, service.ErrSegmentConfig):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid segment configuration",
		})
	case errors.Is(err, service.ErrExecutorFailed):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "operation failed",
		})
	case errors.Is(err, service.ErrTranscriptUnavailable):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "transcription unavailable",
		})
	default:
		return c.SendStatus(fiber.StatusInternalServerError)
	}
}

// newSession creates a new empty session.
func (sesCtr *sessionController) newSession(c *fiber.Ctx) error {
	session, err := sesCtr.srvSession.CreateSession(context.TODO())
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"session": session,
	})
}

// destroySession drops the session with all its files.
// Destroying an unknown session succeeds.
func (sesCtr *sessionController) destroySession(c *fiber.Ctx) error {
	if err := sesCtr.srvSession.DestroySession(context.TODO(), c.Params("id")); err != nil {
		return fail(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// history returns the session's version history.
func (sesCtr *sessionController) history(c *fiber.Ctx) error {
	versions, err := sesCtr.srvSession.History(context.TODO(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"history": versions,
	})
}

// uploadSource saves the sent file and registers it as a
// session source.
func (sesCtr *sessionController) uploadSource(c *fiber.Ctx) error {
	file, err := c.FormFile("source")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid file",
		})
	}

	fileType := file.Header.Get("Content-Type")
	if fileType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "content-type not found",
		})
	}

	// recognize MIME-type (allow video only)
	if fileType == "application/octet-stream" {
		reader, err := file.Open()
		if err != nil {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		mimeType, err := mimetype.DetectReader(reader)
		reader.Close()
		if err != nil {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		fileType = mimeType.String()
	}
	if !isVideo(fileType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unsupported mime-type",
		})
	}

	tmpFile, err := os.CreateTemp(sesCtr.tmpDir, "upload-*")
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	tmpFileName := tmpFile.Name()
	tmpFile.Close()

	if err := c.SaveFile(file, tmpFileName); err != nil {
		os.Remove(tmpFileName)
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	defer os.Remove(tmpFileName)

	src, err := sesCtr.srvSession.RegisterSource(context.TODO(), c.Params("id"), tmpFileName, file.Filename)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"source": src,
	})
}

// sources returns all registered sources.
func (sesCtr *sessionController) sources(c *fiber.Ctx) error {
	sources, err := sesCtr.srvSession.Sources(context.TODO(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"sources": sources,
	})
}

// download streams the referenced artifact: "original" or a
// version number.
func (sesCtr *sessionController) download(c *fiber.Ctx) error {
	path, err := sesCtr.srvSession.ResolveInput(context.TODO(), c.Params("id"), c.Params("version"))
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).SendFile(path)
}

func isVideo(mime string) bool {
	return len(mime) > 6 && mime[:6] == "video/"
}
