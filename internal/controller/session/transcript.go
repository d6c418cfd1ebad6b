package session

import (
	"context"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/nkoroteev/bleep/internal/models"
)

type Transcript interface {
	Transcribe(ctx context.Context, sessionID, sourceVersion, lang string) ([]models.TranscriptEntry, error)
	FromSRT(r io.Reader) ([]models.TranscriptEntry, error)
	Search(entries []models.TranscriptEntry, query string) []models.SearchHit
}

type Profanity interface {
	Detect(ctx context.Context, sessionID string, entries []models.TranscriptEntry, lang string, customWords []string) (models.ProfanityReport, error)
	AddWords(ctx context.Context, sessionID string, words []string) error
	Words(ctx context.Context, sessionID string) ([]string, error)
}

// transcribe produces a transcript for the referenced
// artifact. With an attached "srt" file the subtitles are
// parsed instead of running recognition. Transcripts are
// not stored, the client resends entries to later steps.
func (sesCtr *sessionController) transcribe(c *fiber.Ctx) error {
	if file, err := c.FormFile("srt"); err == nil {
		reader, err := file.Open()
		if err != nil {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		defer reader.Close()

		entries, err := sesCtr.srvTranscript.FromSRT(reader)
		if err != nil {
			return fail(c, err)
		}

		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"transcript": entries,
		})
	}

	sourceVersion := c.Query("sourceVersion", models.SourceOriginal)
	lang := c.Query("lang")

	entries, err := sesCtr.srvTranscript.Transcribe(context.TODO(), c.Params("id"), sourceVersion, lang)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"transcript": entries,
	})
}

// search fuzzy-matches a phrase against transcript entries.
func (sesCtr *sessionController) search(c *fiber.Ctx) error {
	var request struct {
		Query   string                   `json:"query"`
		Entries []models.TranscriptEntry `json:"entries"`
	}

	if err := c.BodyParser(&request); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if request.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query required",
		})
	}

	hits := sesCtr.srvTranscript.Search(request.Entries, request.Query)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"hits": hits,
	})
}

// detect classifies transcript tokens against the combined
// vocabulary and returns flagged segments with per-word
// highlighting.
func (sesCtr *sessionController) detect(c *fiber.Ctx) error {
	var request struct {
		Lang    string                   `json:"lang"`
		Words   []string                 `json:"words"`
		Entries []models.TranscriptEntry `json:"entries"`
	}

	if err := c.BodyParser(&request); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	report, err := sesCtr.srvProfanity.Detect(context.TODO(), c.Params("id"), request.Entries, request.Lang, request.Words)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"report": report,
	})
}

// words returns the session's custom vocabulary.
func (sesCtr *sessionController) words(c *fiber.Ctx) error {
	words, err := sesCtr.srvProfanity.Words(context.TODO(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"words": words,
	})
}

// addWords merges custom words into the session vocabulary.
func (sesCtr *sessionController) addWords(c *fiber.Ctx) error {
	var request struct {
		Words []string `json:"words"`
	}

	if err := c.BodyParser(&request); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if len(request.Words) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "no words",
		})
	}

	if err := sesCtr.srvProfanity.AddWords(context.TODO(), c.Params("id"), request.Words); err != nil {
		return fail(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}
