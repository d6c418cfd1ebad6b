package session

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/nkoroteev/bleep/internal/models"
)

type Editor interface {
	ApplyMute(ctx context.Context, sessionID, sourceVersion string, ranges []models.TimeRange, words []string, segments []models.ProfanitySegment) (models.EditVersion, error)
	ApplyTrim(ctx context.Context, sessionID, sourceVersion string, ranges []models.TimeRange, join bool) (models.EditVersion, error)
	ApplyMultiJoin(ctx context.Context, sessionID string, sources []models.JoinSource) (models.EditVersion, error)
}

// mute silences ranges of the referenced artifact. Words
// select additional ranges out of the supplied profanity
// segments. No ranges at all is a valid no-op copy.
func (sesCtr *sessionController) mute(c *fiber.Ctx) error {
	var request struct {
		SourceVersion string                    `json:"sourceVersion"`
		Ranges        []models.TimeRange        `json:"ranges"`
		Words         []string                  `json:"words"`
		Segments      []models.ProfanitySegment `json:"segments"`
	}

	if err := c.BodyParser(&request); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if request.SourceVersion == "" {
		request.SourceVersion = models.SourceOriginal
	}

	v, err := sesCtr.srvEditor.ApplyMute(
		context.TODO(),
		c.Params("id"),
		request.SourceVersion,
		request.Ranges,
		request.Words,
		request.Segments,
	)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"version": v,
	})
}

// trim cuts the referenced artifact down to the given
// ranges, optionally concatenating several of them.
func (sesCtr *sessionController) trim(c *fiber.Ctx) error {
	var request struct {
		SourceVersion string             `json:"sourceVersion"`
		Ranges        []models.TimeRange `json:"ranges"`
		Join          bool               `json:"join"`
	}

	if err := c.BodyParser(&request); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if request.SourceVersion == "" {
		request.SourceVersion = models.SourceOriginal
	}

	v, err := sesCtr.srvEditor.ApplyTrim(
		context.TODO(),
		c.Params("id"),
		request.SourceVersion,
		request.Ranges,
		request.Join,
	)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"version": v,
	})
}

// join concatenates ranges of several registered sources.
func (sesCtr *sessionController) join(c *fiber.Ctx) error {
	var request struct {
		Sources []models.JoinSource `json:"sources"`
	}

	if err := c.BodyParser(&request); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	v, err := sesCtr.srvEditor.ApplyMultiJoin(context.TODO(), c.Params("id"), request.Sources)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"version": v,
	})
}
