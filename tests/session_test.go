package tests

import (
	"net/url"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/stretchr/testify/require"

	"github.com/nkoroteev/bleep/internal/models"
	"github.com/nkoroteev/bleep/tests/suite"
)

func newExpect(t *testing.T) (*httpexpect.Expect, string) {
	t.Helper()

	token, err := suite.RootLogin()
	require.NoError(t, err)

	u := url.URL{
		Scheme: "http",
		Host:   cfg.Address,
	}

	return httpexpect.Default(t, u.String()), token
}

func TestSessionLifecycle(t *testing.T) {
	e, token := newExpect(t)

	resp := e.POST("/session").
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200)

	id := resp.JSON().Path("$.session.id").String().NotEmpty().Raw()

	// fresh session has empty history
	e.GET("/session/"+id+"/history").
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200).
		JSON().Path("$.history").Array().IsEmpty()

	// and an empty custom vocabulary
	e.GET("/session/"+id+"/words").
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200).
		JSON().Path("$.words").Array().IsEmpty()

	e.DELETE("/session/"+id).
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200)

	// destroy is idempotent
	e.DELETE("/session/"+id).
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200)

	// but the history is gone
	e.GET("/session/"+id+"/history").
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(404)
}

func TestSessionRequiresAuth(t *testing.T) {
	u := url.URL{
		Scheme: "http",
		Host:   cfg.Address,
	}
	e := httpexpect.Default(t, u.String())

	e.POST("/session").
		Expect().
		Status(401)
}

func TestUnknownSession(t *testing.T) {
	e, token := newExpect(t)

	e.GET("/session/no-such-session/history").
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(404).
		JSON().Path("$.error").String().IsEqualFold("session not found")
}

func TestCustomWords(t *testing.T) {
	e, token := newExpect(t)

	id := e.POST("/session").
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200).
		JSON().Path("$.session.id").String().Raw()
	defer e.DELETE("/session/" + id).
		WithHeader("Authorization", "Bearer " + token).
		Expect()

	e.POST("/session/"+id+"/words").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(map[string]any{"words": []string{"Gnarly", "bogus"}}).
		Expect().
		Status(200)

	words := e.GET("/session/"+id+"/words").
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200).
		JSON().Path("$.words").Array()

	words.ContainsAll("gnarly", "bogus")
}

func TestProfanityDetection(t *testing.T) {
	e, token := newExpect(t)

	id := e.POST("/session").
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200).
		JSON().Path("$.session.id").String().Raw()
	defer e.DELETE("/session/" + id).
		WithHeader("Authorization", "Bearer " + token).
		Expect()

	entries := []models.TranscriptEntry{
		{Index: 1, Start: 0, End: 2, Text: "hello damn world"},
		{Index: 2, Start: 2, End: 4, Text: "all clean here"},
	}

	report := e.POST("/session/"+id+"/profanity").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(map[string]any{"lang": "en", "entries": entries}).
		Expect().
		Status(200).
		JSON().Path("$.report").Object()

	report.Path("$.segments").Array().Length().IsEqual(1)
	report.Path("$.segments[0].entryIndex").Number().IsEqual(1)
	report.Path("$.hits[0].word").String().IsEqual("damn")
}

func TestEditValidation(t *testing.T) {
	e, token := newExpect(t)

	id := e.POST("/session").
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200).
		JSON().Path("$.session.id").String().Raw()
	defer e.DELETE("/session/" + id).
		WithHeader("Authorization", "Bearer " + token).
		Expect()

	// inverted range
	e.POST("/session/"+id+"/mute").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(map[string]any{
			"ranges": []models.TimeRange{{Start: 2, End: 1}},
		}).
		Expect().
		Status(400)

	// several ranges without join
	e.POST("/session/"+id+"/trim").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(map[string]any{
			"ranges": []models.TimeRange{{Start: 0, End: 1}, {Start: 2, End: 3}},
			"join":   false,
		}).
		Expect().
		Status(400)

	// join with a single range
	e.POST("/session/"+id+"/trim").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(map[string]any{
			"ranges": []models.TimeRange{{Start: 0, End: 1}},
			"join":   true,
		}).
		Expect().
		Status(400)

	// join without sources
	e.POST("/session/"+id+"/join").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(map[string]any{"sources": []models.JoinSource{}}).
		Expect().
		Status(400)

	// mute against a session without sources
	e.POST("/session/"+id+"/mute").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(map[string]any{
			"ranges": []models.TimeRange{{Start: 0, End: 1}},
		}).
		Expect().
		Status(404)
}
