package tests

import (
	"net/url"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gavv/httpexpect/v2"
	"github.com/stretchr/testify/require"

	"github.com/nkoroteev/bleep/internal/models"
	"github.com/nkoroteev/bleep/tests/suite"
)

func TestGetEditors(t *testing.T) {
	token, err := suite.RootLogin()
	require.NoError(t, err)

	u := url.URL{
		Scheme: "http",
		Host:   cfg.Address,
	}
	e := httpexpect.Default(t, u.String())

	e.GET("/root/editors").
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200).
		JSON().
		Object().
		Keys().
		ContainsOnly("editors")
}

func TestCreateNewEditor(t *testing.T) {
	token, err := suite.RootLogin()
	require.NoError(t, err)

	login := gofakeit.Name()
	pass := suite.RandomFakePassword()

	u := url.URL{
		Scheme: "http",
		Host:   cfg.Address,
	}
	e := httpexpect.Default(t, u.String())

	e.POST("/root/editors").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(struct {
			User models.EditorIn `json:"editor"`
		}{
			User: models.EditorIn{
				Login: login,
				Pass:  pass,
			},
		}).Expect().
		Status(200).
		JSON().
		Object().
		Keys().
		ContainsOnly("id")
}

func TestDoubleCreateEditor(t *testing.T) {
	token, err := suite.RootLogin()
	require.NoError(t, err)

	login := gofakeit.Name()
	pass := suite.RandomFakePassword()

	u := url.URL{
		Scheme: "http",
		Host:   cfg.Address,
	}
	e := httpexpect.Default(t, u.String())

	form := struct {
		User models.EditorIn `json:"editor"`
	}{
		User: models.EditorIn{
			Login: login,
			Pass:  pass,
		},
	}

	e.POST("/root/editors").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(form).
		Expect().
		Status(200)

	e.POST("/root/editors").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(form).
		Expect().
		Status(400).
		JSON().Path("$.error").String().IsEqualFold("editor exists")
}
