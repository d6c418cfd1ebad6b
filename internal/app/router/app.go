package router

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkoroteev/bleep/internal/lib/ffmpeg"
	"github.com/nkoroteev/bleep/internal/lib/whisper"
	"github.com/nkoroteev/bleep/internal/storage/sqlite"

	authSrv "github.com/nkoroteev/bleep/internal/service/auth"
	editorSrv "github.com/nkoroteev/bleep/internal/service/editor"
	jwtSrv "github.com/nkoroteev/bleep/internal/service/jwt"
	profanitySrv "github.com/nkoroteev/bleep/internal/service/profanity"
	rootSrv "github.com/nkoroteev/bleep/internal/service/root"
	sessionSrv "github.com/nkoroteev/bleep/internal/service/session"
	transcriptSrv "github.com/nkoroteev/bleep/internal/service/transcript"

	authCtr "github.com/nkoroteev/bleep/internal/controller/auth"
	jwtCtr "github.com/nkoroteev/bleep/internal/controller/jwt"
	rootCtr "github.com/nkoroteev/bleep/internal/controller/root"
	sessionCtr "github.com/nkoroteev/bleep/internal/controller/session"
)

type App struct {
	log     *slog.Logger
	address string
	app     *fiber.App
}

// New returns configured router.App
func New(
	log *slog.Logger,
	storage *sqlite.Storage,
	address string,
	timeout time.Duration,
	tokenTTL time.Duration,
	secret []byte,
	rootPass []byte,
	tmpDir string,
	sourceDir string,
	outputDir string,
	exec *ffmpeg.Executor,
	asr *whisper.Adapter,
) *App {
	// Create services
	jwt := jwtSrv.New(secret)

	rootPassHash, err := bcrypt.GenerateFromPassword(rootPass, bcrypt.DefaultCost)
	if err != nil {
		panic("invalid root password")
	}
	auth := authSrv.New(
		log,
		storage,
		jwt,
		rootPassHash,
		tokenTTL,
	)

	root := rootSrv.New(
		log,
		storage,
	)

	session := sessionSrv.New(
		log,
		storage,
		exec,
		sourceDir,
		outputDir,
	)

	transcript := transcriptSrv.New(
		log,
		session,
		asr,
		exec,
		tmpDir,
	)

	profanity := profanitySrv.New(
		log,
		storage,
		nil,
	)

	editor := editorSrv.New(
		log,
		session,
		exec,
	)

	// Create controller helper
	jwtCtr := jwtCtr.New(secret)

	app := fiber.New()

	// Mount controllers to an app
	app.Mount("/login", authCtr.New(timeout, auth))
	app.Mount("/root", rootCtr.New(root, jwtCtr))
	app.Mount("/session", sessionCtr.New(session, transcript, profanity, editor, jwtCtr, tmpDir))

	return &App{
		log:     log,
		address: address,
		app:     app,
	}
}

func (a *App) MustRun() {
	if err := a.Run(); err != nil {
		panic(err)
	}
}

func (a *App) Run() error {
	return a.app.Listen(a.address)
}

func (a *App) Stop() {
	a.app.Shutdown()
}
