package app

import (
	"log/slog"
	"os"
	"time"

	routerApp "github.com/nkoroteev/bleep/internal/app/router"
	"github.com/nkoroteev/bleep/internal/lib/ffmpeg"
	"github.com/nkoroteev/bleep/internal/lib/logger/sl"
	"github.com/nkoroteev/bleep/internal/lib/whisper"
	"github.com/nkoroteev/bleep/internal/storage/sqlite"
)

type App struct {
	Router  routerApp.App
	storage *sqlite.Storage
}

func New(
	log *slog.Logger,
	address string,
	storagePath string,
	timeout time.Duration,
	tokenTTL time.Duration,
	secret []byte,
	rootPass []byte,
	tmpDir string,
	sourceDir string,
	outputDir string,
	ffmpegPath string,
	ffprobePath string,
	whisperPath string,
	whisperModel string,
) *App {
	storage, err := sqlite.New(storagePath)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	for _, dir := range []string{tmpDir, sourceDir, outputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Error("failed to create dir", slog.String("dir", dir), sl.Err(err))
			os.Exit(1)
		}
	}

	exec := ffmpeg.New(ffmpegPath, ffprobePath)
	asr := whisper.New(whisperPath, whisperModel)

	routerApp := routerApp.New(
		log,
		storage,
		address,
		timeout,
		tokenTTL,
		secret,
		rootPass,
		tmpDir,
		sourceDir,
		outputDir,
		exec,
		asr,
	)

	return &App{
		Router:  *routerApp,
		storage: storage,
	}
}

func (a *App) Stop() {
	a.Router.Stop()
	a.storage.Stop()
}
