// Package main provides the CLI entry point for viewcast.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"

	"github.com/user/viewcast/pkg/adapters/chromesurface"
	"github.com/user/viewcast/pkg/adapters/ffmpegmuxer"
	"github.com/user/viewcast/pkg/adapters/logger"
	"github.com/user/viewcast/pkg/adapters/osfilesystem"
	"github.com/user/viewcast/pkg/config"
	"github.com/user/viewcast/pkg/ports"
	"github.com/user/viewcast/pkg/recorder"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Record  RecordCmd  `cmd:"" help:"Record a live web page as MP4 video."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// RecordCmd defines the record subcommand.
type RecordCmd struct {
	// Required arguments
	URL    string `arg:"" help:"URL of the page to record."`
	Output string `short:"o" required:"" help:"Output MP4 file path."`

	// Config file
	Config string `short:"C" help:"YAML configuration file (flags override its values)."`

	// Capture options
	FPS      *int `short:"r" help:"Frames per second (default: 30)."`
	Width    *int `short:"W" help:"Capture width in pixels (default: 1280)."`
	Height   *int `short:"H" help:"Capture height in pixels (default: 720)."`
	Duration *int `short:"t" help:"Recording duration in milliseconds (default: 10000)."`

	// Encoding options
	Quality *int `short:"q" help:"Video quality (CRF 0-51, lower is better)."`
	Bitrate *int `help:"Target bitrate in kbps (0 leaves it to CRF)."`

	// Browser options
	NoHeadless        bool   `help:"Run browser in non-headless mode."`
	ChromePath        string `help:"Path to Chrome executable (falls back to CHROME_PATH env, then system default)."`
	UserAgent         string `help:"Custom User-Agent string."`
	IgnoreHTTPSErrors bool   `help:"Ignore HTTPS certificate errors."`
	ProxyServer       string `help:"HTTP proxy server (e.g., http://proxy:8080)."`

	// Encoder binary
	FFmpegPath string `help:"Path to ffmpeg executable (falls back to FFMPEG_PATH env, then PATH)."`

	// Logging options
	LogLevel string `short:"l" default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)."`
	Quiet    bool   `short:"Q" help:"Suppress all log output."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("viewcast"),
		kong.Description("Record live web pages as MP4 videos."),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// Run executes the record command.
func (cmd *RecordCmd) Run() error {
	cfg, err := cmd.buildConfig()
	if err != nil {
		return err
	}

	// Create logger
	var log ports.Logger
	if cfg.Quiet {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Create adapters
	fs := osfilesystem.New()
	writer := ffmpegmuxer.New(fs, log, ffmpegmuxer.Options{
		Quality:    cfg.Quality,
		Bitrate:    cfg.Bitrate,
		FFmpegPath: cfg.FFmpegPath,
	})

	surface := chromesurface.New(log)
	log.Info(l10n.F("Opening %s...", cfg.URL))
	if err := surface.Open(ctx, cfg.URL, chromesurface.Options{
		Headless:          cfg.Headless,
		ChromePath:        cfg.ChromePath,
		UserAgent:         cfg.UserAgent,
		Width:             cfg.Width,
		Height:            cfg.Height,
		IgnoreHTTPSErrors: cfg.IgnoreHTTPSErrors,
		ProxyServer:       cfg.ProxyServer,
	}); err != nil {
		return err
	}
	defer surface.Close()

	// Create the recording session
	session := recorder.New(writer, log)
	defer session.Close()
	session.SetOutputPath(cfg.OutputPath)
	session.SetFramesPerSecond(cfg.FPS)

	duration := time.Duration(cfg.DurationMs) * time.Millisecond
	result := make(chan error, 1)

	log.Info(l10n.F("Recording %s for %s...", cfg.URL, duration))
	err = session.Start(surface, recorder.StartOptions{
		Progress: func(elapsed time.Duration) float64 {
			if duration <= 0 {
				return 0
			}
			return min(elapsed.Seconds()/duration.Seconds(), 1)
		},
		OnResult: func(path string, err error) {
			result <- err
		},
	})
	if err != nil {
		return err
	}

	// Record until the duration elapses or the user interrupts.
	select {
	case <-time.After(duration):
	case <-sigCh:
		log.Warn(l10n.T("Interrupted, shutting down..."))
	}
	session.Stop()

	if err := <-result; err != nil {
		if errors.Is(err, recorder.ErrCancelled) {
			return fmt.Errorf(l10n.T("recording produced no output"))
		}
		return err
	}

	log.Info(l10n.F("Output saved to %s", cfg.OutputPath))
	return nil
}

// buildConfig merges defaults, an optional config file, and CLI overrides.
func (cmd *RecordCmd) buildConfig() (config.Config, error) {
	cfg := config.Defaults()
	if cmd.Config != "" {
		loaded, err := config.LoadFromFile(cmd.Config)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	cfg.URL = cmd.URL
	cfg.OutputPath = cmd.Output

	if cmd.FPS != nil {
		cfg.FPS = *cmd.FPS
	}
	if cmd.Width != nil {
		cfg.Width = *cmd.Width
	}
	if cmd.Height != nil {
		cfg.Height = *cmd.Height
	}
	if cmd.Duration != nil {
		cfg.DurationMs = *cmd.Duration
	}
	if cmd.Quality != nil {
		cfg.Quality = *cmd.Quality
	}
	if cmd.Bitrate != nil {
		cfg.Bitrate = *cmd.Bitrate
	}
	if cmd.NoHeadless {
		cfg.Headless = false
	}
	if cmd.ChromePath != "" {
		cfg.ChromePath = cmd.ChromePath
	}
	if cmd.UserAgent != "" {
		cfg.UserAgent = cmd.UserAgent
	}
	if cmd.IgnoreHTTPSErrors {
		cfg.IgnoreHTTPSErrors = true
	}
	if cmd.ProxyServer != "" {
		cfg.ProxyServer = cmd.ProxyServer
	}
	if cmd.FFmpegPath != "" {
		cfg.FFmpegPath = cmd.FFmpegPath
	}
	if cmd.LogLevel != "" {
		cfg.LogLevel = cmd.LogLevel
	}
	if cmd.Quiet {
		cfg.Quiet = true
	}

	return cfg, nil
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("viewcast version %s", version))
	return nil
}
