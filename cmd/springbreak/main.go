// Spring Break: pick a language, dictate, shake the phone, travel.
//
// Usage:
//
//	springbreak [-simulate | -sensor-host 192.168.1.20:8080] [-voice] [-verbose] [-quiet]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hammamikhairi/springbreak/internal/audio"
	"github.com/hammamikhairi/springbreak/internal/config"
	"github.com/hammamikhairi/springbreak/internal/dispatch"
	"github.com/hammamikhairi/springbreak/internal/display"
	"github.com/hammamikhairi/springbreak/internal/domain"
	"github.com/hammamikhairi/springbreak/internal/language"
	"github.com/hammamikhairi/springbreak/internal/logger"
	"github.com/hammamikhairi/springbreak/internal/motion"
	"github.com/hammamikhairi/springbreak/internal/navigation"
	"github.com/hammamikhairi/springbreak/internal/notice"
	"github.com/hammamikhairi/springbreak/internal/screen"
	"github.com/hammamikhairi/springbreak/internal/shake"
	"github.com/hammamikhairi/springbreak/internal/speech"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	sensorHost := flag.String("sensor-host", "", "SensorServer host:port on the phone (shortcut for -sensor-url)")
	flag.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "file to write logs to (use \"stderr\" to log to console)")
	flag.StringVar(&cfg.SensorURL, "sensor-url", cfg.SensorURL, "SensorServer accelerometer WebSocket URL")
	flag.BoolVar(&cfg.Simulate, "simulate", cfg.Simulate, "use a simulated accelerometer (press 's' to shake)")
	flag.BoolVar(&cfg.Voice, "voice", cfg.Voice, "enable dictation via local Whisper STT")
	flag.StringVar(&cfg.WhisperBin, "whisper-bin", cfg.WhisperBin, "path to the whisper-cpp CLI binary")
	flag.StringVar(&cfg.WhisperModel, "whisper-model", cfg.WhisperModel, "path to the Whisper GGML model file")
	flag.DurationVar(&cfg.RecordDuration, "record-duration", cfg.RecordDuration, "length of one dictation recording")
	flag.StringVar(&cfg.ClipsDir, "clips-dir", cfg.ClipsDir, "directory holding <clip>.wav greeting files")
	flag.StringVar(&cfg.CacheDir, "cache-dir", cfg.CacheDir, "directory for synthesized greetings")
	flag.BoolVar(&cfg.DiskCache, "disk-cache", cfg.DiskCache, "persist synthesized greetings to disk (reads from disk even when false)")
	flag.BoolVar(&cfg.NoAudio, "no-audio", cfg.NoAudio, "never play greetings")
	flag.StringVar(&cfg.MapURL, "map-url", cfg.MapURL, "map URL template, %s is replaced by \"lat,lon\"")
	flag.BoolVar(&cfg.DesktopNotices, "desktop-notices", cfg.DesktopNotices, "also show notices as desktop notifications")
	flag.Float64Var(&cfg.ShakeThreshold, "shake-threshold", cfg.ShakeThreshold, "speed above which a movement counts as a shake")
	flag.DurationVar(&cfg.ShakeInterval, "shake-interval", cfg.ShakeInterval, "minimum time between evaluated samples")
	flag.Parse()

	if *sensorHost != "" {
		cfg.SensorURL = motion.SensorURL(*sensorHost)
	}
	if *verbose {
		cfg.LogLevel = logger.LevelVerbose
	}
	if *quiet {
		cfg.LogLevel = logger.LevelOff
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Direct logs to a file by default so the screen stays clean.
	var logOut io.Writer = os.Stderr
	if cfg.LogFile != "" && cfg.LogFile != "stderr" {
		dir := filepath.Dir(cfg.LogFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", cfg.LogFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Redirect Go's default log package (used by the whisper transcriber)
	// to the same output so it doesn't spam the terminal.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(cfg.LogLevel, logOut)

	// Set up context, cancelled when the UI quits.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := dispatch.New(log.Named("dispatch"))
	go loop.Run(ctx)

	// ── Accelerometer ──

	var sensor domain.MotionSensor
	var sim *motion.Simulator
	switch {
	case cfg.Simulate:
		sim = motion.NewSimulator(log.Named("motion"))
		sensor = sim
	case cfg.SensorURL != "":
		sensor = motion.NewWebSocket(cfg.SensorURL, log.Named("motion"))
	default:
		log.Info("no accelerometer: pass -sensor-host or -simulate")
	}

	// ── Screen host ──

	var ctrl *screen.Controller
	onLoop := func(name string, fn func() error) func() {
		return func() {
			loop.Post(func() {
				if err := fn(); err != nil {
					log.Warn("%s: %v", name, err)
				}
			})
		}
	}
	hooks := display.Hooks{
		Tap: func(i int) {
			onLoop("tap", func() error { return ctrl.Tap(i) })()
		},
		Foreground: onLoop("foreground", func() error { return ctrl.Foreground() }),
		Background: onLoop("background", func() error { return ctrl.Background() }),
	}
	if sim != nil {
		hooks.Shake = sim.Shake
	}
	ui := display.NewUI(language.Names(), hooks)

	// Notices show on screen and are kept in the scrollback above it.
	notifiers := notice.Fanout{ui, notice.NewConsole(log.Named("notice"), ui.Printf)}
	if cfg.DesktopNotices {
		notifiers = append(notifiers, notice.NewDesktop(log.Named("notice")))
	}

	// ── Dictation ──

	var rec domain.Recognizer = speech.NewNoOp(log.Named("speech"))
	if cfg.Voice {
		rec = speech.NewWhisper(cfg.WhisperBin, cfg.WhisperModel, log.Named("speech"),
			speech.WithRecordDuration(cfg.RecordDuration),
		)
		log.Info("voice input enabled (bin=%s, model=%s, clip=%s)", cfg.WhisperBin, cfg.WhisperModel, cfg.RecordDuration)
	}
	bridge := speech.NewBridge(rec, ui, notifiers, loop, log.Named("speech"),
		speech.WithListeningFunc(func(bool) { ctrl.Refresh() }),
	)

	// ── Greetings ──

	var player domain.AudioPlayer
	if !cfg.NoAudio {
		clipOpts := []audio.ClipOption{
			audio.WithCacheDir(cfg.CacheDir),
			audio.WithDiskWrite(cfg.DiskCache),
		}
		if cfg.AzureConfigured() {
			clipOpts = append(clipOpts, audio.WithSynthesizer(
				audio.NewAzureClient(cfg.AzureKey, cfg.AzureRegion, log.Named("tts"))))
			log.Info("greeting synthesis enabled (region=%s)", cfg.AzureRegion)
		} else {
			log.Info("greeting synthesis disabled: set %s and %s env vars to enable",
				config.EnvAzureSpeechKey, config.EnvAzureSpeechRegion)
		}
		clips := audio.NewClipStore(cfg.ClipsDir, log.Named("clips"), clipOpts...)

		p, err := audio.NewPlayer(clips, log.Named("audio"))
		if err != nil {
			log.Error("audio player init failed, greetings disabled: %v", err)
		} else {
			player = p
		}
	}

	// ── Travel ──

	selector := language.NewSelector(log.Named("language"))
	viewer := navigation.NewOSViewer(log.Named("map"), navigation.WithURLTemplate(cfg.MapURL))
	launcher := navigation.New(selector, player, viewer, notifiers, log.Named("navigation"))

	ctrl = screen.New(screen.Services{
		Selector:   selector,
		Speech:     bridge,
		Navigator:  launcher,
		Sensor:     sensor,
		Notifier:   notifiers,
		Dispatcher: loop,
	}, log.Named("screen"),
		screen.WithDetectorOptions(
			shake.WithThreshold(cfg.ShakeThreshold),
			shake.WithMinInterval(cfg.ShakeInterval),
		),
		screen.WithStatusFunc(ui.SetStatus),
	)

	fmt.Println(display.RenderBanner("Pick a language, then shake your phone to travel."))
	if sim != nil {
		fmt.Println(display.BannerStyle.Render("  Simulated accelerometer ON: press 's' to shake."))
	}
	fmt.Println()

	// The screen starts once Bubble Tea owns the terminal.
	go func() {
		ui.WaitReady()
		loop.Post(func() {
			if err := ctrl.Start(ctx); err != nil {
				log.Error("start: %v", err)
				return
			}
			if err := ctrl.Foreground(); err != nil {
				log.Error("foreground: %v", err)
			}
		})
	}()

	// SIGTERM (or SIGINT outside raw mode) closes the screen like 'q'.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			log.Info("received %s, quitting", sig)
			ui.Quit()
		case <-ui.QuitChan():
		}
	}()

	// Bubble Tea owns the terminal; blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}

	loop.Sync(func() {
		if err := ctrl.Stop(); err != nil {
			log.Warn("stop: %v", err)
		}
	})
	cancel()
}
