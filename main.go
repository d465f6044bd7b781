// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"ringviz/cmd"
	"ringviz/internal/analysis"
	"ringviz/internal/audio"
	"ringviz/internal/config"
	"ringviz/internal/engine"
	"ringviz/internal/log"
	"ringviz/internal/recognition"
	"ringviz/internal/render"
	"ringviz/internal/transport"
	"ringviz/internal/transport/udp"
	"ringviz/internal/tui"
	"ringviz/pkg/build"
)

const clickToStartStatus = "Click to start listening"

// main is the entry point for the visualiser.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Parse command line arguments and load configuration
//   - Execute one-off commands if requested
//   - Initialize PortAudio, the analyser, the capture engine and the visual engine
//
// 2. Concurrent Phase (Hot Path):
//   - PortAudio callback feeds the analyser and the capture window
//   - Recognition task and UDP publisher run in an errgroup
//   - ebiten drives Tick and Render on the main thread
//
// 3. Shutdown Phase (Cold Path):
//   - Window closed, Esc/Q, or termination signal
//   - Stop background tasks, recording and transports
//   - Clean up resources
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	if err := build.Initialize(); err != nil {
		log.Fatal(err)
	}

	opts, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	if opts.Config != nil {
		log.Configure(opts.Config.LogLevel, opts.Config.Debug)
	}

	if err := execute(opts); err != nil {
		log.Fatal(err)
	}
}

func execute(opts *cmd.Options) error {
	switch opts.Command {
	case cmd.CommandRun:
		return run(opts.Config)
	case cmd.CommandList:
		if err := audio.Initialize(); err != nil {
			return err
		}
		defer audio.Terminate()
		return audio.ListDevices(os.Stdout)
	case cmd.CommandDevices:
		return pickDevice()
	case cmd.CommandVersion:
		fmt.Println(build.GetBuildFlags())
		return nil
	default:
		// Help or --version was already printed by cobra.
		return nil
	}
}

func pickDevice() error {
	sel, err := tui.PickDevice(audio.GetDevices)
	if err != nil {
		return err
	}
	if !sel.Chosen {
		return nil
	}
	fmt.Printf("Selected [%d] %s at %.0f Hz\n", sel.DeviceID, sel.DeviceName, sel.SampleRate)
	fmt.Printf("Run: %s %s\n", build.GetBuildFlags().Name, sel.Args())
	return nil
}

func run(cfg *config.Config) error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	analyzer, err := analysis.NewAnalyzer(cfg.Analysis, cfg.Audio.SampleRate, cfg.Visual.Waveform.Length)
	if err != nil {
		return err
	}

	capture, err := audio.NewEngine(cfg, analyzer)
	if err != nil {
		return err
	}
	defer func() {
		if err := capture.Close(); err != nil {
			log.Errorf("Error closing audio engine: %v", err)
		}
	}()

	eng, err := engine.New(cfg.Visual)
	if err != nil {
		return err
	}

	transports, publisher, err := setupTransports(cfg, eng)
	if err != nil {
		return err
	}
	defer func() {
		if err := transports.Close(); err != nil {
			log.Errorf("Error closing transports: %v", err)
		}
	}()
	if publisher != nil {
		defer publisher.Close()
	}
	if len(transports) > 0 {
		eng.SetSink(transports)
	}

	var screen *render.Screen
	if path := cfg.Visual.Style.Overlay; path != "" {
		overlay, err := render.LoadOverlay(path)
		if err != nil {
			return err
		}
		screen = render.NewScreen(overlay)
	} else {
		screen = render.NewScreen(nil)
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Nothing is captured until Resume when starting suspended; the first
	// click in the window resumes.
	if err := capture.Start(); err != nil {
		return err
	}
	if cfg.Audio.StartSuspended && !(cfg.Recognition.Enabled && cfg.Recognition.AutoResume) {
		eng.Signals().SetStatus(clickToStartStatus)
	}

	if cfg.Recording.Enabled {
		filename := audio.RecordingFilename(cfg.Recording.OutputFile, time.Now())
		if err := capture.StartRecording(filename); err != nil {
			return err
		}
		defer func() {
			if err := capture.StopRecording(); err != nil {
				log.Errorf("Error stopping recording: %v", err)
				return
			}
			fmt.Printf("\nRecording saved to: %s\n", filename)
		}()
	}

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Recognition.Enabled {
		task := recognition.NewTask(cfg.Recognition, capture, recognition.NewClient(cfg.Recognition), eng.Signals())
		g.Go(func() error { return task.Run(gctx) })
	}
	if publisher != nil {
		g.Go(func() error { return publisher.Run(gctx) })
	}

	game := render.NewGame(eng, analyzer, capture, cfg.Visual, screen)
	runErr := render.Run(gctx, game, build.GetBuildFlags().Name)

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	stop()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		runErr = errors.Join(runErr, err)
	}

	fresh, stale := eng.Counts()
	log.Infof("Engine: Stopped (Frames: %d fresh, %d reused)", fresh, stale)
	return runErr
}

// setupTransports builds the configured stats transports. The UDP publisher
// is returned separately because it runs on its own clock.
func setupTransports(cfg *config.Config, eng *engine.Engine) (transport.Multi, *udp.Publisher, error) {
	var (
		multi     transport.Multi
		publisher *udp.Publisher
	)

	if cfg.Debug {
		multi = append(multi, transport.NewLoggingTransport(60))
	}

	if cfg.Transport.WebSocketEnabled {
		ws, err := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddress)
		if err != nil {
			return multi, nil, errors.Join(err, multi.Close())
		}
		multi = append(multi, ws)
	}

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			return multi, nil, errors.Join(err, multi.Close())
		}
		publisher, err = udp.NewPublisher(cfg.Transport.UDPSendInterval, sender, eng)
		if err != nil {
			return multi, nil, errors.Join(err, sender.Close(), multi.Close())
		}
	}

	return multi, publisher, nil
}
