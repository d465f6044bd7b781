// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ringviz/internal/config"
	"ringviz/pkg/build"
)

const (
	CommandRun     = "run"
	CommandList    = "list"
	CommandDevices = "devices"
	CommandVersion = "version"
)

// Options is the parsed command line: which command to run and the
// configuration it runs with. Command is empty when cobra handled the
// invocation itself, e.g. --help.
type Options struct {
	Command    string
	ConfigPath string
	Config     *config.Config
}

// flagValues holds flags that override the loaded configuration. Only flags
// set on the command line are applied.
type flagValues struct {
	device          int
	sampleRate      float64
	channels        int
	framesPerBuffer int
	lowLatency      bool
	record          bool
	output          string
	verbose         bool
	width           int
	height          int
	overlay         string
	websocket       string
	udp             string
	recognize       bool
	autoStart       bool
}

// ParseArgs parses args (without the program name) and loads the
// configuration the chosen command runs with.
func ParseArgs(args []string) (*Options, error) {
	opts := &Options{}
	root := newRootCmd(opts)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		return nil, err
	}
	return opts, nil
}

func newRootCmd(opts *Options) *cobra.Command {
	buildInfo := build.GetBuildFlags()
	defaults := config.Default()
	var fv flagValues

	selectCommand := func(name string) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(opts.ConfigPath)
			if err != nil {
				return err
			}
			if err := applyFlags(cmd, cfg, fv); err != nil {
				return err
			}
			opts.Command = name
			opts.Config = cfg
			return nil
		}
	}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		Args: cobra.NoArgs,
		RunE: selectCommand(CommandRun),
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   CommandList,
			Short: "List available audio devices",
			Args:  cobra.NoArgs,
			RunE:  selectCommand(CommandList),
		},
		&cobra.Command{
			Use:   CommandDevices,
			Short: "Choose an input device interactively",
			Args:  cobra.NoArgs,
			RunE:  selectCommand(CommandDevices),
		},
		&cobra.Command{
			Use:   CommandVersion,
			Short: "Print build information",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				opts.Command = CommandVersion
				return nil
			},
		},
	)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", "",
		"Path to a YAML config file (default: ./config.yaml or ./ringviz.yaml if present)")

	// Audio Device Configuration
	pf.IntVarP(&fv.device, "device", "d", defaults.Audio.InputDevice,
		"Specify input device ID. Use 'list' command to see available devices.")
	pf.Float64VarP(&fv.sampleRate, "sample-rate", "s", defaults.Audio.SampleRate,
		"Sample rate, measured in Hertz (Hz)")
	pf.IntVarP(&fv.channels, "channels", "c", defaults.Audio.InputChannels,
		"Number of channels to capture; the first is analysed")
	pf.IntVarP(&fv.framesPerBuffer, "frames-per-buffer", "b", defaults.Audio.FramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	pf.BoolVarP(&fv.lowLatency, "low-latency", "l", defaults.Audio.LowLatency,
		"Use low latency mode for real-time processing")
	pf.BoolVar(&fv.autoStart, "auto-start", !defaults.Audio.StartSuspended,
		"Start capturing immediately instead of waiting for a click")

	// Recording Configuration
	pf.BoolVarP(&fv.record, "record", "r", defaults.Recording.Enabled,
		"Record the input stream to a WAV file")
	pf.StringVarP(&fv.output, "output", "o", defaults.Recording.OutputFile,
		"Output file name. Default is ringviz-YYYYMMDD-HHMMSS.wav")

	// Visual Configuration
	pf.IntVar(&fv.width, "width", defaults.Visual.Width, "Canvas width in pixels")
	pf.IntVar(&fv.height, "height", defaults.Visual.Height, "Canvas height in pixels")
	pf.StringVar(&fv.overlay, "overlay", defaults.Visual.Style.Overlay, "PNG image drawn over the centre of the canvas")

	// Outputs
	pf.StringVar(&fv.websocket, "websocket", "", "Serve frame stats to websocket clients on this address (e.g. :8080)")
	pf.StringVar(&fv.udp, "udp", "", "Send band energies as UDP packets to this address (e.g. 127.0.0.1:9090)")
	pf.BoolVar(&fv.recognize, "recognize", defaults.Recognition.Enabled, "Identify the playing song periodically")

	// Debug Configuration
	pf.BoolVarP(&fv.verbose, "verbose", "v", defaults.Debug, "Show verbose output")

	return rootCmd
}

// applyFlags copies explicitly set flags into cfg and validates the result.
func applyFlags(cmd *cobra.Command, cfg *config.Config, fv flagValues) error {
	changed := cmd.Flags().Changed

	if changed("device") {
		cfg.Audio.InputDevice = fv.device
	}
	if changed("sample-rate") {
		cfg.Audio.SampleRate = fv.sampleRate
	}
	if changed("channels") {
		cfg.Audio.InputChannels = fv.channels
	}
	if changed("frames-per-buffer") {
		cfg.Audio.FramesPerBuffer = fv.framesPerBuffer
	}
	if changed("low-latency") {
		cfg.Audio.LowLatency = fv.lowLatency
	}
	if changed("auto-start") {
		cfg.Audio.StartSuspended = !fv.autoStart
	}
	if changed("record") {
		cfg.Recording.Enabled = fv.record
	}
	if changed("output") {
		cfg.Recording.OutputFile = fv.output
	}
	if changed("width") {
		cfg.Visual.Width = fv.width
	}
	if changed("height") {
		cfg.Visual.Height = fv.height
	}
	if changed("overlay") {
		cfg.Visual.Style.Overlay = fv.overlay
	}
	if changed("websocket") {
		cfg.Transport.WebSocketEnabled = fv.websocket != ""
		cfg.Transport.WebSocketAddress = fv.websocket
	}
	if changed("udp") {
		cfg.Transport.UDPEnabled = fv.udp != ""
		cfg.Transport.UDPTargetAddress = fv.udp
	}
	if changed("recognize") {
		cfg.Recognition.Enabled = fv.recognize
	}
	if changed("verbose") {
		cfg.Debug = fv.verbose
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
