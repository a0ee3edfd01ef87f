package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/iburimskiy/vfx-studio/internal/bench"
	"github.com/iburimskiy/vfx-studio/internal/config"
	"github.com/iburimskiy/vfx-studio/internal/effect"
	"github.com/iburimskiy/vfx-studio/internal/effect/respiration"
	"github.com/iburimskiy/vfx-studio/internal/server"
	"github.com/iburimskiy/vfx-studio/internal/storage"
	"github.com/iburimskiy/vfx-studio/internal/studio"
	"github.com/iburimskiy/vfx-studio/internal/termview"
)

type options struct {
	settingsPath string
	effect       string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &options{}
	var serve bool

	cmd := &cobra.Command{
		Use:           config.AppName,
		Short:         "Preview, benchmark and serve real-time visual effects",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runWindow(cmd.Context(), opts, serve)
			if err != nil {
				log.Printf("[studio] %v", err)
				notifyFatal(err)
			}
			return err
		},
	}
	cmd.PersistentFlags().StringVar(&opts.settingsPath, "settings", "", "settings file (default: data directory)")
	cmd.PersistentFlags().StringVar(&opts.effect, "effect", "", "effect to open (default: settings)")
	cmd.Flags().BoolVar(&serve, "serve", false, "also run the HTTP backend")

	cmd.AddCommand(serveCmd(opts), termCmd(opts), benchCmd(opts))
	return cmd
}

// load reads the settings and builds a registry with the built-in effects.
func (o *options) load() (*config.Settings, *effect.Registry, error) {
	path := o.settingsPath
	if path == "" {
		p, err := config.SettingsPath()
		if err != nil {
			return nil, nil, err
		}
		path = p
	}
	settings, err := config.LoadSettings(path)
	if err != nil {
		return nil, nil, err
	}
	if o.effect != "" {
		settings.DefaultEffect = o.effect
	}

	reg := effect.NewRegistry()
	if err := respiration.Register(reg); err != nil {
		return nil, nil, err
	}
	return settings, reg, nil
}

func newServer(reg *effect.Registry) *server.Server {
	store := storage.NewMemStore(storage.BuiltinRecord(respiration.Info(), respiration.Schema()))
	return server.New(store, server.WithRegistry(reg))
}

func runWindow(ctx context.Context, opts *options, serve bool) error {
	settings, reg, err := opts.load()
	if err != nil {
		return err
	}
	dataDir, err := config.DataDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if serve {
		srv := newServer(reg)
		go func() {
			if err := srv.Run(ctx, settings.ServerAddr); err != nil {
				log.Printf("[server] %v", err)
			}
		}()
	}

	st := studio.New(reg, settings)
	defer st.Close()
	if err := st.Select(settings.DefaultEffect); err != nil {
		return err
	}
	st.Start(ctx)

	g := newGame(st, reg, settings, dataDir)
	defer g.player.Close()

	ebiten.SetWindowSize(config.WindowWidth, config.WindowHeight)
	ebiten.SetWindowTitle("VFX Studio - " + st.Info().Name)
	ebiten.SetTPS(settings.MaxFPS)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

func serveCmd(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the effect library HTTP backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, reg, err := opts.load()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = settings.ServerAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return newServer(reg).Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: settings)")
	return cmd
}

func termCmd(opts *options) *cobra.Command {
	var fps int
	cmd := &cobra.Command{
		Use:   "term",
		Short: "Preview an effect in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, reg, err := opts.load()
			if err != nil {
				return err
			}
			if fps <= 0 {
				fps = settings.MaxFPS
			}

			st := studio.New(reg, settings)
			defer st.Close()
			if err := st.Select(settings.DefaultEffect); err != nil {
				return err
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("failed to open terminal: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("failed to init terminal: %w", err)
			}
			defer screen.Fini()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			st.Start(ctx)

			w, h := settings.CanvasSize()
			return termview.New(screen, st, w, h, fps).Run(ctx)
		},
	}
	cmd.Flags().IntVar(&fps, "fps", 30, "frames per second")
	return cmd
}

func benchCmd(opts *options) *cobra.Command {
	b := bench.DefaultOptions()
	var params map[string]string
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Render an effect headless and report frame times",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, err := opts.load()
			if err != nil {
				return err
			}
			if opts.effect != "" {
				b.Effect = opts.effect
			}
			b.Params = make(map[string]any, len(params))
			for k, v := range params {
				b.Params[k] = parseParam(v)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			res, err := bench.Run(ctx, reg, b)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Render())
			return nil
		},
	}
	cmd.Flags().IntVar(&b.Frames, "frames", b.Frames, "frames to render")
	cmd.Flags().IntVar(&b.Width, "width", b.Width, "canvas width")
	cmd.Flags().IntVar(&b.Height, "height", b.Height, "canvas height")
	cmd.Flags().BoolVar(&b.Trace, "trace", false, "count draw calls instead of rasterizing")
	cmd.Flags().StringToStringVar(&params, "set", nil, "parameter overrides, e.g. --set stress=0.8,colorTheme=neon")
	return cmd
}

// parseParam turns a flag value into the type its parameter expects.
func parseParam(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}
