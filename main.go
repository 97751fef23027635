package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"MySketchBoard/internal/config"
	"MySketchBoard/internal/logging"
	"MySketchBoard/internal/match"
	lnet "MySketchBoard/internal/net"
	"MySketchBoard/internal/server"
	"MySketchBoard/internal/ui"
)

// Version of the board. Set with -ldflags during release.
var Version = "0.0.0"

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:           "sketchboard",
		Short:         "Sketch Board",
		Long:          "Sketch Board - draw with a marker, save the drawing and find similar sketches",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLog, err := setup(cmd, configFile)
			if err != nil {
				return err
			}
			defer closeLog()
			if err := ui.RunApp(cfg); err != nil {
				log.Error().Err(err).Msg("[UI] board failed")
				return err
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "config.json", "path to config file")
	config.DefineFlags(root)

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the save and search server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLog, err := setup(cmd, configFile)
			if err != nil {
				return err
			}
			defer closeLog()
			if err := serve(cfg); err != nil {
				log.Error().Err(err).Msg("[SERVER] stopped")
				return err
			}
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Sketch Board version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Sketch Board v%s\n", Version)
		},
	})
	return root
}

func setup(cmd *cobra.Command, configFile string) (config.Config, func(), error) {
	cfg, err := config.GetConfig(cmd, configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return config.Config{}, nil, err
	}
	closeLog, err := logging.Setup(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return config.Config{}, nil, err
	}
	return cfg, closeLog, nil
}

func serve(cfg config.Config) error {
	store, err := server.NewStore(cfg.Storage.Dir)
	if err != nil {
		return err
	}
	library, err := match.LoadLibrary(cfg.Library.Dir, match.DefaultMatcher)
	if err != nil {
		return err
	}
	srv, err := server.New(store, library)
	if err != nil {
		return err
	}

	if cfg.MDNS.Enabled {
		advert, err := lnet.Advertise(cfg.HTTP.Port)
		if err != nil {
			log.Warn().Err(err).Msg("[NET] mDNS advertisement disabled")
		} else {
			defer func() { _ = advert.Shutdown() }()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx, cfg.HTTP.Addr())
}
