package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/api"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/config"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/console"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/enroll"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/ws"
)

var (
	serveNoCamera bool
	serveConsole  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the station with the operator API and live event stream",
	Long: `Starts the detection loop and serves the operator API on PORT:
camera control, identifier, enrollment, the enrolled list and a websocket
stream of gate, status and overlay updates at /v1/ws.

The camera starts automatically unless --no-camera is given, and is
released on shutdown.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoCamera, "no-camera", false, "do not start the camera on launch")
	serveCmd.Flags().BoolVar(&serveConsole, "console", false, "also show the gate status on the terminal")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := config.NewFileLogger(cfg.Environment, cfg.LogFile)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	logger.Info("starting enrollment station",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("registry", cfg.RegistryURL),
		slog.String("detector", cfg.Detector),
	)

	ctx := cmd.Context()
	st, err := openStation(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	hub := ws.NewHub()
	hub.SetLogger(logger)
	views := []enroll.View{ws.NewView(hub), enroll.NewLogView(logger)}
	if serveConsole {
		term := console.New(os.Stderr)
		defer func() { _ = term.Close() }()
		views = append(views, term)
	}

	session, err := st.newSession(enroll.Views(views...))
	if err != nil {
		return err
	}
	session.Open(ctx)

	if !serveNoCamera {
		// the failure was already shown to the operator, who can retry from the API
		if err := session.StartCamera(ctx); err != nil {
			logger.Warn("camera not started", slog.Any("error", err))
		}
	}

	router := api.NewRouter(logger, &api.Dependencies{
		Station:   session,
		Hub:       hub,
		Readiness: st.readiness(),
	})
	router.Setup()

	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		serveErr = fmt.Errorf("server error: %w", err)
	}

	if err := session.Close(); err != nil {
		logger.Error("failed to release camera", slog.Any("error", err))
	}
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}
	logger.Info("station stopped")

	return serveErr
}
