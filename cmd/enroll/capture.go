package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/config"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/console"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/enroll"
)

var (
	captureStable  int
	captureYes     bool
	captureTimeout time.Duration
)

var captureCmd = &cobra.Command{
	Use:   "capture [id]",
	Short: "Enroll the person in front of the camera from the terminal",
	Long: `Starts the camera and waits until exactly one face has been in view for
--stable consecutive detection ticks, then enrolls it under the identifier
given as argument, --id or ENROLL_IDENTIFIER.

With CONFLICT_POLICY=confirm an identifier that is already enrolled is only
overwritten after confirmation (or with --yes).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCapture,
}

func init() {
	captureCmd.Flags().IntVar(&captureStable, "stable", 2, "consecutive ready ticks required before enrolling")
	captureCmd.Flags().BoolVarP(&captureYes, "yes", "y", false, "overwrite an enrolled identifier without asking")
	captureCmd.Flags().DurationVar(&captureTimeout, "timeout", 30*time.Second, "give up when no single face is seen in time")
	rootCmd.AddCommand(captureCmd)
}

func runCapture(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.Identifier = args[0]
	}

	logger, err := captureLogger(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	st, err := openStation(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	term := console.New(os.Stderr)
	defer func() { _ = term.Close() }()

	session, err := st.newSession(term)
	if err != nil {
		return err
	}
	session.Open(ctx)
	defer func() { _ = session.Close() }()

	if session.Identifier() == "" {
		return errors.New("an identifier is required: pass it as argument, with --id or ENROLL_IDENTIFIER")
	}

	if err := session.StartCamera(ctx); err != nil {
		return err
	}

	if err := waitReady(ctx, session.Gate(), captureStable, captureTimeout, cfg.PollInterval); err != nil {
		return err
	}

	face, err := session.Submit(ctx, stdinConfirmer(bufio.NewReader(os.Stdin), os.Stderr, captureYes))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "enrolled %s (registry id %s)\n", face.ID, orDash(face.RegistryID))
	return nil
}

// captureLogger keeps the terminal for the spinner: logs go to LOG_FILE
// when set, otherwise only warnings reach stderr
func captureLogger(cfg *config.Config) (*slog.Logger, error) {
	if cfg.LogFile != "" {
		return config.NewFileLogger(cfg.Environment, cfg.LogFile)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})), nil
}

// waitReady blocks until the gate has allowed enrollment for stable
// consecutive detection ticks
func waitReady(ctx context.Context, gate *enroll.Gate, stable int, timeout, poll time.Duration) error {
	if stable < 1 {
		stable = 1
	}
	if poll <= 0 {
		poll = 100 * time.Millisecond
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(poll / 2)
	defer ticker.Stop()

	for {
		if gate.ReadyStreak() >= stable {
			return nil
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("not ready after %s: %s", timeout, gate.Decision().Reason)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func stdinConfirmer(r *bufio.Reader, w io.Writer, yes bool) enroll.Confirmer {
	return enroll.ConfirmFunc(func(ctx context.Context, id string) (bool, error) {
		if yes {
			return true, nil
		}
		return confirm(r, w, fmt.Sprintf("\nID %q is already enrolled. Overwrite it?", id)), nil
	})
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
