package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/cache"
	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/domain"
)

var facesRmYes bool

var facesCmd = &cobra.Command{
	Use:   "faces",
	Short: "Manage the faces enrolled from this station",
}

var facesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List enrolled faces, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openCLIStation(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		faces, err := st.faces.List(cmd.Context())
		if err != nil && !errors.Is(err, cache.ErrCorrupt) {
			return err
		}
		printFaces(cmd.OutOrStdout(), faces)
		return nil
	},
}

var facesRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove an enrolled face from the registry and the local list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := strings.TrimSpace(args[0])

		st, err := openCLIStation(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		exists, err := st.faces.Has(cmd.Context(), id)
		if err != nil {
			return err
		}

		if !facesRmYes && !confirm(bufio.NewReader(os.Stdin), cmd.OutOrStdout(), fmt.Sprintf("Remove ID %q?", id)) {
			fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
			return nil
		}

		// ids missing locally are still sent, the registry may hold them
		err = st.registry.Remove(cmd.Context(), id)
		if errors.Is(err, domain.ErrFaceNotFound) && exists {
			err = nil
		}
		if errors.Is(err, domain.ErrFaceNotFound) {
			return fmt.Errorf("%s: %w", id, err)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ID %q removed\n", id)
		return nil
	},
}

func init() {
	facesRmCmd.Flags().BoolVarP(&facesRmYes, "yes", "y", false, "remove without asking")
	facesCmd.AddCommand(facesListCmd, facesRmCmd)
	rootCmd.AddCommand(facesCmd)
}

// openCLIStation opens the station with warnings-only logging on stderr
func openCLIStation(cmd *cobra.Command) (*station, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	return openStation(cmd.Context(), cfg, logger)
}

func printFaces(out io.Writer, faces []domain.EnrolledFace) {
	if len(faces) == 0 {
		fmt.Fprintln(out, "no enrolled faces")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tREGISTRY ID\tSNAPSHOT\tENROLLED")
	fmt.Fprintln(w, "--\t-----------\t--------\t--------")
	for _, f := range faces {
		snapshot := "no"
		if f.ImageSnapshot != "" {
			snapshot = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.ID, orDash(f.RegistryID), snapshot, f.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	_ = w.Flush()
}
