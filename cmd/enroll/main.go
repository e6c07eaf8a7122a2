package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/rekko-enroll/internal/config"
)

// Version is the application version
const Version = "0.1.0"

var (
	// launch parameters, applied once on top of the environment
	registryURL string
	identifier  string
)

var rootCmd = &cobra.Command{
	Use:   "rekko-enroll",
	Short: "Face enrollment station for the Rekko registry",
	Long: `rekko-enroll watches a camera, detects faces and enrolls the face of
the person in front of it into a recognition registry under an identifier.

Run "serve" for the operator API, or "capture" to enroll from the terminal.`,
	Version:      Version,
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&registryURL, "registry", "", "registry endpoint (overrides REGISTRY_URL)")
	rootCmd.PersistentFlags().StringVar(&identifier, "id", "", "identifier to pre-fill (overrides ENROLL_IDENTIFIER)")
}

func initConfig() {
	// .env file is optional
	_ = godotenv.Load()
}

// loadConfig reads the environment and applies the launch flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if registryURL != "" {
		cfg.RegistryURL = registryURL
	}
	if identifier != "" {
		cfg.Identifier = identifier
	}
	return cfg, nil
}

func confirm(r *bufio.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", prompt)
	res, _ := r.ReadString('\n')
	res = strings.TrimSpace(strings.ToLower(res))
	return res == "y" || res == "yes"
}
