package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"scripture/internal/config"
	"scripture/internal/logger"
	"scripture/internal/objectstore"
)

var version = "1.0.0"

// cloudAnnotation marks commands that need Google Cloud credentials.
const cloudAnnotation = "cloud"

var (
	settings = config.New()
	cfg      config.Config
)

var rootCmd = &cobra.Command{
	Use:   "scripture",
	Short: "OCR and dictionary tooling for the scanned commentary library",
	Long: `scripture drives the OCR pipeline for the scanned Bible commentary volumes
stored in Cloud Storage and converts the Strong's dictionary and Bible text
sources into JSON.

Cloud commands (discover, list-files, debug-prefix, transcribe, flatten,
summary) require Google Cloud credentials. Converter commands (strongs, rekey,
missing, bible) work on local files only.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
}

// Settings returns the viper instance command flags are bound to.
func Settings() *viper.Viper {
	return settings
}

// Execute runs the root command.
func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("bucket", "", "Cloud Storage bucket (GCS_BUCKET)")
	rootCmd.PersistentFlags().String("input-prefix", "", "Prefix holding the scanned volumes (GCS_INPUT_PREFIX)")
	rootCmd.PersistentFlags().String("output-prefix", "", "Prefix OCR output is written to (GCS_OUTPUT_PREFIX)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error (LOG_LEVEL)")

	bindFlag(rootCmd.PersistentFlags(), "bucket", "GCS_BUCKET")
	bindFlag(rootCmd.PersistentFlags(), "input-prefix", "GCS_INPUT_PREFIX")
	bindFlag(rootCmd.PersistentFlags(), "output-prefix", "GCS_OUTPUT_PREFIX")
	bindFlag(rootCmd.PersistentFlags(), "log-level", "LOG_LEVEL")
}

// bindFlag lets a flag override the environment variable key. Viper only
// prefers a bound flag over the environment when the flag was actually set.
func bindFlag(flags *pflag.FlagSet, name, key string) {
	if err := settings.BindPFlag(key, flags.Lookup(name)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", name, err))
	}
}

// prepare reloads the configuration once flags are parsed and gates cloud
// commands on credentials.
func prepare(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(settings)
	if err != nil {
		return err
	}
	cfg = c
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if cmd.Annotations[cloudAnnotation] != "true" {
		return nil
	}
	if err := cfg.CheckCredentials(); err != nil {
		if errors.Is(err, config.ErrMissingCredentials) {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(1)
		}
		return err
	}
	return cfg.ValidateStorage()
}

// cloudCommand marks cmd as needing credentials and a bucket.
func cloudCommand(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[cloudAnnotation] = "true"
	return cmd
}

// createContextWithTimeout creates a context that is cancelled on SIGINT or
// SIGTERM. A zero timeout means no deadline.
func createContextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	log := logger.WithComponent("signal")

	ctx, cancel := context.WithCancel(context.Background())
	if timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, timeout)
		parent := cancel
		cancel = func() {
			cancelTimeout()
			parent()
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received signal, cancelling operation")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// openStore opens the configured bucket.
func openStore(ctx context.Context) (*objectstore.GCSStore, error) {
	store, err := objectstore.NewGCSStore(ctx, cfg.Bucket, cfg.ClientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %s: %w", cfg.Bucket, err)
	}
	return store, nil
}

// printBanner prints a titled separator block.
func printBanner(title string) {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println(title)
	fmt.Println(strings.Repeat("=", 80))
}
