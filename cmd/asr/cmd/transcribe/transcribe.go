package transcribe

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sensevoice-asr/internal/app"
	"sensevoice-asr/internal/app/asr"
	"sensevoice-asr/internal/config"
)

var (
	language string
	noITN    bool
)

func init() {
	Cmd.Flags().StringVarP(&language, "language", "l", "auto", "language hint: auto, zh, en, yue, ja, ko or nospeech")
	Cmd.Flags().BoolVar(&noITN, "no-itn", false, "disable inverse text normalisation and punctuation")
}

// Cmd represents the transcribe command
var Cmd = &cobra.Command{
	Use:   "transcribe <file>",
	Short: "Transcribe one audio file and print the text",
	Long: `Transcribe one audio file and print the text

Uses the configured backend and the same post-processing as POST /asr.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, logger, err := app.Bootstrap(nil)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		text, err := Run(cmd.Context(), settings, logger, args[0], asr.Input{
			Language: language,
			UseITN:   !noITN,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

// Run loads the model and transcribes path. in.Audio and in.Filename are
// filled from the file.
func Run(ctx context.Context, settings *config.Settings, logger *zap.Logger, path string, in asr.Input) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return transcribe(ctx, settings, logger, f, filepath.Base(path), in)
}

func transcribe(ctx context.Context, settings *config.Settings, logger *zap.Logger, audio io.Reader, filename string, in asr.Input) (string, error) {
	service, cleanup, err := app.InitializeService(settings, logger)
	if err != nil {
		return "", fmt.Errorf("failed to initialise backend: %w", err)
	}
	defer cleanup()

	loadCtx, cancel := context.WithTimeout(ctx, config.DefaultLoadTimeout)
	err = service.Handle().Load(loadCtx)
	cancel()
	if err != nil {
		return "", err
	}

	in.Audio = audio
	in.Filename = filename
	return service.Transcribe(ctx, in)
}
