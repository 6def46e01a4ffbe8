package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"sensevoice-asr/cmd/asr/cmd/config"
	"sensevoice-asr/cmd/asr/cmd/serve"
	"sensevoice-asr/cmd/asr/cmd/transcribe"
	"sensevoice-asr/cmd/asr/cmd/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "asr",
	Short: "Speech recognition gateway for SenseVoice",
	Long: `Speech recognition gateway for SenseVoice.

- serve exposes POST /asr for browser front ends
- transcribe runs one file through the same backend and post-processing
- settings come from the environment and an optional .env file`,
	SilenceUsage:     true,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(transcribe.Cmd)
	rootCmd.AddCommand(config.Cmd)
	rootCmd.AddCommand(version.Cmd)
}
