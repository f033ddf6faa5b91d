package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "animseq",
	Short: "Simulate a character's animation sequence with a language model",
	Long: `animseq asks a text model which animations a character with a given role
is likely to perform next and picks one of them at random. The run ends once
a trigger action has been followed by four more actions, or earlier when the
model stops offering known animations.`,
	SilenceUsage: true,
	// Running without a subcommand behaves like "animseq run".
	RunE: runSimulation,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	_ = godotenv.Load()

	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "configs/animseq.json"
	}
	rootCmd.PersistentFlags().String("config", defaultPath, "Path to the JSON config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level override (debug, info, warn, error)")
}
