package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/kpiadvisor/internal/chat"
)

var chatData dataFlags

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive conversation with the advisor (TUI)",
	Long:  "Opens a full-screen chat. Every question is sent with the same context and KPIs; the conversation is kept in the configured memory.",
	RunE:  runChat,
}

func init() {
	chatData.register(chatCmd)
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	data, err := chatData.load()
	if err != nil {
		return err
	}

	// Metrics are bound while stderr is still visible.
	recorder, err := setupRecorder(cfg, logger)
	if err != nil {
		logger.Error("failed to set up metrics", "error", err)
		os.Exit(1)
	}

	// The TUI owns the terminal; any log output on the alt screen corrupts
	// the display, so the advisor logs nowhere.
	silentLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	advisor, closeMemory, err := setupAdvisor(cfg, silentLogger, recorder)
	if err != nil {
		logger.Error("failed to set up advisor", "error", err)
		os.Exit(1)
	}
	defer closeMemory()

	return chat.Run(advisor, data.Context, data.KPIs)
}
