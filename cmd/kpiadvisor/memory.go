package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect or reset the conversation memory",
	Long:  "Only useful with a persistent memory backend (sqlite or bolt); the buffer backend starts empty on every run.",
}

var memoryShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the conversation buffer",
	RunE:  runMemoryShow,
}

var memoryClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every exchange of the configured session",
	RunE:  runMemoryClear,
}

func init() {
	rootCmd.AddCommand(memoryCmd)
	memoryCmd.AddCommand(memoryShowCmd)
	memoryCmd.AddCommand(memoryClearCmd)
}

func runMemoryShow(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	store, closeMemory, err := openMemory(cfg, logger)
	if err != nil {
		return err
	}
	defer closeMemory()

	buf, err := store.Buffer(cmd.Context())
	if err != nil {
		return fmt.Errorf("read memory: %w", err)
	}
	if buf == "" {
		logger.Info("memory is empty", "backend", cfg.Memory.Backend, "session", cfg.Memory.Session)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), buf)
	return nil
}

func runMemoryClear(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	store, closeMemory, err := openMemory(cfg, logger)
	if err != nil {
		return err
	}
	defer closeMemory()

	if err := store.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("clear memory: %w", err)
	}
	logger.Info("memory cleared", "backend", cfg.Memory.Backend, "session", cfg.Memory.Session)
	return nil
}
