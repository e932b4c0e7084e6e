package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var askData dataFlags

var askCmd = &cobra.Command{
	Use:   "ask QUESTION",
	Short: "Ask one question and print the advice",
	Long: `Sends one question with the given business context and KPIs and prints the answer.
On failure the answer is "Error procesando la consulta: <message>" and the exit code is 1.`,
	Example: `  kpiadvisor ask "¿Cómo reduzco el churn?" --context industry=SaaS --kpi churn_rate=15% --kpi target_churn_rate=5%
  kpiadvisor ask "¿Qué priorizo este trimestre?" --data acme.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askData.register(askCmd)
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	data, err := askData.load()
	if err != nil {
		return err
	}

	recorder, err := setupRecorder(cfg, logger)
	if err != nil {
		logger.Error("failed to set up metrics", "error", err)
		os.Exit(1)
	}

	advisor, closeMemory, err := setupAdvisor(cfg, logger, recorder)
	if err != nil {
		logger.Error("failed to set up advisor", "error", err)
		os.Exit(1)
	}
	defer closeMemory()

	ctx, stop := signalContext()
	defer stop()

	res := advisor.Advise(ctx, strings.Join(args, " "), data.Context, data.KPIs)
	fmt.Fprintln(cmd.OutOrStdout(), res.String())
	if !res.OK() {
		closeMemory()
		os.Exit(1)
	}
	return nil
}
