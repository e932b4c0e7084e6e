package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/kpiadvisor/internal/model"
)

// queryData is the business context and KPI snapshot sent with a question.
type queryData struct {
	Context model.BusinessContext `yaml:"context"`
	KPIs    model.KPISnapshot     `yaml:"kpis"`
}

// dataFlags holds the --context, --kpi and --data flags shared by ask and chat.
type dataFlags struct {
	contextPairs []string
	kpiPairs     []string
	dataFile     string
}

// load reads the data file (if any) and then applies flag pairs on top, so
// a flag overrides the file for the same key.
func (f dataFlags) load() (queryData, error) {
	data := queryData{
		Context: model.BusinessContext{},
		KPIs:    model.KPISnapshot{},
	}

	if f.dataFile != "" {
		raw, err := os.ReadFile(f.dataFile)
		if err != nil {
			return data, fmt.Errorf("read data file: %w", err)
		}
		var fromFile queryData
		if err := yaml.Unmarshal(raw, &fromFile); err != nil {
			return data, fmt.Errorf("parse data file %s: %w", f.dataFile, err)
		}
		for k, v := range fromFile.Context {
			data.Context[k] = v
		}
		for k, v := range fromFile.KPIs {
			data.KPIs[k] = v
		}
	}

	for _, pair := range f.contextPairs {
		k, v, err := splitPair(pair)
		if err != nil {
			return data, fmt.Errorf("--context: %w", err)
		}
		data.Context[k] = v
	}
	for _, pair := range f.kpiPairs {
		k, v, err := splitPair(pair)
		if err != nil {
			return data, fmt.Errorf("--kpi: %w", err)
		}
		data.KPIs[k] = v
	}
	return data, nil
}

// splitPair parses "key=value". The value may itself contain '=' or ','.
func splitPair(pair string) (string, string, error) {
	k, v, ok := strings.Cut(pair, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return "", "", fmt.Errorf("expected key=value, got %q", pair)
	}
	return k, strings.TrimSpace(v), nil
}

func (f *dataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.contextPairs, "context", nil, "business context entry as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&f.kpiPairs, "kpi", nil, "KPI entry as key=value (repeatable)")
	cmd.Flags().StringVar(&f.dataFile, "data", "", "YAML file with `context:` and `kpis:` maps")
}
