package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/kpi_advice.md
var kpiAdvicePromptRaw string

// RolePreamble is the static first field of every advice prompt.
const RolePreamble = "Eres un asistente especializado en optimización de KPIs empresariales."

// KPIAdviceTemplate is the parsed prompt template for KPI advice.
// Parsed once at package init; reused on every query.
var KPIAdviceTemplate = template.Must(template.New("kpi_advice").Parse(kpiAdvicePromptRaw))

// promptData holds the four fields substituted into KPIAdviceTemplate.
type promptData struct {
	Preamble string
	Context  string
	KPIs     string
	Query    string
}
