package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"google.golang.org/genai"

	"github.com/finsight-vn/finsight/internal/period"
)

// DefaultModel is the Gemini model used for statement commentary.
const DefaultModel = "gemini-2.5-flash"

// Generator produces structured commentary for a flattened statement.
type Generator interface {
	Generate(ctx context.Context, stmt period.Statement, rows []FlatRow, startPeriod, endPeriod string) (*Result, error)
}

// GeminiGenerator calls the Gemini API with a constrained JSON response
// schema so the reply parses directly into a Result.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator builds the Gemini client. An empty model selects
// DefaultModel.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("narrative: create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"comments": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Key comments on the financial situation and changes between the two periods.",
		},
		"risks": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Potential risks or worrying signs.",
		},
		"suggestions": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Specific action recommendations for management based on the analysis.",
		},
	},
	Required: []string{"comments", "risks", "suggestions"},
}

// Generate renders the prompt for the statement type and parses the model's
// JSON reply.
func (g *GeminiGenerator) Generate(ctx context.Context, stmt period.Statement, rows []FlatRow, startPeriod, endPeriod string) (*Result, error) {
	system, prompt := buildPrompt(stmt, rows, startPeriod, endPeriod)

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.5)),
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("narrative: generate commentary: %w", err)
	}

	var result Result
	if err := json.Unmarshal([]byte(resp.Text()), &result); err != nil {
		return nil, fmt.Errorf("narrative: parse model reply: %w", err)
	}
	return &result, nil
}

const balanceSheetSystem = `You are a senior financial analyst. Your task is to analyze Balance Sheet data and provide insightful commentary in Vietnamese.
Focus on providing useful, easy-to-understand information for management.
Only respond with a valid JSON object matching the provided schema. Do not add any markdown formatting.`

const incomeSystem = `You are a senior business performance analyst. Your task is to analyze an Income Statement and provide insightful commentary in Vietnamese.
Focus on business performance, profitability, revenue trends, and cost management. Provide clear, actionable insights for management.
Only respond with a valid JSON object matching the provided schema. Do not add any markdown formatting.`

func buildPrompt(stmt period.Statement, rows []FlatRow, startPeriod, endPeriod string) (system, prompt string) {
	var b strings.Builder
	formatRows(&b, rows, 0)

	if stmt == period.StatementIncome {
		prompt = fmt.Sprintf(`Please analyze the Income Statement below for the periods ending on %s (Kỳ này) and %s (Cùng kỳ năm trước).
The data is provided here:

%s
Based on the data, provide:
1. General Comments: Key observations about business performance, profitability, and changes between the two periods.
2. Risk Warnings: Identify any worrying trends such as declining revenue, shrinking margins, or escalating costs.
3. Actionable Suggestions: Provide specific recommendations to improve profitability and operational efficiency.

Use HTML <b>...</b> tags to highlight important terms or numbers where appropriate.`, endPeriod, startPeriod, b.String())
		return incomeSystem, prompt
	}

	prompt = fmt.Sprintf(`Please analyze the Balance Sheet below for the periods ending on %s (End Period) and %s (Start Period).
The data is provided here:

%s
Based on the data, provide:
1. General Comments: Key observations about the financial position and changes between the two periods.
2. Risk Warnings: Identify any worrying trends or potential risk factors.
3. Actionable Suggestions: Provide specific recommendations for management.

Use HTML <b>...</b> tags to highlight important terms or numbers where appropriate.`, endPeriod, startPeriod, b.String())
	return balanceSheetSystem, prompt
}

var viPrinter = message.NewPrinter(language.Vietnamese)

func formatRows(b *strings.Builder, rows []FlatRow, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, row := range rows {
		fmt.Fprintf(b, "%s- %s:\n", indent, row.Name)
		fmt.Fprintf(b, "%s  - Cuối kỳ: %s\n", indent, formatValue(row.End))
		fmt.Fprintf(b, "%s  - Đầu kỳ: %s\n", indent, formatValue(row.Start))
		formatRows(b, row.Children, depth+1)
	}
}

func formatValue(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return viPrinter.Sprintf("%.0f", *v)
}
