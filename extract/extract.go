// Package extract turns a lab report PDF into raw (test name, value, unit,
// reference range) tuples via plain-text conversion and a Gemini structured
// extraction call. Nothing in here classifies anything; the analyzer package
// consumes the output.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"google.golang.org/genai"
)

const systemPrompt = `You are a medical data assistant. Extract blood test results from the text.
- Normalize test names to standard English.
- Ignore notes, comments, and non-test data.
- If a value is missing, skip that test.`

// PatientInfo carries the subject details found on the report.
type PatientInfo struct {
	Sex string  `json:"sex,omitempty"`
	Age float64 `json:"age,omitempty"`
}

// Metadata describes the report itself.
type Metadata struct {
	ReportDate string      `json:"report_date,omitempty"`
	Lab        string      `json:"lab,omitempty"`
	Patient    PatientInfo `json:"patient"`
}

// TestResult is one extracted tuple. Value is numeric because the model is
// instructed to skip tests without a numeric result.
type TestResult struct {
	TestName string  `json:"test_name"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit,omitempty"`
	RefRange string  `json:"ref_range,omitempty"`
}

// Report is the structured output of one extraction.
type Report struct {
	Metadata Metadata     `json:"metadata"`
	Tests    []TestResult `json:"tests"`
}

// Values flattens the extracted tests into the raw name -> value-string map
// the aggregator consumes.
func (r Report) Values() map[string]string {
	out := make(map[string]string, len(r.Tests))
	for _, t := range r.Tests {
		if t.TestName == "" {
			continue
		}
		out[t.TestName] = strconv.FormatFloat(t.Value, 'f', -1, 64)
	}
	return out
}

// Units flattens the extracted tests into a raw name -> unit map for display.
func (r Report) Units() map[string]string {
	out := make(map[string]string, len(r.Tests))
	for _, t := range r.Tests {
		if t.TestName == "" || t.Unit == "" {
			continue
		}
		out[t.TestName] = t.Unit
	}
	return out
}

var reportSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"metadata": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"report_date": {Type: genai.TypeString},
				"lab":         {Type: genai.TypeString},
				"patient": {
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"sex": {Type: genai.TypeString},
						"age": {Type: genai.TypeNumber},
					},
				},
			},
		},
		"tests": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"test_name": {Type: genai.TypeString},
					"value":     {Type: genai.TypeNumber},
					"unit":      {Type: genai.TypeString},
					"ref_range": {Type: genai.TypeString},
				},
				Required: []string{"test_name", "value"},
			},
		},
	},
	Required: []string{"tests"},
}

// Extractor wraps the Gemini client with a result cache so re-opening the
// same report does not re-bill the API.
type Extractor struct {
	client *genai.Client
	model  string
	cache  *resultCache
	logger *log.Logger
}

// NewExtractor builds an extractor. The cache directory may be empty to keep
// results in memory only.
func NewExtractor(ctx context.Context, apiKey, model, cacheDir string, logger *log.Logger) (*Extractor, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash-lite"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Extractor{
		client: client,
		model:  model,
		cache:  newResultCache(cacheDir, model),
		logger: logger,
	}, nil
}

// Extract runs the structured extraction over already converted report text.
func (e *Extractor) Extract(ctx context.Context, text string) (Report, error) {
	var report Report
	if text == "" {
		return report, errors.New("no text loaded")
	}

	key := e.cache.key(text)
	if cached, ok, err := e.cache.load(key); err != nil {
		e.logf("extraction cache read failed: %v", err)
	} else if ok {
		e.logf("extraction served from cache")
		return cached, nil
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](0),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    reportSchema,
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	prompt := "Extract structured blood test data from this text:\n\n" + text
	resp, err := e.client.Models.GenerateContent(ctx, e.model, genai.Text(prompt), cfg)
	if err != nil {
		return report, fmt.Errorf("gemini extraction: %w", err)
	}
	raw := resp.Text()
	if raw == "" {
		return report, errors.New("gemini returned an empty response")
	}
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return report, fmt.Errorf("decode extraction response: %w", err)
	}

	if err := e.cache.save(key, report); err != nil {
		e.logf("extraction cache write failed: %v", err)
	}
	return report, nil
}

func (e *Extractor) logf(format string, args ...any) {
	if e.logger != nil {
		e.logger.Printf(format, args...)
	}
}
