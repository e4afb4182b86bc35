package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

/* ─── Analyzer contract ──────────────────────────────────────────────── */

// analysisRequest is everything the model needs for one meal photo.
// Goal and DietType are labels in Language so the model answers in kind.
type analysisRequest struct {
	Image    []byte
	MIMEType string
	Language string
	Goal     string
	DietType string
	Labels   []string // optional hints from label detection
}

// mealAnalyzer estimates nutrition for a meal photo.
type mealAnalyzer interface {
	AnalyzeMeal(ctx context.Context, req analysisRequest) (NutritionResult, error)
}

/* ─── Prompt ─────────────────────────────────────────────────────────── */

const nutritionistPromptTemplate = `You are an expert personal nutritionist. Write every text field in %[1]s.
User profile: goal = %[2]s, diet = %[3]s.
%[4]s
Look at the meal in the photo and estimate its nutrition. Return ONLY a JSON object:
{
  "food_items": ["item1", "item2"],
  "total_calories": 0,
  "macros": {"protein": "0%%", "fat": "0%%", "carbs": "0%%"},
  "health_score": 0,
  "burn_off": {"walking": 0, "running": 0, "swimming": 0},
  "is_diet_compliant": true,
  "analysis": "Brief analysis in %[1]s.",
  "suggestion": "One specific tip in %[1]s."
}
- "total_calories": integer kcal for the whole plate
- "macros": share of calories from each macronutrient, as percentages
- "health_score": integer 0-10
- "burn_off": minutes of each activity needed to burn the meal off
- "is_diet_compliant": whether the meal fits the user's diet`

// buildNutritionPrompt fills the instruction text for one request.
func buildNutritionPrompt(req analysisRequest) string {
	hint := ""
	if len(req.Labels) > 0 {
		hint = "An image classifier detected: " + strings.Join(req.Labels, ", ") + ". Treat this as a hint only."
	}
	return fmt.Sprintf(nutritionistPromptTemplate, req.Language, req.Goal, req.DietType, hint)
}

/* ─── Gemini HTTP client ─────────────────────────────────────────────── */

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	defaultGeminiModel   = "gemini-flash-latest"
)

type geminiBlob struct {
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data"` // encoding/json writes []byte as base64
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *geminiBlob `json:"inlineData,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

// geminiRequest is the request body for models/{model}:generateContent.
type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

// geminiResponse keeps only the fields the analyzer reads.
type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// upstreamStatusError records a non-2xx answer from the model provider.
type upstreamStatusError struct {
	StatusCode int
	Body       string
}

func (e *upstreamStatusError) Error() string {
	return fmt.Sprintf("gemini returned status %d: %s", e.StatusCode, e.Body)
}

// geminiClient calls the Gemini REST API directly over net/http.
type geminiClient struct {
	apiKey     string
	baseURL    string // overridable for tests
	model      string
	httpClient *http.Client
}

func newGeminiClient(apiKey, baseURL, model string, timeout time.Duration) *geminiClient {
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &geminiClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// AnalyzeMeal sends the photo and instructions in one generateContent call.
// A 429 or RESOURCE_EXHAUSTED answer becomes *RateLimitError; every other
// failure wraps ErrAnalysisFailed.
func (g *geminiClient) AnalyzeMeal(ctx context.Context, req analysisRequest) (NutritionResult, error) {
	if g.apiKey == "" {
		return NutritionResult{}, fmt.Errorf("%w: GEMINI_API_KEY not set", ErrAnalysisFailed)
	}

	mimeType := req.MIMEType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	body := geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{InlineData: &geminiBlob{MimeType: mimeType, Data: req.Image}},
				{Text: buildNutritionPrompt(req)},
			},
		}},
		GenerationConfig: geminiGenerationConfig{ResponseMimeType: "application/json"},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return NutritionResult{}, fmt.Errorf("%w: marshal request: %v", ErrAnalysisFailed, err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.baseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return NutritionResult{}, fmt.Errorf("%w: create request: %v", ErrAnalysisFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return NutritionResult{}, fmt.Errorf("%w: http request: %w", ErrAnalysisFailed, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return NutritionResult{}, fmt.Errorf("%w: read response: %v", ErrAnalysisFailed, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || bytes.Contains(respBytes, []byte("RESOURCE_EXHAUSTED")) {
		return NutritionResult{}, newRateLimitError(string(respBytes))
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		statusErr := &upstreamStatusError{StatusCode: resp.StatusCode, Body: truncate(string(respBytes), 512)}
		return NutritionResult{}, fmt.Errorf("%w: %w", ErrAnalysisFailed, statusErr)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return NutritionResult{}, fmt.Errorf("%w: unmarshal response: %v", ErrAnalysisFailed, err)
	}
	if parsed.PromptFeedback.BlockReason != "" {
		return NutritionResult{}, fmt.Errorf("%w: prompt blocked: %s", ErrAnalysisFailed, parsed.PromptFeedback.BlockReason)
	}
	if len(parsed.Candidates) == 0 {
		return NutritionResult{}, fmt.Errorf("%w: no candidates in response", ErrAnalysisFailed)
	}

	var text strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return NutritionResult{}, fmt.Errorf("%w: empty candidate (finish reason %q)", ErrAnalysisFailed, parsed.Candidates[0].FinishReason)
	}

	return parseNutritionResult(text.String())
}

// truncate shortens s to at most n bytes for error messages.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
