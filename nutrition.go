package main

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NutritionResult is the model's estimate for one meal photo. Only
// TotalCalories feeds server-side math; the rest is passed through to the
// client and the analysis history.
type NutritionResult struct {
	FoodItems       []string          `json:"food_items"`
	TotalCalories   int               `json:"total_calories"`
	Macros          map[string]string `json:"macros"`
	HealthScore     int               `json:"health_score"`
	BurnOff         map[string]int    `json:"burn_off"`
	IsDietCompliant bool              `json:"is_diet_compliant"`
	Analysis        string            `json:"analysis"`
	Suggestion      string            `json:"suggestion"`
}

const maxHealthScore = 10

// parseNutritionResult turns the model's JSON text into a NutritionResult.
// The text must contain a JSON object; inside it every field is optional and
// a missing or mistyped field takes its zero default instead of failing the
// whole analysis.
func parseNutritionResult(content string) (NutritionResult, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(cleanModelOutput(content)), &raw); err != nil {
		return NutritionResult{}, fmt.Errorf("%w: parse model output: %v", ErrAnalysisFailed, err)
	}
	if raw == nil {
		return NutritionResult{}, fmt.Errorf("%w: model output is not a JSON object", ErrAnalysisFailed)
	}

	r := NutritionResult{
		FoodItems:     []string{},
		Macros:        map[string]string{},
		BurnOff:       map[string]int{},
		TotalCalories: asInt(raw["total_calories"]),
		HealthScore:   min(max(asInt(raw["health_score"]), 0), maxHealthScore),
		Analysis:      asString(raw["analysis"]),
		Suggestion:    asString(raw["suggestion"]),
	}
	if b, ok := raw["is_diet_compliant"].(bool); ok {
		r.IsDietCompliant = b
	}
	if items, ok := raw["food_items"].([]any); ok {
		for _, it := range items {
			if s := asString(it); s != "" {
				r.FoodItems = append(r.FoodItems, s)
			}
		}
	}
	if macros, ok := raw["macros"].(map[string]any); ok {
		for k, v := range macros {
			if s := asString(v); s != "" {
				r.Macros[k] = s
			}
		}
	}
	if burn, ok := raw["burn_off"].(map[string]any); ok {
		for k, v := range burn {
			r.BurnOff[k] = asInt(v)
		}
	}
	return r, nil
}

// cleanModelOutput strips markdown code fences and any prose around the
// outermost JSON object.
func cleanModelOutput(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start != -1 && end > start {
		s = s[start : end+1]
	}
	return s
}

// asInt accepts JSON numbers (rounded) and numeric strings like "450" or
// "450 kcal". Anything else, including out-of-range numbers, is 0.
func asInt(v any) int {
	switch t := v.(type) {
	case float64:
		return roundToInt(t)
	case string:
		fields := strings.Fields(t)
		if len(fields) == 0 {
			return 0
		}
		if f, err := strconv.ParseFloat(fields[0], 64); err == nil {
			return roundToInt(f)
		}
	}
	return 0
}

// roundToInt rounds f, treating NaN and values outside the int32 range as 0.
func roundToInt(f float64) int {
	if !(f >= math.MinInt32 && f <= math.MaxInt32) {
		return 0
	}
	return int(math.Round(f))
}

// asString accepts strings as-is and renders numbers without a trailing ".0".
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}
