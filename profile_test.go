package main

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupPublicTest() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &Handler{analyzer: &stubAnalyzer{}}
	router := gin.New()
	h.registerRoutes(router)
	return router
}

func doJSONRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetOptions_DefaultsToEnglish(t *testing.T) {
	router := setupPublicTest()
	w := doJSONRequest(router, "GET", "/api/options", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Options            optionCatalog `json:"options"`
		AvailableLanguages []string      `json:"available_languages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Options.Language != "English" || len(resp.Options.Activities) != 4 {
		t.Errorf("unexpected catalog: %+v", resp.Options)
	}
	if len(resp.AvailableLanguages) != len(availableLanguages) {
		t.Errorf("expected %d languages, got %v", len(availableLanguages), resp.AvailableLanguages)
	}
}

func TestGetOptions_Localized(t *testing.T) {
	router := setupPublicTest()
	w := doJSONRequest(router, "GET", "/api/options?lang=Fran%C3%A7ais", "")

	var resp struct {
		Options optionCatalog `json:"options"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Options.Language != "Français" || resp.Options.Genders[1] != "Femme" {
		t.Errorf("unexpected catalog: %+v", resp.Options)
	}
}

func TestPostDailyTarget(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{
			"english labels",
			`{"language":"English","gender":"Female","age":30,"weight":60,"height":160,
			  "activity_level":"Lightly active (1-3 days/week)","goal":"Lose weight","diet_type":"Standard"}`,
			1272,
		},
		{
			"canonical keys",
			`{"gender":"female","age":30,"weight":60,"height":160,
			  "activity_level":"light","goal":"lose","diet_type":"vegan"}`,
			1272,
		},
		{
			"numeric defaults",
			`{"gender":"Male","activity_level":"Sedentary (little or no exercise)","goal":"Maintain weight","diet_type":"Keto"}`,
			1971,
		},
		{
			"german labels",
			`{"language":"Deutsch","gender":"Männlich","age":30,"weight":80,"height":180,
			  "activity_level":"Mäßig aktiv (3-5 Tage/Woche)","goal":"Muskeln aufbauen","diet_type":"Vegan"}`,
			3159,
		},
	}
	router := setupPublicTest()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSONRequest(router, "POST", "/api/daily-target", tt.body)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}
			var resp map[string]int
			json.Unmarshal(w.Body.Bytes(), &resp)
			if resp["daily_target"] != tt.want {
				t.Errorf("expected %d, got %d", tt.want, resp["daily_target"])
			}
		})
	}
}

func TestPostDailyTarget_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"malformed json", `{"gender":`, "invalid request body"},
		{"missing goal", `{"gender":"Male","activity_level":"light","diet_type":"standard"}`, "Please fill in all profile fields"},
		{"weight too low", `{"gender":"Male","weight":12,"activity_level":"light","goal":"lose","diet_type":"standard"}`, "weight must be between"},
		{"height too high", `{"gender":"Male","height":300,"activity_level":"light","goal":"lose","diet_type":"standard"}`, "height must be between"},
		{"unknown label", `{"gender":"Robot","activity_level":"light","goal":"lose","diet_type":"standard"}`, "Invalid profile selection"},
	}
	router := setupPublicTest()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSONRequest(router, "POST", "/api/daily-target", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), tt.wantMsg) {
				t.Errorf("expected %q in %s", tt.wantMsg, w.Body.String())
			}
		})
	}
}

func TestValidateProfileInput_Boundaries(t *testing.T) {
	base := profileInput{Gender: "Male", ActivityLevel: "light", Goal: "lose", DietType: "keto"}.withDefaults()

	for _, age := range []int{minAge, maxAge} {
		in := base
		in.Age = &age
		if msg := validateProfileInput(in); msg != "" {
			t.Errorf("age %d should be accepted, got %q", age, msg)
		}
	}
	for _, age := range []int{minAge - 1, maxAge + 1} {
		in := base
		in.Age = &age
		if msg := validateProfileInput(in); msg == "" {
			t.Errorf("age %d should be rejected", age)
		}
	}

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		in := base
		in.Weight = &v
		if msg := validateProfileInput(in); !strings.Contains(msg, "weight must be between") {
			t.Errorf("weight %v should be rejected, got %q", v, msg)
		}
		in = base
		in.Height = &v
		if msg := validateProfileInput(in); !strings.Contains(msg, "height must be between") {
			t.Errorf("height %v should be rejected, got %q", v, msg)
		}
	}
}

func TestResolvedFromRow_RendersInAnotherLanguage(t *testing.T) {
	row := userProfileRow{
		UserID:        1,
		Gender:        "female",
		Age:           30,
		WeightKG:      60,
		HeightCM:      160,
		ActivityLevel: "light",
		Goal:          "lose",
		DietType:      "gluten_free",
		Language:      "Español",
	}
	p, err := resolvedFromRow(row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.toRow(1) != row {
		t.Errorf("row did not round-trip: %+v", p.toRow(1))
	}

	resp := p.response("English", 1272)
	if resp.Language != "English" || resp.Goal.Label != "Lose weight" || resp.Goal.Key != "lose" {
		t.Errorf("unexpected rendering: %+v", resp)
	}
	if resp.DietType.Label != "Gluten-free" {
		t.Errorf("expected Gluten-free, got %q", resp.DietType.Label)
	}
}

func TestResolvedFromRow_CorruptRow(t *testing.T) {
	row := userProfileRow{Gender: "Mujer", ActivityLevel: "light", Goal: "lose", DietType: "standard", Language: "English"}
	if _, err := resolvedFromRow(row); err == nil {
		t.Fatal("expected an error for a label stored instead of a key")
	}
}
