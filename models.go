package main

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format(dateLayout) + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"`+dateLayout+`"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns into DateOnly.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

const dateLayout = "2006-01-02"

/* ─── Stored rows ────────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password never leave the server.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// userProfileRow maps to user_profiles. Categorical fields hold canonical
// keys ("female", "moderate", ...), never localized labels, so a profile
// saved in one language still resolves in another.
type userProfileRow struct {
	UserID        int        `db:"user_id"`
	Gender        string     `db:"gender"`
	Age           int        `db:"age"`
	WeightKG      float64    `db:"weight_kg"`
	HeightCM      float64    `db:"height_cm"`
	ActivityLevel string     `db:"activity_level"`
	Goal          string     `db:"goal"`
	DietType      string     `db:"diet_type"`
	Language      string     `db:"language"`
	UpdatedAt     *time.Time `db:"updated_at"`
}

// mealAnalysis maps to meal_analyses: one successful photo analysis together
// with the daily target and impact that were shown to the user at the time.
type mealAnalysis struct {
	ID              int               `json:"id"                db:"id"`
	UserID          int               `json:"user_id"           db:"user_id"`
	Date            DateOnly          `json:"date"              db:"date"`
	Language        string            `json:"language"          db:"language"`
	DietType        string            `json:"diet_type"         db:"diet_type"`
	FoodItems       []string          `json:"food_items"        db:"food_items"`
	TotalCalories   int               `json:"total_calories"    db:"total_calories"`
	Macros          map[string]string `json:"macros"            db:"macros"`
	HealthScore     int               `json:"health_score"      db:"health_score"`
	BurnOff         map[string]int    `json:"burn_off"          db:"burn_off"`
	IsDietCompliant bool              `json:"is_diet_compliant" db:"is_diet_compliant"`
	Analysis        string            `json:"analysis"          db:"analysis"`
	Suggestion      string            `json:"suggestion"        db:"suggestion"`
	DailyTarget     int               `json:"daily_target"      db:"daily_target"`
	MealImpactPct   int               `json:"meal_impact_pct"   db:"meal_impact_pct"`
	ProgressRatio   float64           `json:"progress_ratio"    db:"progress_ratio"`
	ImageURL        *string           `json:"image_url"         db:"image_url"`
	CreatedAt       *time.Time        `json:"created_at"        db:"created_at"`
}

/* ─── Profile request / response shapes ──────────────────────────────── */

// profileInput is a profile as a client submits it: localized labels (or
// canonical keys) plus raw numbers. Nil numbers fall back to form defaults.
type profileInput struct {
	Language      string   `json:"language"`
	Gender        string   `json:"gender"`
	Age           *int     `json:"age"`
	Weight        *float64 `json:"weight"`
	Height        *float64 `json:"height"`
	ActivityLevel string   `json:"activity_level"`
	Goal          string   `json:"goal"`
	DietType      string   `json:"diet_type"`
}

// resolvedProfile is a validated profile with every selection resolved to
// its enum value. It is what the calculator consumes.
type resolvedProfile struct {
	Language string
	Gender   Gender
	Age      int
	WeightKG float64
	HeightCM float64
	Activity ActivityLevel
	Goal     Goal
	Diet     DietType
}

// profileOption pairs a canonical key with its label in the requested language.
type profileOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// profileResponse is the shape of GET/PUT /api/profile.
type profileResponse struct {
	Language      string        `json:"language"`
	Gender        profileOption `json:"gender"`
	Age           int           `json:"age"`
	Weight        float64       `json:"weight"`
	Height        float64       `json:"height"`
	ActivityLevel profileOption `json:"activity_level"`
	Goal          profileOption `json:"goal"`
	DietType      profileOption `json:"diet_type"`
	DailyTarget   int           `json:"daily_target"`
}

/* ─── Analysis response shapes ───────────────────────────────────────── */

// analyzeResult is the "result" object of POST /api/analyze: the model's
// nutrition estimate plus everything derived from it server-side.
type analyzeResult struct {
	NutritionResult
	DailyTarget   int     `json:"daily_target"`
	MealImpactPct int     `json:"meal_impact_pct"`
	ProgressRatio float64 `json:"progress_ratio"`
	ImageData     string  `json:"image_data"`
	ImageURL      *string `json:"image_url"`
	AnalysisID    *int    `json:"analysis_id"`
}

// dailyAnalysisSummary is the response shape for GET /api/analyses/daily.
type dailyAnalysisSummary struct {
	Date          string         `json:"date"`
	DailyTarget   int            `json:"daily_target"`
	TotalCalories int            `json:"total_calories"`
	CaloriesLeft  int            `json:"calories_left"`
	ImpactPct     int            `json:"impact_pct"`
	ProgressRatio float64        `json:"progress_ratio"`
	Meals         []mealAnalysis `json:"meals"`
}
