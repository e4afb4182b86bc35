package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// Form defaults for numbers the client leaves out.
const (
	defaultAge    = 25
	defaultWeight = 70.0
	defaultHeight = 170.0
)

// Accepted ranges for the numeric profile fields.
const (
	minAge, maxAge       = 10, 100
	minWeight, maxWeight = 30.0, 200.0
	minHeight, maxHeight = 100.0, 250.0
)

/* ─── Input parsing and validation ───────────────────────────────────── */

// profileInputFromForm reads a profile from multipart/urlencoded form values.
// Returns a message for the client when a number does not parse.
func profileInputFromForm(c *gin.Context) (profileInput, string) {
	in := profileInput{
		Language:      c.DefaultPostForm("language", defaultLanguage),
		Gender:        c.PostForm("gender"),
		ActivityLevel: c.PostForm("activity_level"),
		Goal:          c.PostForm("goal"),
		DietType:      c.PostForm("diet_type"),
	}

	age, err := strconv.Atoi(strings.TrimSpace(c.DefaultPostForm("age", strconv.Itoa(defaultAge))))
	if err != nil {
		return in, "Invalid profile data: age must be a whole number"
	}
	weight, err := strconv.ParseFloat(strings.TrimSpace(c.DefaultPostForm("weight", "70")), 64)
	if err != nil {
		return in, "Invalid profile data: weight must be a number"
	}
	height, err := strconv.ParseFloat(strings.TrimSpace(c.DefaultPostForm("height", "170")), 64)
	if err != nil {
		return in, "Invalid profile data: height must be a number"
	}
	in.Age, in.Weight, in.Height = &age, &weight, &height
	return in, ""
}

// withDefaults fills missing numbers and language with the form defaults.
func (in profileInput) withDefaults() profileInput {
	if in.Language == "" {
		in.Language = defaultLanguage
	}
	if in.Age == nil {
		age := defaultAge
		in.Age = &age
	}
	if in.Weight == nil {
		w := defaultWeight
		in.Weight = &w
	}
	if in.Height == nil {
		h := defaultHeight
		in.Height = &h
	}
	return in
}

// validateProfileInput checks presence and ranges. It returns "" when the
// input is acceptable, otherwise a message for the client. Call withDefaults first.
func validateProfileInput(in profileInput) string {
	if strings.TrimSpace(in.Gender) == "" || strings.TrimSpace(in.ActivityLevel) == "" ||
		strings.TrimSpace(in.Goal) == "" || strings.TrimSpace(in.DietType) == "" {
		return "Please fill in all profile fields"
	}
	if *in.Age < minAge || *in.Age > maxAge {
		return fmt.Sprintf("age must be between %d and %d", minAge, maxAge)
	}
	// Written as !(in range) so NaN fails too.
	if !(*in.Weight >= minWeight && *in.Weight <= maxWeight) {
		return fmt.Sprintf("weight must be between %.0f and %.0f kg", minWeight, maxWeight)
	}
	if !(*in.Height >= minHeight && *in.Height <= maxHeight) {
		return fmt.Sprintf("height must be between %.0f and %.0f cm", minHeight, maxHeight)
	}
	return ""
}

// resolveProfile maps every selection to its enum value using the catalog of
// the input's language. Any miss is ErrInvalidSelection.
func resolveProfile(in profileInput) (resolvedProfile, error) {
	cat := catalogFor(in.Language)
	p := resolvedProfile{
		Language: cat.Language,
		Age:      *in.Age,
		WeightKG: *in.Weight,
		HeightCM: *in.Height,
	}
	var err error
	if p.Gender, err = cat.resolveGender(in.Gender); err != nil {
		return p, err
	}
	if p.Activity, err = cat.resolveActivity(in.ActivityLevel); err != nil {
		return p, err
	}
	if p.Goal, err = cat.resolveGoal(in.Goal); err != nil {
		return p, err
	}
	if p.Diet, err = cat.resolveDietType(in.DietType); err != nil {
		return p, err
	}
	return p, nil
}

/* ─── Stored form ────────────────────────────────────────────────────── */

func (p resolvedProfile) toRow(userID int) userProfileRow {
	return userProfileRow{
		UserID:        userID,
		Gender:        p.Gender.Key(),
		Age:           p.Age,
		WeightKG:      p.WeightKG,
		HeightCM:      p.HeightCM,
		ActivityLevel: p.Activity.Key(),
		Goal:          p.Goal.Key(),
		DietType:      p.Diet.Key(),
		Language:      p.Language,
	}
}

// resolvedFromRow resolves a stored row. Stored keys are canonical, so the
// lookup goes through resolveProfile like any client input.
func resolvedFromRow(row userProfileRow) (resolvedProfile, error) {
	age, weight, height := row.Age, row.WeightKG, row.HeightCM
	return resolveProfile(profileInput{
		Language:      row.Language,
		Gender:        row.Gender,
		Age:           &age,
		Weight:        &weight,
		Height:        &height,
		ActivityLevel: row.ActivityLevel,
		Goal:          row.Goal,
		DietType:      row.DietType,
	})
}

// response renders p with labels in language and its daily target.
func (p resolvedProfile) response(language string, dailyTarget int) profileResponse {
	cat := catalogFor(language)
	return profileResponse{
		Language:      cat.Language,
		Gender:        profileOption{Key: p.Gender.Key(), Label: cat.genderLabel(p.Gender)},
		Age:           p.Age,
		Weight:        p.WeightKG,
		Height:        p.HeightCM,
		ActivityLevel: profileOption{Key: p.Activity.Key(), Label: cat.activityLabel(p.Activity)},
		Goal:          profileOption{Key: p.Goal.Key(), Label: cat.goalLabel(p.Goal)},
		DietType:      profileOption{Key: p.Diet.Key(), Label: cat.dietLabel(p.Diet)},
		DailyTarget:   dailyTarget,
	}
}

// upsertProfile writes the user's latest profile.
func (h *Handler) upsertProfile(c *gin.Context, userID int, p resolvedProfile) error {
	row := p.toRow(userID)
	_, err := h.db.Exec(c,
		`INSERT INTO user_profiles
		   (user_id, gender, age, weight_kg, height_cm, activity_level, goal, diet_type, language, updated_at)
		 VALUES
		   (@userID, @gender, @age, @weightKG, @heightCM, @activityLevel, @goal, @dietType, @language, now())
		 ON CONFLICT (user_id) DO UPDATE SET
		   gender = EXCLUDED.gender,
		   age = EXCLUDED.age,
		   weight_kg = EXCLUDED.weight_kg,
		   height_cm = EXCLUDED.height_cm,
		   activity_level = EXCLUDED.activity_level,
		   goal = EXCLUDED.goal,
		   diet_type = EXCLUDED.diet_type,
		   language = EXCLUDED.language,
		   updated_at = now()`,
		pgx.NamedArgs{
			"userID":        row.UserID,
			"gender":        row.Gender,
			"age":           row.Age,
			"weightKG":      row.WeightKG,
			"heightCM":      row.HeightCM,
			"activityLevel": row.ActivityLevel,
			"goal":          row.Goal,
			"dietType":      row.DietType,
			"language":      row.Language,
		})
	return err
}

// loadProfile reads and resolves the user's stored profile.
func (h *Handler) loadProfile(c *gin.Context, userID int) (resolvedProfile, error) {
	row, err := queryOne[userProfileRow](h.db, c,
		"SELECT * FROM user_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return resolvedProfile{}, err
	}
	return resolvedFromRow(row)
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// getOptions returns the localized option lists for the profile form.
// GET /api/options?lang=English (public).
func (h *Handler) getOptions(c *gin.Context) {
	cat := catalogFor(c.DefaultQuery("lang", defaultLanguage))
	c.JSON(http.StatusOK, gin.H{
		"options":             cat,
		"available_languages": availableLanguages,
	})
}

// postDailyTarget computes the daily target for a profile without storing
// anything, so the form can update the number as the user types.
// POST /api/daily-target (public).
func (h *Handler) postDailyTarget(c *gin.Context) {
	var body profileInput
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	body = body.withDefaults()
	if msg := validateProfileInput(body); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	p, err := resolveProfile(body)
	if err != nil {
		respondProfileError(c, err)
		return
	}
	target, err := p.dailyTarget()
	if err != nil {
		respondProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"daily_target": target})
}

// getProfile returns the stored profile with labels in ?lang (default: the
// language it was saved in) and a freshly computed daily target.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := h.loadProfile(c, userID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		apiError(c, http.StatusNotFound, "profile not found")
		return
	case errors.Is(err, ErrInvalidSelection):
		respondProfileError(c, err)
		return
	case err != nil:
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	target, err := p.dailyTarget()
	if err != nil {
		respondProfileError(c, err)
		return
	}
	c.JSON(http.StatusOK, p.response(c.DefaultQuery("lang", p.Language), target))
}

// putProfile validates, resolves and stores a profile, then returns its
// daily target. PUT /api/profile.
func (h *Handler) putProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body profileInput
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	body = body.withDefaults()
	if msg := validateProfileInput(body); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	p, err := resolveProfile(body)
	if err != nil {
		respondProfileError(c, err)
		return
	}
	target, err := p.dailyTarget()
	if err != nil {
		respondProfileError(c, err)
		return
	}

	if err := h.upsertProfile(c, userID, p); err != nil {
		log.Error().Err(err).Str("component", "profile").Int("user_id", userID).Msg("profile save failed")
		apiError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"daily_target": target,
		"profile":      p.response(p.Language, target),
	})
}
