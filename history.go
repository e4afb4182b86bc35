package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// insertAnalysis stores one analysis and returns its id. Maps go in as JSON
// text cast to jsonb; the simple query protocol has no parameter OIDs to
// pick an encoding from.
func (h *Handler) insertAnalysis(c *gin.Context, userID int, p resolvedProfile, r analyzeResult) (int, error) {
	macros, err := json.Marshal(r.Macros)
	if err != nil {
		return 0, fmt.Errorf("marshal macros: %w", err)
	}
	burnOff, err := json.Marshal(r.BurnOff)
	if err != nil {
		return 0, fmt.Errorf("marshal burn_off: %w", err)
	}

	var id int
	err = h.db.QueryRow(c,
		`INSERT INTO meal_analyses
		   (user_id, language, diet_type, food_items, total_calories, macros, health_score,
		    burn_off, is_diet_compliant, analysis, suggestion, daily_target, meal_impact_pct,
		    progress_ratio, image_url)
		 VALUES
		   (@userID, @language, @dietType, @foodItems, @totalCalories, @macros::jsonb, @healthScore,
		    @burnOff::jsonb, @isDietCompliant, @analysis, @suggestion, @dailyTarget, @mealImpactPct,
		    @progressRatio, @imageURL)
		 RETURNING id`,
		pgx.NamedArgs{
			"userID":          userID,
			"language":        p.Language,
			"dietType":        p.Diet.Key(),
			"foodItems":       r.FoodItems,
			"totalCalories":   r.TotalCalories,
			"macros":          string(macros),
			"healthScore":     r.HealthScore,
			"burnOff":         string(burnOff),
			"isDietCompliant": r.IsDietCompliant,
			"analysis":        r.Analysis,
			"suggestion":      r.Suggestion,
			"dailyTarget":     r.DailyTarget,
			"mealImpactPct":   r.MealImpactPct,
			"progressRatio":   r.ProgressRatio,
			"imageURL":        r.ImageURL,
		}).Scan(&id)
	return id, err
}

// listAnalyses returns the user's analyses with date in [start, end], newest first.
// GET /api/analyses?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
func (h *Handler) listAnalyses(c *gin.Context) {
	userID := c.GetInt("user_id")
	start := c.Query("start")
	end := c.Query("end")

	if start == "" || end == "" {
		apiError(c, http.StatusBadRequest, "start and end query params are required")
		return
	}
	if _, err := time.Parse(dateLayout, start); err != nil {
		apiError(c, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
		return
	}
	if _, err := time.Parse(dateLayout, end); err != nil {
		apiError(c, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
		return
	}
	if start > end {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return
	}

	analyses, err := queryMany[mealAnalysis](h.db, c,
		`SELECT * FROM meal_analyses
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY created_at DESC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch analyses")
		return
	}
	if analyses == nil {
		analyses = []mealAnalysis{}
	}

	c.JSON(http.StatusOK, analyses)
}

// getDailyAnalyses returns one day's analyses and how their combined
// calories compare with the daily target of the current profile.
// GET /api/analyses/daily?date=YYYY-MM-DD (defaults to today).
// Without a stored profile the target is 0 and the impact fields are 0.
func (h *Handler) getDailyAnalyses(c *gin.Context) {
	userID := c.GetInt("user_id")
	date := c.DefaultQuery("date", time.Now().Format(dateLayout))

	if _, err := time.Parse(dateLayout, date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	meals, err := queryMany[mealAnalysis](h.db, c,
		`SELECT * FROM meal_analyses
		 WHERE user_id = @userID AND date = @date
		 ORDER BY created_at`,
		pgx.NamedArgs{"userID": userID, "date": date})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch analyses")
		return
	}
	if meals == nil {
		meals = []mealAnalysis{}
	}

	target := 0
	p, err := h.loadProfile(c, userID)
	switch {
	case err == nil:
		if target, err = p.dailyTarget(); err != nil {
			respondProfileError(c, err)
			return
		}
	case errors.Is(err, pgx.ErrNoRows):
		// no profile yet
	case errors.Is(err, ErrInvalidSelection):
		respondProfileError(c, err)
		return
	default:
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	c.JSON(http.StatusOK, summarizeDay(date, target, meals))
}

// summarizeDay totals the day's calories and runs them through the same
// impact math as a single meal.
func summarizeDay(date string, dailyTarget int, meals []mealAnalysis) dailyAnalysisSummary {
	total := 0
	for _, m := range meals {
		total += m.TotalCalories
	}
	return dailyAnalysisSummary{
		Date:          date,
		DailyTarget:   dailyTarget,
		TotalCalories: total,
		CaloriesLeft:  dailyTarget - total,
		ImpactPct:     computeImpactPercentage(total, dailyTarget),
		ProgressRatio: computeProgressRatio(total, dailyTarget),
		Meals:         meals,
	}
}

// deleteAnalysis removes one analysis. Returns 204 on success, 404 if the
// analysis does not exist or belongs to someone else.
// DELETE /api/analyses/:id.
func (h *Handler) deleteAnalysis(c *gin.Context) {
	userID := c.GetInt("user_id")
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid id")
		return
	}

	result, err := h.db.Exec(c,
		"DELETE FROM meal_analyses WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete analysis")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "analysis not found")
		return
	}

	c.Status(http.StatusNoContent)
}
