package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temp files. The total size is capped by maxUploadBytes.
const multipartMemory = 8 << 20

// analyzeMeal handles POST /api/analyze: a multipart form with the profile
// fields (localized labels), "language" and the meal photo in "image".
//
// The profile is validated and resolved before the image is touched, so a
// bad selection never costs a model call. The photo upload and the model
// call run concurrently; a failed upload only drops the image URL.
func (h *Handler) analyzeMeal(c *gin.Context) {
	userID := c.GetInt("user_id")

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apiError(c, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		apiError(c, http.StatusBadRequest, "expected a multipart form with an image")
		return
	}

	in, msg := profileInputFromForm(c)
	if msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}
	in = in.withDefaults()
	if msg := validateProfileInput(in); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	profile, err := resolveProfile(in)
	if err != nil {
		respondProfileError(c, err)
		return
	}
	dailyTarget, err := profile.dailyTarget()
	if err != nil {
		respondProfileError(c, err)
		return
	}

	if h.db != nil {
		if err := h.upsertProfile(c, userID, profile); err != nil {
			log.Warn().Err(err).Str("component", "analyze").Int("user_id", userID).Msg("profile save failed")
		}
	}

	img, ok := readUploadedImage(c)
	if !ok {
		return
	}

	cat := catalogFor(profile.Language)
	req := analysisRequest{
		Image:    img.JPEG,
		MIMEType: "image/jpeg",
		Language: profile.Language,
		Goal:     cat.goalLabel(profile.Goal),
		DietType: cat.dietLabel(profile.Diet),
	}

	var (
		nutrition NutritionResult
		imageURL  *string
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	if h.images != nil {
		g.Go(func() error {
			url, err := h.images.SaveMealPhoto(ctx, userID, img.JPEG)
			if err != nil {
				log.Warn().Err(err).Str("component", "analyze").Msg("meal photo upload failed")
				return nil
			}
			imageURL = &url
			return nil
		})
	}
	g.Go(func() error {
		if h.labels != nil {
			labels, err := h.labels.DetectLabels(ctx, img.JPEG)
			if err != nil {
				log.Warn().Err(err).Str("component", "analyze").Msg("label detection failed")
			} else {
				req.Labels = labels
			}
		}
		r, err := h.analyzer.AnalyzeMeal(ctx, req)
		if err != nil {
			return err
		}
		nutrition = r
		return nil
	})
	if err := g.Wait(); err != nil {
		respondAnalysisError(c, err)
		return
	}

	result := analyzeResult{
		NutritionResult: nutrition,
		DailyTarget:     dailyTarget,
		MealImpactPct:   computeImpactPercentage(nutrition.TotalCalories, dailyTarget),
		ProgressRatio:   computeProgressRatio(nutrition.TotalCalories, dailyTarget),
		ImageData:       img.Base64(),
		ImageURL:        imageURL,
	}

	if h.db != nil {
		id, err := h.insertAnalysis(c, userID, profile, result)
		if err != nil {
			log.Error().Err(err).Str("component", "analyze").Int("user_id", userID).Msg("saving analysis failed")
		} else {
			result.AnalysisID = &id
		}
	}

	log.Info().Str("component", "analyze").Int("user_id", userID).
		Int("total_calories", nutrition.TotalCalories).Int("daily_target", dailyTarget).
		Int("meal_impact_pct", result.MealImpactPct).Msg("meal analyzed")

	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

// readUploadedImage validates and processes the "image" form file. On
// failure it writes the error response and returns ok=false.
func readUploadedImage(c *gin.Context) (processedImage, bool) {
	fh, err := c.FormFile("image")
	if err != nil {
		apiError(c, http.StatusBadRequest, "No image uploaded")
		return processedImage{}, false
	}
	if fh.Filename == "" {
		apiError(c, http.StatusBadRequest, "No image selected")
		return processedImage{}, false
	}
	if !allowedImageFile(fh.Filename) {
		apiError(c, http.StatusBadRequest, "Invalid file type")
		return processedImage{}, false
	}

	f, err := fh.Open()
	if err != nil {
		apiError(c, http.StatusBadRequest, "could not read image")
		return processedImage{}, false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		apiError(c, http.StatusBadRequest, "could not read image")
		return processedImage{}, false
	}

	img, err := processImage(data)
	if err != nil {
		log.Info().Err(err).Str("component", "analyze").Str("filename", fh.Filename).Msg("image rejected")
		apiError(c, http.StatusBadRequest, "Invalid image")
		return processedImage{}, false
	}
	return img, true
}
