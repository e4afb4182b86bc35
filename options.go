package main

import (
	"fmt"
	"strings"
)

/* ─── Enumerations ───────────────────────────────────────────────────── */

// Gender selects the BMR constant. The value is the calculator's gender index.
type Gender int

const (
	GenderMale Gender = iota
	GenderFemale
)

// ActivityLevel is the activity tier. The value indexes activityMultipliers.
type ActivityLevel int

const (
	ActivitySedentary ActivityLevel = iota
	ActivityLight
	ActivityModerate
	ActivityActive
)

// Goal is the weight goal. The value indexes goalOffsets.
type Goal int

const (
	GoalMaintain Goal = iota
	GoalLose
	GoalGain
)

// DietType is forwarded to the model for compliance checking only.
type DietType int

const (
	DietStandard DietType = iota
	DietVegetarian
	DietVegan
	DietKeto
	DietGlutenFree
)

// Canonical keys are what gets stored and what API clients may send instead
// of a localized label. Position in each slice equals the enum value.
var (
	genderKeys   = []string{"male", "female"}
	activityKeys = []string{"sedentary", "light", "moderate", "active"}
	goalKeys     = []string{"maintain", "lose", "gain"}
	dietKeys     = []string{"standard", "vegetarian", "vegan", "keto", "gluten_free"}
)

func (g Gender) Key() string        { return genderKeys[g] }
func (a ActivityLevel) Key() string { return activityKeys[a] }
func (g Goal) Key() string          { return goalKeys[g] }
func (d DietType) Key() string      { return dietKeys[d] }

/* ─── Localized catalogs ─────────────────────────────────────────────── */

// optionCatalog is the set of labels the UI shows in one language. Every list
// is in canonical order.
type optionCatalog struct {
	Language   string   `json:"language"`
	Genders    []string `json:"genders"`
	Activities []string `json:"activities"`
	Goals      []string `json:"goals"`
	DietTypes  []string `json:"diet_types"`
}

const defaultLanguage = "English"

var catalogs = map[string]optionCatalog{
	"English": {
		Language: "English",
		Genders:  []string{"Male", "Female"},
		Activities: []string{
			"Sedentary (little or no exercise)",
			"Lightly active (1-3 days/week)",
			"Moderately active (3-5 days/week)",
			"Very active (6-7 days/week)",
		},
		Goals:     []string{"Maintain weight", "Lose weight", "Gain muscle"},
		DietTypes: []string{"Standard", "Vegetarian", "Vegan", "Keto", "Gluten-free"},
	},
	"Español": {
		Language: "Español",
		Genders:  []string{"Hombre", "Mujer"},
		Activities: []string{
			"Sedentario (poco o nada de ejercicio)",
			"Ligeramente activo (1-3 días/semana)",
			"Moderadamente activo (3-5 días/semana)",
			"Muy activo (6-7 días/semana)",
		},
		Goals:     []string{"Mantener peso", "Perder peso", "Ganar músculo"},
		DietTypes: []string{"Estándar", "Vegetariana", "Vegana", "Keto", "Sin gluten"},
	},
	"Deutsch": {
		Language: "Deutsch",
		Genders:  []string{"Männlich", "Weiblich"},
		Activities: []string{
			"Sitzend (wenig oder kein Sport)",
			"Leicht aktiv (1-3 Tage/Woche)",
			"Mäßig aktiv (3-5 Tage/Woche)",
			"Sehr aktiv (6-7 Tage/Woche)",
		},
		Goals:     []string{"Gewicht halten", "Abnehmen", "Muskeln aufbauen"},
		DietTypes: []string{"Standard", "Vegetarisch", "Vegan", "Keto", "Glutenfrei"},
	},
	"Français": {
		Language: "Français",
		Genders:  []string{"Homme", "Femme"},
		Activities: []string{
			"Sédentaire (peu ou pas d'exercice)",
			"Légèrement actif (1-3 jours/semaine)",
			"Modérément actif (3-5 jours/semaine)",
			"Très actif (6-7 jours/semaine)",
		},
		Goals:     []string{"Maintenir le poids", "Perdre du poids", "Prendre du muscle"},
		DietTypes: []string{"Standard", "Végétarien", "Végan", "Céto", "Sans gluten"},
	},
}

// availableLanguages is the display order for the language selector.
var availableLanguages = []string{"English", "Español", "Deutsch", "Français"}

// catalogFor returns the catalog for language, falling back to English.
func catalogFor(language string) optionCatalog {
	if c, ok := catalogs[language]; ok {
		return c
	}
	return catalogs[defaultLanguage]
}

/* ─── Resolution ─────────────────────────────────────────────────────── */

// resolveIndex returns the position of selection in labels, matching either
// the localized label or the canonical key. Absence is ErrInvalidSelection.
func resolveIndex(field, selection string, labels, keys []string) (int, error) {
	s := strings.TrimSpace(selection)
	for i, label := range labels {
		if s == label {
			return i, nil
		}
	}
	for i, key := range keys {
		if s == key {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s %q not found in available options", ErrInvalidSelection, field, selection)
}

func (c optionCatalog) resolveGender(s string) (Gender, error) {
	i, err := resolveIndex("gender", s, c.Genders, genderKeys)
	return Gender(i), err
}

func (c optionCatalog) resolveActivity(s string) (ActivityLevel, error) {
	i, err := resolveIndex("activity level", s, c.Activities, activityKeys)
	return ActivityLevel(i), err
}

func (c optionCatalog) resolveGoal(s string) (Goal, error) {
	i, err := resolveIndex("goal", s, c.Goals, goalKeys)
	return Goal(i), err
}

func (c optionCatalog) resolveDietType(s string) (DietType, error) {
	i, err := resolveIndex("diet type", s, c.DietTypes, dietKeys)
	return DietType(i), err
}

// Label helpers used when rendering stored profiles and building prompts.
func (c optionCatalog) genderLabel(g Gender) string          { return c.Genders[g] }
func (c optionCatalog) activityLabel(a ActivityLevel) string { return c.Activities[a] }
func (c optionCatalog) goalLabel(g Goal) string              { return c.Goals[g] }
func (c optionCatalog) dietLabel(d DietType) string          { return c.DietTypes[d] }
