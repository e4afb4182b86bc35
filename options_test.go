package main

import (
	"errors"
	"testing"
)

func TestCatalogsMatchKeyLengths(t *testing.T) {
	for _, lang := range availableLanguages {
		cat, ok := catalogs[lang]
		if !ok {
			t.Fatalf("no catalog for available language %q", lang)
		}
		if cat.Language != lang {
			t.Errorf("catalog %q reports language %q", lang, cat.Language)
		}
		if len(cat.Genders) != len(genderKeys) || len(cat.Activities) != len(activityKeys) ||
			len(cat.Goals) != len(goalKeys) || len(cat.DietTypes) != len(dietKeys) {
			t.Errorf("catalog %q option counts do not match canonical keys", lang)
		}
	}
}

func TestCatalogFor_FallsBackToEnglish(t *testing.T) {
	if got := catalogFor("Klingon").Language; got != "English" {
		t.Errorf("expected English fallback, got %q", got)
	}
	if got := catalogFor("Deutsch").Language; got != "Deutsch" {
		t.Errorf("expected Deutsch, got %q", got)
	}
}

func TestResolve_LocalizedLabels(t *testing.T) {
	es := catalogFor("Español")

	g, err := es.resolveGender("Mujer")
	if err != nil || g != GenderFemale {
		t.Errorf("resolveGender(Mujer) = %v, %v", g, err)
	}
	a, err := es.resolveActivity("Muy activo (6-7 días/semana)")
	if err != nil || a != ActivityActive {
		t.Errorf("resolveActivity = %v, %v", a, err)
	}
	goal, err := es.resolveGoal("Ganar músculo")
	if err != nil || goal != GoalGain {
		t.Errorf("resolveGoal = %v, %v", goal, err)
	}
	d, err := es.resolveDietType("Sin gluten")
	if err != nil || d != DietGlutenFree {
		t.Errorf("resolveDietType = %v, %v", d, err)
	}
}

func TestResolve_CanonicalKeysInAnyLanguage(t *testing.T) {
	for _, lang := range availableLanguages {
		cat := catalogFor(lang)
		if g, err := cat.resolveGender("female"); err != nil || g != GenderFemale {
			t.Errorf("%s: resolveGender(female) = %v, %v", lang, g, err)
		}
		if a, err := cat.resolveActivity("moderate"); err != nil || a != ActivityModerate {
			t.Errorf("%s: resolveActivity(moderate) = %v, %v", lang, a, err)
		}
		if d, err := cat.resolveDietType("gluten_free"); err != nil || d != DietGlutenFree {
			t.Errorf("%s: resolveDietType(gluten_free) = %v, %v", lang, d, err)
		}
	}
}

func TestResolve_LabelFromOtherLanguageIsInvalid(t *testing.T) {
	en := catalogFor("English")
	_, err := en.resolveGoal("Perder peso")
	if !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
}

func TestResolve_TrimsWhitespace(t *testing.T) {
	g, err := catalogFor("English").resolveGender("  Male ")
	if err != nil || g != GenderMale {
		t.Errorf("resolveGender with padding = %v, %v", g, err)
	}
}

func TestLabelsRoundTrip(t *testing.T) {
	for _, lang := range availableLanguages {
		cat := catalogFor(lang)
		for i := range cat.Activities {
			a, err := cat.resolveActivity(cat.activityLabel(ActivityLevel(i)))
			if err != nil || int(a) != i {
				t.Errorf("%s: activity %d did not round-trip: %v, %v", lang, i, a, err)
			}
		}
		for i := range cat.DietTypes {
			d, err := cat.resolveDietType(cat.dietLabel(DietType(i)))
			if err != nil || int(d) != i {
				t.Errorf("%s: diet %d did not round-trip: %v, %v", lang, i, d, err)
			}
		}
	}
}
