package model

import (
	"time"

	"github.com/thoas/go-funk"
)

// Translator is owned by the certification system. The core only reads it.
type Translator struct {
	ID             string          `gorm:"primaryKey;type:VARCHAR(64)" json:"id"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone"`
	PushToken      string          `json:"-"`
	AvailableFrom  time.Time       `json:"available_from"`
	AvailableUntil time.Time       `json:"available_until"`
	Certifications []Certification `gorm:"foreignKey:TranslatorID;references:ID;constraint:OnDelete:CASCADE;" json:"certifications"`
}

type Certification struct {
	TranslatorID string `gorm:"primaryKey;type:VARCHAR(64)" json:"-"`
	LanguagePair string `gorm:"primaryKey;type:VARCHAR(16)" json:"language_pair"`
}

type TranslatorList []Translator

func (t Translator) LanguagePairs() []string {
	pairs := make([]string, 0, len(t.Certifications))
	for _, c := range t.Certifications {
		pairs = append(pairs, c.LanguagePair)
	}
	return pairs
}

func (t Translator) IsCertifiedFor(languagePair string) bool {
	return funk.ContainsString(t.LanguagePairs(), languagePair)
}

// IsAvailable reports whether the availability window intersects [from, until].
// A zero bound is unbounded.
func (t Translator) IsAvailable(from, until time.Time) bool {
	if !t.AvailableFrom.IsZero() && t.AvailableFrom.After(until) {
		return false
	}
	if !t.AvailableUntil.IsZero() && t.AvailableUntil.Before(from) {
		return false
	}
	return true
}
