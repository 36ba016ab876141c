package service

import (
	"github.com/subtrack-cli/subtrack/internal/model"
	"github.com/subtrack-cli/subtrack/internal/store"
)

// Preferences returns the singleton settings record.
func (s *Service) Preferences() model.UserPreferences {
	return s.store.Read().Preferences
}

// SavePreferences replaces the settings record wholesale. There is no
// per-field patching: callers read, modify, and write the whole record.
// The privacy-pinned flags are forced off on every write.
func (s *Service) SavePreferences(p model.UserPreferences) error {
	if p.DefaultLeadDays < 0 {
		return validationErr("default lead days is negative")
	}
	if p.BackupEveryDays < 0 {
		return validationErr("backup cadence is negative")
	}

	_, err := s.store.Update(func(doc store.Document) (store.Document, error) {
		p.CreatedAt = doc.Preferences.CreatedAt
		p.UpdatedAt = s.now()
		doc.Preferences = p.Sanitize()
		return doc, nil
	})
	return err
}
