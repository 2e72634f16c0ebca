package engine

import "clipsync/go-backend/pkg/models"

// Settings gate what leaves the device. They never affect inbound handling.
type Settings struct {
	SyncText   bool
	SyncImages bool
	MaxSizeMB  int
}

func DefaultSettings() Settings {
	return Settings{
		SyncText:   true,
		SyncImages: true,
		MaxSizeMB:  10,
	}
}

func (s Settings) allows(contentType models.ContentType, size int) bool {
	switch contentType {
	case models.ContentTypeText:
		if !s.SyncText {
			return false
		}
	case models.ContentTypeImage:
		if !s.SyncImages {
			return false
		}
	default:
		return false
	}
	return s.MaxSizeMB <= 0 || size <= s.MaxSizeMB*1024*1024
}
