package models

import (
	"strings"
	"time"
)

// Artist is a performer that may headline events
type Artist struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"nombre" db:"nombre"`
	Genre     string    `json:"genero" db:"genero"`
	Biography string    `json:"biografia" db:"biografia"`
	UserID    *int64    `json:"usuarioId,omitempty" db:"usuario_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Album belongs to an artist
type Album struct {
	ID        int64     `json:"id" db:"id"`
	ArtistID  int64     `json:"artistaId" db:"artista_id"`
	Title     string    `json:"titulo" db:"titulo"`
	Year      int       `json:"anio" db:"anio"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Song belongs to an album
type Song struct {
	ID              int64     `json:"id" db:"id"`
	AlbumID         int64     `json:"albumId" db:"album_id"`
	Title           string    `json:"titulo" db:"titulo"`
	DurationSeconds int       `json:"duracionSegundos" db:"duracion_segundos"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// Validate validates the artist data
func (a *Artist) Validate() error {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return NewValidationError("nombre", "is required")
	}
	if len(a.Name) > 200 {
		return NewValidationError("nombre", "must be less than 200 characters")
	}
	if len(a.Genre) > 100 {
		return NewValidationError("genero", "must be less than 100 characters")
	}
	return nil
}

// Validate validates the album data
func (a *Album) Validate() error {
	a.Title = strings.TrimSpace(a.Title)
	if a.ArtistID <= 0 {
		return NewValidationError("artistaId", "must be a positive integer")
	}
	if a.Title == "" {
		return NewValidationError("titulo", "is required")
	}
	if a.Year < 1900 || a.Year > time.Now().Year()+1 {
		return NewValidationError("anio", "is out of range")
	}
	return nil
}

// Validate validates the song data
func (s *Song) Validate() error {
	s.Title = strings.TrimSpace(s.Title)
	if s.AlbumID <= 0 {
		return NewValidationError("albumId", "must be a positive integer")
	}
	if s.Title == "" {
		return NewValidationError("titulo", "is required")
	}
	if s.DurationSeconds <= 0 {
		return NewValidationError("duracionSegundos", "must be greater than 0")
	}
	return nil
}
