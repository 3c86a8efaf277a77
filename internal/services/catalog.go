package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"boletera-api/internal/models"
)

// CatalogRepository interface for artist, album and song data operations
type CatalogRepository interface {
	CreateArtist(ctx context.Context, artist models.Artist) (*models.Artist, error)
	GetArtist(ctx context.Context, id int64) (*models.Artist, error)
	ListArtists(ctx context.Context) ([]models.Artist, error)
	DeleteArtist(ctx context.Context, id int64) error
	CreateAlbum(ctx context.Context, album models.Album) (*models.Album, error)
	GetAlbum(ctx context.Context, id int64) (*models.Album, error)
	ListAlbumsByArtist(ctx context.Context, artistID int64) ([]models.Album, error)
	CreateSong(ctx context.Context, song models.Song) (*models.Song, error)
	ListSongsByAlbum(ctx context.Context, albumID int64) ([]models.Song, error)
}

// CatalogService manages artists and their discography. Artists may only
// manage their own profile; administrators may manage any.
type CatalogService struct {
	catalog CatalogRepository
	log     logrus.FieldLogger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalog CatalogRepository, log logrus.FieldLogger) *CatalogService {
	return &CatalogService{catalog: catalog, log: log.WithField("service", "catalog")}
}

// CreateArtist creates an artist profile. An ARTISTA actor becomes its owner.
func (s *CatalogService) CreateArtist(ctx context.Context, actor Actor, artist models.Artist) (*models.Artist, error) {
	if !actor.HasRole(models.RoleArtista, models.RoleAdmin) {
		return nil, &models.ForbiddenError{Message: "only artists can create artist profiles"}
	}
	if actor.Role == models.RoleArtista {
		artist.UserID = &actor.UserID
	}

	created, err := s.catalog.CreateArtist(ctx, artist)
	if err != nil {
		return nil, err
	}

	s.log.WithField("artist_id", created.ID).Info("artist created")
	return created, nil
}

// GetArtist returns an artist by id
func (s *CatalogService) GetArtist(ctx context.Context, id int64) (*models.Artist, error) {
	return s.catalog.GetArtist(ctx, id)
}

// ListArtists lists every artist by name
func (s *CatalogService) ListArtists(ctx context.Context) ([]models.Artist, error) {
	return s.catalog.ListArtists(ctx)
}

// DeleteArtist removes an artist with its albums and songs
func (s *CatalogService) DeleteArtist(ctx context.Context, actor Actor, id int64) error {
	if !actor.IsAdmin() {
		return &models.ForbiddenError{Message: "only administrators can delete artists"}
	}
	if err := s.catalog.DeleteArtist(ctx, id); err != nil {
		return err
	}

	s.log.WithField("artist_id", id).Info("artist deleted")
	return nil
}

// CreateAlbum adds an album to an artist the actor manages
func (s *CatalogService) CreateAlbum(ctx context.Context, actor Actor, album models.Album) (*models.Album, error) {
	if err := album.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.authorizeArtist(ctx, actor, album.ArtistID); err != nil {
		return nil, err
	}
	return s.catalog.CreateAlbum(ctx, album)
}

// ListAlbums lists the albums of an artist
func (s *CatalogService) ListAlbums(ctx context.Context, artistID int64) ([]models.Album, error) {
	if _, err := s.catalog.GetArtist(ctx, artistID); err != nil {
		return nil, err
	}
	return s.catalog.ListAlbumsByArtist(ctx, artistID)
}

// CreateSong adds a song to an album of an artist the actor manages
func (s *CatalogService) CreateSong(ctx context.Context, actor Actor, song models.Song) (*models.Song, error) {
	if err := song.Validate(); err != nil {
		return nil, err
	}

	album, err := s.catalog.GetAlbum(ctx, song.AlbumID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeArtist(ctx, actor, album.ArtistID); err != nil {
		return nil, err
	}
	return s.catalog.CreateSong(ctx, song)
}

// ListSongs lists the songs of an album
func (s *CatalogService) ListSongs(ctx context.Context, albumID int64) ([]models.Song, error) {
	if _, err := s.catalog.GetAlbum(ctx, albumID); err != nil {
		return nil, err
	}
	return s.catalog.ListSongsByAlbum(ctx, albumID)
}

func (s *CatalogService) authorizeArtist(ctx context.Context, actor Actor, artistID int64) (*models.Artist, error) {
	artist, err := s.catalog.GetArtist(ctx, artistID)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		return artist, nil
	}
	if actor.Role != models.RoleArtista || artist.UserID == nil || *artist.UserID != actor.UserID {
		return nil, &models.ForbiddenError{Message: "artist is managed by another user"}
	}
	return artist, nil
}
