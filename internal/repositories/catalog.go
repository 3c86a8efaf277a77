package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"boletera-api/internal/models"
)

// CatalogRepository handles artists, albums and songs
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// CreateArtist creates a new artist
func (r *CatalogRepository) CreateArtist(ctx context.Context, artist models.Artist) (*models.Artist, error) {
	if err := artist.Validate(); err != nil {
		return nil, err
	}

	artist.CreatedAt = time.Now().UTC()
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO artistas (nombre, genero, biografia, usuario_id, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`),
		artist.Name, artist.Genre, artist.Biography, artist.UserID, artist.CreatedAt,
	).Scan(&artist.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create artist")
	}
	return &artist, nil
}

// GetArtist retrieves an artist by ID
func (r *CatalogRepository) GetArtist(ctx context.Context, id int64) (*models.Artist, error) {
	artist := &models.Artist{}
	err := r.db.GetContext(ctx, artist, r.db.Rebind(`
		SELECT id, nombre, genero, biografia, usuario_id, created_at FROM artistas WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NewNotFoundError("artista", id)
		}
		return nil, errors.Wrap(err, "failed to get artist")
	}
	return artist, nil
}

// ListArtists returns every artist ordered by name
func (r *CatalogRepository) ListArtists(ctx context.Context) ([]models.Artist, error) {
	artists := []models.Artist{}
	err := r.db.SelectContext(ctx, &artists, `
		SELECT id, nombre, genero, biografia, usuario_id, created_at FROM artistas ORDER BY nombre, id`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list artists")
	}
	return artists, nil
}

// DeleteArtist removes an artist with its albums and songs
func (r *CatalogRepository) DeleteArtist(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM artistas WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "failed to delete artist")
	}
	return expectRow(res, models.NewNotFoundError("artista", id))
}

// CreateAlbum creates a new album for an existing artist
func (r *CatalogRepository) CreateAlbum(ctx context.Context, album models.Album) (*models.Album, error) {
	if err := album.Validate(); err != nil {
		return nil, err
	}

	album.CreatedAt = time.Now().UTC()
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO albumes (artista_id, titulo, anio, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`),
		album.ArtistID, album.Title, album.Year, album.CreatedAt,
	).Scan(&album.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, models.NewNotFoundError("artista", album.ArtistID)
		}
		return nil, errors.Wrap(err, "failed to create album")
	}
	return &album, nil
}

// GetAlbum retrieves an album by ID
func (r *CatalogRepository) GetAlbum(ctx context.Context, id int64) (*models.Album, error) {
	album := &models.Album{}
	err := r.db.GetContext(ctx, album, r.db.Rebind(`
		SELECT id, artista_id, titulo, anio, created_at FROM albumes WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NewNotFoundError("album", id)
		}
		return nil, errors.Wrap(err, "failed to get album")
	}
	return album, nil
}

// ListAlbumsByArtist returns the albums of an artist by year
func (r *CatalogRepository) ListAlbumsByArtist(ctx context.Context, artistID int64) ([]models.Album, error) {
	albums := []models.Album{}
	err := r.db.SelectContext(ctx, &albums, r.db.Rebind(`
		SELECT id, artista_id, titulo, anio, created_at FROM albumes WHERE artista_id = ? ORDER BY anio, id`), artistID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list albums")
	}
	return albums, nil
}

// CreateSong creates a new song for an existing album
func (r *CatalogRepository) CreateSong(ctx context.Context, song models.Song) (*models.Song, error) {
	if err := song.Validate(); err != nil {
		return nil, err
	}

	song.CreatedAt = time.Now().UTC()
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO canciones (album_id, titulo, duracion_segundos, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`),
		song.AlbumID, song.Title, song.DurationSeconds, song.CreatedAt,
	).Scan(&song.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, models.NewNotFoundError("album", song.AlbumID)
		}
		return nil, errors.Wrap(err, "failed to create song")
	}
	return &song, nil
}

// ListSongsByAlbum returns the songs of an album in insertion order
func (r *CatalogRepository) ListSongsByAlbum(ctx context.Context, albumID int64) ([]models.Song, error) {
	songs := []models.Song{}
	err := r.db.SelectContext(ctx, &songs, r.db.Rebind(`
		SELECT id, album_id, titulo, duracion_segundos, created_at FROM canciones WHERE album_id = ? ORDER BY id`), albumID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list songs")
	}
	return songs, nil
}
