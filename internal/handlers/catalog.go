package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"boletera-api/internal/models"
)

// CatalogHandler handles artists, albums and songs
type CatalogHandler struct {
	catalog CatalogServiceInterface
	log     logrus.FieldLogger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog CatalogServiceInterface, log logrus.FieldLogger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: log}
}

// ListArtists handles GET /artistas
func (h *CatalogHandler) ListArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := h.catalog.ListArtists(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, artists)
}

// CreateArtist handles POST /artistas
func (h *CatalogHandler) CreateArtist(w http.ResponseWriter, r *http.Request) {
	var artist models.Artist
	if err := decodeJSON(r, &artist); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	created, err := h.catalog.CreateArtist(r.Context(), currentActor(r), artist)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondCreated(w, "artist created", created)
}

// GetArtist handles GET /artistas/{id}
func (h *CatalogHandler) GetArtist(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	artist, err := h.catalog.GetArtist(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, artist)
}

// DeleteArtist handles DELETE /artistas/{id}
func (h *CatalogHandler) DeleteArtist(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	if err := h.catalog.DeleteArtist(r.Context(), currentActor(r), id); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondMessage(w, "artist deleted", nil)
}

// ListAlbums handles GET /artistas/{id}/albumes
func (h *CatalogHandler) ListAlbums(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	albums, err := h.catalog.ListAlbums(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, albums)
}

// CreateAlbum handles POST /artistas/{id}/albumes
func (h *CatalogHandler) CreateAlbum(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	var album models.Album
	if err := decodeJSON(r, &album); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	album.ArtistID = id

	created, err := h.catalog.CreateAlbum(r.Context(), currentActor(r), album)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondCreated(w, "album created", created)
}

// ListSongs handles GET /albumes/{id}/canciones
func (h *CatalogHandler) ListSongs(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	songs, err := h.catalog.ListSongs(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondOK(w, songs)
}

// CreateSong handles POST /albumes/{id}/canciones
func (h *CatalogHandler) CreateSong(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	var song models.Song
	if err := decodeJSON(r, &song); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	song.AlbumID = id

	created, err := h.catalog.CreateSong(r.Context(), currentActor(r), song)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	respondCreated(w, "song created", created)
}
