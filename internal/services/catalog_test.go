package services

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boletera-api/internal/models"
	"boletera-api/internal/testutil"
)

func TestCatalogService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	artistUser := testutil.CreateUser(t, env.db, "banda@example.com", models.RoleArtista)
	artistActor := Actor{UserID: artistUser, Role: models.RoleArtista}
	otherArtist := Actor{UserID: testutil.CreateUser(t, env.db, "solista@example.com", models.RoleArtista), Role: models.RoleArtista}
	admin := Actor{UserID: 1000, Role: models.RoleAdmin}

	artist, err := env.catalog.CreateArtist(ctx, artistActor, models.Artist{Name: "Los Tigres", Genre: "Norteño"})
	require.NoError(t, err)
	require.NotNil(t, artist.UserID)
	assert.Equal(t, artistUser, *artist.UserID)

	_, err = env.catalog.CreateArtist(ctx, env.buyer(), models.Artist{Name: "Nadie"})
	assert.ErrorIs(t, err, models.ErrForbidden)

	album, err := env.catalog.CreateAlbum(ctx, artistActor, models.Album{ArtistID: artist.ID, Title: "Jefe de Jefes", Year: 1997})
	require.NoError(t, err)

	_, err = env.catalog.CreateAlbum(ctx, otherArtist, models.Album{ArtistID: artist.ID, Title: "Ajeno", Year: 2000})
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = env.catalog.CreateAlbum(ctx, admin, models.Album{ArtistID: 9999, Title: "Fantasma", Year: 2000})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = env.catalog.CreateSong(ctx, artistActor, models.Song{AlbumID: album.ID, Title: "El Circo", DurationSeconds: 215})
	require.NoError(t, err)
	_, err = env.catalog.CreateSong(ctx, otherArtist, models.Song{AlbumID: album.ID, Title: "Copia", DurationSeconds: 100})
	assert.ErrorIs(t, err, models.ErrForbidden)

	albums, err := env.catalog.ListAlbums(ctx, artist.ID)
	require.NoError(t, err)
	assert.Len(t, albums, 1)

	songs, err := env.catalog.ListSongs(ctx, album.ID)
	require.NoError(t, err)
	assert.Len(t, songs, 1)

	_, err = env.catalog.ListSongs(ctx, 9999)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, env.catalog.DeleteArtist(ctx, artistActor, artist.ID), models.ErrForbidden)
	require.NoError(t, env.catalog.DeleteArtist(ctx, admin, artist.ID))

	_, err = env.catalog.GetArtist(ctx, artist.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAuditService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := Actor{UserID: testutil.CreateUser(t, env.db, "admin@example.com", models.RoleAdmin), Role: models.RoleAdmin}

	r := httptest.NewRequest("POST", "/ordenes/1/reembolsar", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	r.Header.Set("User-Agent", "pruebas/1.0")

	env.audit.LogAction(ctx, admin, models.AuditActionOrderRefund, models.AuditTargetOrder, 1, map[string]string{"motivo": "evento cancelado"}, r)
	env.audit.LogAction(ctx, admin, models.AuditActionEventDelete, models.AuditTargetEvent, 2, nil, nil)

	logs, err := env.audit.GetAuditLogs(ctx, models.AuditLogFilters{TargetType: models.AuditTargetOrder})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, admin.UserID, logs[0].UserID)
	assert.Equal(t, "203.0.113.7", logs[0].IPAddress)
	assert.Equal(t, "pruebas/1.0", logs[0].UserAgent)
	assert.JSONEq(t, `{"motivo":"evento cancelado"}`, string(logs[0].Details))

	all, err := env.audit.GetAuditLogs(ctx, models.AuditLogFilters{UserID: admin.UserID})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.2"}, "10.0.0.3:1234", "198.51.100.1"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.9"}, "10.0.0.3:1234", "198.51.100.9"},
		{"remote addr", nil, "192.0.2.4:5555", "192.0.2.4"},
		{"remote without port", nil, "192.0.2.4", "192.0.2.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(r))
		})
	}
}
