package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"waxcrate/core/albuminfo"
	"waxcrate/core/events"
	"waxcrate/model"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router     *mux.Router
	recordRepo *fakeRecordRepo
	genreRepo  *fakeGenreRepo
	albumInfo  *fakeAlbumInfo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		recordRepo: newFakeRecordRepo(),
		genreRepo:  &fakeGenreRepo{},
		albumInfo:  &fakeAlbumInfo{},
	}

	hub := events.NewHub()
	go hub.Run()

	handler := NewAPIHandler(env.recordRepo, env.genreRepo, env.albumInfo, hub, nil)
	env.router = mux.NewRouter()
	registerAPIRoutes(env.router, handler)
	return env
}

func (env *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

func (env *testEnv) seedRecord(t *testing.T, title, artist string) *model.Record {
	t.Helper()
	rr := env.do(t, http.MethodPost, "/api/records", model.RecordCreate{Title: title, Artist: artist})
	require.Equal(t, http.StatusCreated, rr.Code)

	var rec model.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	return &rec
}

func TestHealthHandler(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Record collection API is running")
}

func TestCreateRecord(t *testing.T) {
	env := newTestEnv(t)

	payload := model.RecordCreate{
		Title:       "Horses",
		Artist:      "Patti Smith",
		AlbumArtURL: "https://example.com/horses.jpg",
		DiscogsURL:  "https://discogs.example/horses",
		ReviewURL:   "https://lastfm.example/horses",
		Genres:      []string{"Punk"},
		Tracks: []model.TrackPayload{
			{Title: "Gloria", Position: "A1", Duration: "5:57"},
		},
	}
	rr := env.do(t, http.MethodPost, "/api/records", payload)
	require.Equal(t, http.StatusCreated, rr.Code)

	var rec model.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, "Horses", rec.Title)
	require.Len(t, rec.Tracks, 1)
	assert.Equal(t, "Gloria", rec.Tracks[0].Title)

	// All URLs were supplied, so the external APIs are never queried.
	assert.Zero(t, env.albumInfo.calls)
}

func TestCreateRecordFillsMissingURLs(t *testing.T) {
	env := newTestEnv(t)

	art := "https://img.discogs.example/cover.jpg"
	discogs := "https://discogs.example/release/1"
	review := "https://last.fm/music/album"
	env.albumInfo.info = &albuminfo.Info{
		AlbumArtURL: &art,
		DiscogsURL:  &discogs,
		ReviewURL:   &review,
	}

	rr := env.do(t, http.MethodPost, "/api/records", model.RecordCreate{
		Title:  "Low",
		Artist: "David Bowie",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 1, env.albumInfo.calls)

	var rec model.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, art, rec.AlbumArtURL)
	assert.Equal(t, discogs, rec.DiscogsURL)
	assert.Equal(t, review, rec.ReviewURL)
}

func TestCreateRecordKeepsProvidedURLs(t *testing.T) {
	env := newTestEnv(t)

	lookedUp := "https://img.discogs.example/other.jpg"
	env.albumInfo.info = &albuminfo.Info{AlbumArtURL: &lookedUp}

	rr := env.do(t, http.MethodPost, "/api/records", model.RecordCreate{
		Title:       "Lodger",
		Artist:      "David Bowie",
		AlbumArtURL: "https://example.com/mine.jpg",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var rec model.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	// The client's value wins over the lookup.
	assert.Equal(t, "https://example.com/mine.jpg", rec.AlbumArtURL)
}

func TestCreateRecordValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name    string
		payload model.RecordCreate
		field   string
	}{
		{"missing title", model.RecordCreate{Artist: "Someone"}, "title"},
		{"missing artist", model.RecordCreate{Title: "Something"}, "artist"},
		{"blank title", model.RecordCreate{Title: "   ", Artist: "Someone"}, "title"},
		{
			"track without title",
			model.RecordCreate{
				Title:  "OK",
				Artist: "Fine",
				Tracks: []model.TrackPayload{{Position: "A1"}},
			},
			"tracks[0].title",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/api/records", tc.payload)
			assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

			var resp struct {
				Fields []FieldError `json:"fields"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			require.NotEmpty(t, resp.Fields)
			assert.Equal(t, tc.field, resp.Fields[0].Field)
		})
	}
}

func TestCreateRecordMalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/records", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetRecord(t *testing.T) {
	env := newTestEnv(t)
	created := env.seedRecord(t, "Pink Moon", "Nick Drake")

	rr := env.do(t, http.MethodGet, "/api/records/1", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var rec model.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, created.ID, rec.ID)
	assert.Equal(t, "Pink Moon", rec.Title)
}

func TestGetRecordNotFound(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/records/42", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetRecordInvalidID(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/records/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListRecordsPagination(t *testing.T) {
	env := newTestEnv(t)
	for _, title := range []string{"A", "B", "C"} {
		env.seedRecord(t, title, "X")
	}

	rr := env.do(t, http.MethodGet, "/api/records?skip=1&limit=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var records []model.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "B", records[0].Title)
}

func TestListRecordsBadPagination(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/records?limit=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/records?skip=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSearchRecords(t *testing.T) {
	env := newTestEnv(t)
	env.seedRecord(t, "Blue Train", "John Coltrane")
	env.seedRecord(t, "Giant Steps", "John Coltrane")
	env.seedRecord(t, "Kind of Blue", "Miles Davis")

	rr := env.do(t, http.MethodGet, "/api/records/search?q=blue", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var results model.RecordSearchResults
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &results))
	assert.Equal(t, int64(2), results.Total)
	assert.Len(t, results.Results, 2)
}

func TestSearchRecordsMissingQuery(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/records/search", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateRecord(t *testing.T) {
	env := newTestEnv(t)
	env.seedRecord(t, "Fun House", "The Stooges")

	condition := "Good"
	rr := env.do(t, http.MethodPut, "/api/records/1", model.RecordUpdate{Condition: &condition})
	require.Equal(t, http.StatusOK, rr.Code)

	var rec model.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, "Good", rec.Condition)
	assert.Equal(t, "Fun House", rec.Title)
}

func TestUpdateRecordNotFound(t *testing.T) {
	env := newTestEnv(t)

	title := "Nothing"
	rr := env.do(t, http.MethodPut, "/api/records/99", model.RecordUpdate{Title: &title})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateRecordRejectsBlankTitle(t *testing.T) {
	env := newTestEnv(t)
	env.seedRecord(t, "Raw Power", "The Stooges")

	blank := "  "
	rr := env.do(t, http.MethodPut, "/api/records/1", model.RecordUpdate{Title: &blank})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestDeleteRecord(t *testing.T) {
	env := newTestEnv(t)
	env.seedRecord(t, "Loveless", "My Bloody Valentine")

	rr := env.do(t, http.MethodDelete, "/api/records/1", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/records/1", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteRecordNotFound(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodDelete, "/api/records/7", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRepositoryErrorsSurfaceAs500(t *testing.T) {
	env := newTestEnv(t)
	env.recordRepo.failAll = true

	rr := env.do(t, http.MethodGet, "/api/records", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestListGenres(t *testing.T) {
	env := newTestEnv(t)
	env.genreRepo.genres = []*model.Genre{
		{ID: 1, Name: "Jazz"},
		{ID: 2, Name: "Punk"},
	}

	rr := env.do(t, http.MethodGet, "/api/genres", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var genres []model.Genre
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &genres))
	assert.Len(t, genres, 2)
}

func TestFetchAlbumInfo(t *testing.T) {
	env := newTestEnv(t)

	art := "https://img.discogs.example/a.jpg"
	env.albumInfo.info = &albuminfo.Info{AlbumArtURL: &art}

	rr := env.do(t, http.MethodGet, "/api/fetch-album-info?artist=Can&title=Future+Days", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var info albuminfo.Info
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	require.NotNil(t, info.AlbumArtURL)
	assert.Equal(t, art, *info.AlbumArtURL)
	assert.Nil(t, info.DiscogsURL)
}

func TestFetchAlbumInfoMissingParams(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/fetch-album-info?artist=Can", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// doUpload posts a multipart form with a single file part to path.
func (env *testEnv) doUpload(t *testing.T, path, field, filename string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

func TestUploadArtworkMissingRecord(t *testing.T) {
	env := newTestEnv(t)

	rr := env.doUpload(t, "/api/records/42/artwork", "file", "cover.jpg")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUploadArtworkInvalidID(t *testing.T) {
	env := newTestEnv(t)

	rr := env.doUpload(t, "/api/records/abc/artwork", "file", "cover.jpg")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUploadArtworkUnsupportedType(t *testing.T) {
	env := newTestEnv(t)
	env.seedRecord(t, "Dirty", "Sonic Youth")

	rr := env.doUpload(t, "/api/records/1/artwork", "file", "cover.exe")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Unsupported image type")
}

func TestUploadArtworkMissingFileField(t *testing.T) {
	env := newTestEnv(t)
	env.seedRecord(t, "Goo", "Sonic Youth")

	rr := env.doUpload(t, "/api/records/1/artwork", "attachment", "cover.jpg")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUploadArtworkNotMultipart(t *testing.T) {
	env := newTestEnv(t)
	env.seedRecord(t, "Sister", "Sonic Youth")

	rr := env.do(t, http.MethodPost, "/api/records/1/artwork", map[string]string{"file": "nope"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUploadArtworkStorageUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.seedRecord(t, "EVOL", "Sonic Youth")

	// Object storage is never initialized in tests, so a valid upload
	// fails at the storage layer.
	rr := env.doUpload(t, "/api/records/1/artwork", "file", "cover.jpg")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Failed to store artwork")
}
