package server

import (
	"context"
	"sort"
	"strings"
	"sync"

	"waxcrate/core/albuminfo"
	"waxcrate/model"
)

// fakeRecordRepo is an in-memory RecordRepository for handler tests.
type fakeRecordRepo struct {
	mu      sync.Mutex
	records map[int64]*model.Record
	nextID  int64

	failAll bool // force every call to error
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: make(map[int64]*model.Record), nextID: 1}
}

type fakeRepoError struct{}

func (fakeRepoError) Error() string { return "repository failure" }

func (f *fakeRecordRepo) CreateRecord(ctx context.Context, payload *model.RecordCreate) (*model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, fakeRepoError{}
	}

	rec := &model.Record{
		ID:            f.nextID,
		Title:         payload.Title,
		Artist:        payload.Artist,
		ReleaseDate:   payload.ReleaseDate,
		Label:         payload.Label,
		CatalogNumber: payload.CatalogNumber,
		Format:        payload.Format,
		Condition:     payload.Condition,
		PurchaseDate:  payload.PurchaseDate,
		PurchasePrice: payload.PurchasePrice,
		AlbumArtURL:   payload.AlbumArtURL,
		Notes:         payload.Notes,
		DiscogsURL:    payload.DiscogsURL,
		ReviewURL:     payload.ReviewURL,
		Genres:        []model.Genre{},
		Tracks:        []model.Track{},
	}
	for i, name := range payload.Genres {
		rec.Genres = append(rec.Genres, model.Genre{ID: int64(i + 1), Name: name})
	}
	for i, t := range payload.Tracks {
		rec.Tracks = append(rec.Tracks, model.Track{
			ID:       int64(i + 1),
			RecordID: rec.ID,
			Title:    t.Title,
			Position: t.Position,
			Duration: t.Duration,
		})
	}

	f.nextID++
	f.records[rec.ID] = rec
	return rec, nil
}

func (f *fakeRecordRepo) GetRecordByID(ctx context.Context, id int64) (*model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, fakeRepoError{}
	}
	return f.records[id], nil
}

func (f *fakeRecordRepo) ListRecords(ctx context.Context, skip, limit int) ([]*model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, fakeRepoError{}
	}

	all := f.sortedLocked()
	if skip >= len(all) {
		return []*model.Record{}, nil
	}
	end := skip + limit
	if end > len(all) {
		end = len(all)
	}
	return all[skip:end], nil
}

func (f *fakeRecordRepo) SearchRecords(ctx context.Context, query string, skip, limit int) (*model.RecordSearchResults, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, fakeRepoError{}
	}

	q := strings.ToLower(query)
	matches := make([]*model.Record, 0)
	for _, rec := range f.sortedLocked() {
		if f.matchesLocked(rec, q) {
			matches = append(matches, rec)
		}
	}

	results := &model.RecordSearchResults{
		Results: []*model.Record{},
		Total:   int64(len(matches)),
	}
	if skip < len(matches) {
		end := skip + limit
		if end > len(matches) {
			end = len(matches)
		}
		results.Results = matches[skip:end]
	}
	return results, nil
}

func (f *fakeRecordRepo) UpdateRecord(ctx context.Context, id int64, upd *model.RecordUpdate) (*model.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, fakeRepoError{}
	}

	rec, ok := f.records[id]
	if !ok {
		return nil, nil
	}

	if upd.Title != nil {
		rec.Title = *upd.Title
	}
	if upd.Artist != nil {
		rec.Artist = *upd.Artist
	}
	if upd.Condition != nil {
		rec.Condition = *upd.Condition
	}
	if upd.Notes != nil {
		rec.Notes = *upd.Notes
	}
	if upd.Genres != nil {
		rec.Genres = []model.Genre{}
		for i, name := range *upd.Genres {
			rec.Genres = append(rec.Genres, model.Genre{ID: int64(i + 1), Name: name})
		}
	}
	if upd.Tracks != nil {
		rec.Tracks = []model.Track{}
		for i, t := range *upd.Tracks {
			rec.Tracks = append(rec.Tracks, model.Track{
				ID:       int64(i + 1),
				RecordID: id,
				Title:    t.Title,
				Position: t.Position,
				Duration: t.Duration,
			})
		}
	}
	return rec, nil
}

func (f *fakeRecordRepo) DeleteRecord(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return false, fakeRepoError{}
	}

	if _, ok := f.records[id]; !ok {
		return false, nil
	}
	delete(f.records, id)
	return true, nil
}

func (f *fakeRecordRepo) UpdateAlbumArtURL(ctx context.Context, id int64, artURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return fakeRepoError{}
	}

	if rec, ok := f.records[id]; ok {
		rec.AlbumArtURL = artURL
	}
	return nil
}

func (f *fakeRecordRepo) sortedLocked() []*model.Record {
	all := make([]*model.Record, 0, len(f.records))
	for _, rec := range f.records {
		all = append(all, rec)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

func (f *fakeRecordRepo) matchesLocked(rec *model.Record, q string) bool {
	for _, field := range []string{rec.Title, rec.Artist, rec.Label, rec.CatalogNumber} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	for _, g := range rec.Genres {
		if strings.Contains(strings.ToLower(g.Name), q) {
			return true
		}
	}
	return false
}

// fakeGenreRepo is an in-memory GenreRepository for handler tests.
type fakeGenreRepo struct {
	genres []*model.Genre
}

func (f *fakeGenreRepo) ListGenres(ctx context.Context, skip, limit int) ([]*model.Genre, error) {
	if skip >= len(f.genres) {
		return []*model.Genre{}, nil
	}
	end := skip + limit
	if end > len(f.genres) {
		end = len(f.genres)
	}
	return f.genres[skip:end], nil
}

func (f *fakeGenreRepo) GetGenreByName(ctx context.Context, name string) (*model.Genre, error) {
	for _, g := range f.genres {
		if g.Name == name {
			return g, nil
		}
	}
	return nil, nil
}

// fakeAlbumInfo returns a canned lookup result and counts calls.
type fakeAlbumInfo struct {
	info  *albuminfo.Info
	calls int
}

func (f *fakeAlbumInfo) Lookup(ctx context.Context, artist, title string) *albuminfo.Info {
	f.calls++
	if f.info != nil {
		return f.info
	}
	return &albuminfo.Info{}
}
