package service

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/studymate/internal/domain"
)

// StudyService owns the notes, bookmarks and saved points of one client
// and is the only writer of its stored document.
type StudyService struct {
	store *StudyStore
	now   func() time.Time

	once  sync.Once
	mu    sync.Mutex
	ready bool
	data  domain.StudyData
}

// NewStudyService creates a repository; nothing is read until Load
func NewStudyService(store *StudyStore) *StudyService {
	return &StudyService{
		store: store,
		now:   time.Now,
		data:  domain.StudyData{}.Normalize(),
	}
}

// Load reads the stored document. Only the first call touches the store.
func (s *StudyService) Load(ctx context.Context) {
	s.once.Do(func() {
		data := s.store.Load(ctx).Normalize()

		s.mu.Lock()
		s.data = data
		s.ready = true
		s.mu.Unlock()

		log.Debug().
			Str("key", s.store.Key()).
			Int("notes", len(data.Notes)).
			Int("bookmarks", len(data.Bookmarks)).
			Int("saved_points", len(data.SavedPoints)).
			Msg("Study data loaded")
	})
}

// Ready reports whether the initial load has completed
func (s *StudyService) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

func (s *StudyService) Notes() []domain.StudyItem {
	items, _ := s.Items(domain.KindNote)
	return items
}

func (s *StudyService) Bookmarks() []domain.StudyItem {
	items, _ := s.Items(domain.KindBookmark)
	return items
}

func (s *StudyService) SavedPoints() []domain.StudyItem {
	items, _ := s.Items(domain.KindSavedPoint)
	return items
}

// Items returns a copy of one collection, most recent first
func (s *StudyService) Items(kind domain.StudyItemKind) ([]domain.StudyItem, error) {
	if !kind.Valid() {
		return nil, domain.ErrInvalidKind
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(*s.collection(kind)), nil
}

// Snapshot returns a copy of the whole document
func (s *StudyService) Snapshot() domain.StudyData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.StudyData{
		Notes:       cloneItems(s.data.Notes),
		Bookmarks:   cloneItems(s.data.Bookmarks),
		SavedPoints: cloneItems(s.data.SavedPoints),
	}
}

// Find looks an item up by id
func (s *StudyService) Find(kind domain.StudyItemKind, id string) (domain.StudyItem, bool) {
	if !kind.Valid() {
		return domain.StudyItem{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range *s.collection(kind) {
		if item.ID == id {
			return item, true
		}
	}
	return domain.StudyItem{}, false
}

// Add prepends a new item to its collection and saves the document
func (s *StudyService) Add(ctx context.Context, kind domain.StudyItemKind, content, title string) (domain.StudyItem, error) {
	if !kind.Valid() {
		return domain.StudyItem{}, domain.ErrInvalidKind
	}
	s.Load(ctx)

	if title == "" {
		title = kind.DefaultTitle()
	}
	item := domain.StudyItem{
		ID:        domain.NewID(),
		Title:     title,
		Kind:      kind,
		Content:   content,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.collection(kind)
	*items = append([]domain.StudyItem{item}, *items...)
	s.store.Save(ctx, s.data)

	return item, nil
}

// Delete removes the item with id and saves the document, even when id was absent
func (s *StudyService) Delete(ctx context.Context, kind domain.StudyItemKind, id string) error {
	if !kind.Valid() {
		return domain.ErrInvalidKind
	}
	s.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.collection(kind)
	kept := make([]domain.StudyItem, 0, len(*items))
	for _, item := range *items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	*items = kept
	s.store.Save(ctx, s.data)

	return nil
}

func (s *StudyService) AddNote(ctx context.Context, content, title string) domain.StudyItem {
	item, _ := s.Add(ctx, domain.KindNote, content, title)
	return item
}

func (s *StudyService) AddBookmark(ctx context.Context, content, title string) domain.StudyItem {
	item, _ := s.Add(ctx, domain.KindBookmark, content, title)
	return item
}

func (s *StudyService) AddSavedPoint(ctx context.Context, content, title string) domain.StudyItem {
	item, _ := s.Add(ctx, domain.KindSavedPoint, content, title)
	return item
}

func (s *StudyService) DeleteNote(ctx context.Context, id string) {
	_ = s.Delete(ctx, domain.KindNote, id)
}

func (s *StudyService) DeleteBookmark(ctx context.Context, id string) {
	_ = s.Delete(ctx, domain.KindBookmark, id)
}

func (s *StudyService) DeleteSavedPoint(ctx context.Context, id string) {
	_ = s.Delete(ctx, domain.KindSavedPoint, id)
}

// collection must be called with mu held
func (s *StudyService) collection(kind domain.StudyItemKind) *[]domain.StudyItem {
	switch kind {
	case domain.KindBookmark:
		return &s.data.Bookmarks
	case domain.KindSavedPoint:
		return &s.data.SavedPoints
	default:
		return &s.data.Notes
	}
}

func cloneItems(items []domain.StudyItem) []domain.StudyItem {
	out := make([]domain.StudyItem, len(items))
	copy(out, items)
	return out
}

// StudyRegistry hands out one loaded StudyService per client
type StudyRegistry struct {
	kv      domain.KeyValueStore
	baseKey string
	ttl     time.Duration
	repos   *cache.Cache
	mu      sync.Mutex
}

// NewStudyRegistry keeps idle repositories cached for ttl
func NewStudyRegistry(kv domain.KeyValueStore, baseKey string, ttl time.Duration) *StudyRegistry {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &StudyRegistry{
		kv:      kv,
		baseKey: baseKey,
		ttl:     ttl,
		repos:   cache.New(ttl, 10*time.Minute),
	}
}

// For returns the loaded repository of clientID
func (r *StudyRegistry) For(ctx context.Context, clientID string) *StudyService {
	key := StorageKey(r.baseKey, clientID)

	r.mu.Lock()
	var svc *StudyService
	if v, ok := r.repos.Get(key); ok {
		svc = v.(*StudyService)
	} else {
		svc = NewStudyService(NewStudyStore(r.kv, key))
	}
	// refresh the idle deadline
	r.repos.Set(key, svc, r.ttl)
	r.mu.Unlock()

	svc.Load(ctx)
	return svc
}
