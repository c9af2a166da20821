package visit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evcraddock/client-visits/internal/blob"
	"github.com/evcraddock/client-visits/internal/metrics"
)

// DefaultKey is the storage key holding the visit collection.
const DefaultKey = "clientVisits"

// corruptSuffix is appended to the key when an undecodable collection is set aside.
const corruptSuffix = ".corrupt"

var (
	// ErrNotFound is returned when no visit has the requested id.
	ErrNotFound = errors.New("visit not found")
	// ErrInvalidStatus is returned for a status outside ValidStatuses.
	ErrInvalidStatus = errors.New("invalid visit status")
	// ErrInvalidTransition is returned when a submitted visit is moved back to draft.
	ErrInvalidTransition = errors.New("submitted visit cannot return to draft")
)

// Store owns the collection of visit records. The whole collection is read
// once by Open and rewritten to the blob store on every mutation.
type Store struct {
	mu      sync.Mutex
	blobs   blob.Store
	key     string
	now     func() time.Time
	newID   func() string
	logger  *slog.Logger
	metrics *metrics.Metrics

	visits []ClientVisit
	index  map[string]int // id -> position in visits
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithClock overrides the wall clock used for submission timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDFunc overrides visit id generation.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithLogger sets the logger used for recovery diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithMetrics records operations on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// Open loads the collection from blobs. A missing collection is empty. A
// collection that cannot be decoded is copied aside under "<key>.corrupt",
// logged, and replaced by an empty one. Only storage failures are returned.
func Open(ctx context.Context, blobs blob.Store, opts ...Option) (*Store, error) {
	s := &Store{
		blobs:  blobs,
		key:    DefaultKey,
		now:    time.Now,
		newID:  newVisitID,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	raw, err := s.blobs.Get(ctx, s.key)
	if errors.Is(err, blob.ErrNotFound) {
		s.setVisits(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading visits: %w", err)
	}

	visits, err := decode(raw)
	if err != nil {
		s.logger.Warn("visit collection is corrupt, starting empty",
			"key", s.key,
			"bytes", len(raw),
			"error", err,
			"preserved_as", s.key+corruptSuffix,
		)
		if perr := s.blobs.Put(ctx, s.key+corruptSuffix, raw); perr != nil {
			return fmt.Errorf("preserving corrupt visit collection: %w", perr)
		}
		visits = nil
	}

	s.setVisits(visits)
	s.metrics.SetCounts(countByStatus(s.visits))
	return nil
}

func (s *Store) setVisits(visits []ClientVisit) {
	s.visits = visits
	s.index = make(map[string]int, len(visits))
	for i, v := range visits {
		s.index[v.ID] = i
	}
}

// List returns the visits in insertion order. A non-empty ownerID keeps only
// the visits whose MarketingPersonID matches it.
func (s *Store) List(ownerID string) []ClientVisit {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ClientVisit, 0, len(s.visits))
	for _, v := range s.visits {
		if ownerID == "" || v.MarketingPersonID == ownerID {
			out = append(out, v.clone())
		}
	}
	return out
}

// Get returns the visit with the given id.
func (s *Store) Get(id string) (ClientVisit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return ClientVisit{}, false
	}
	return s.visits[i].clone(), true
}

// Create assigns an id to draft, appends it, and persists the collection.
// An empty status means Draft. Field contents are not validated.
func (s *Store) Create(ctx context.Context, draft ClientVisit) (created ClientVisit, err error) {
	defer func() { s.metrics.ObserveOp("create", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	v := draft.clone()
	switch v.Status {
	case "":
		v.Status = Draft
	case Draft, Submitted:
	default:
		return ClientVisit{}, fmt.Errorf("%w: %q", ErrInvalidStatus, v.Status)
	}
	s.stamp(&v)

	v.ID = s.uniqueID()
	if v.Products == nil {
		v.Products = []Product{}
	}
	assignProductIDs(v.ID, v.Products)

	next := append(s.visits[:len(s.visits):len(s.visits)], v)
	if err := s.persist(ctx, next); err != nil {
		return ClientVisit{}, err
	}
	s.visits = next
	s.index[v.ID] = len(next) - 1

	return v.clone(), nil
}

// Update overwrites the fields set in patch on the visit with the given id
// and persists the collection. An unknown id leaves the collection untouched
// and returns ErrNotFound.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (err error) {
	defer func() { s.metrics.ObserveOp("update", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(ctx, id, "", patch)
}

// MarkSubmitted sets the visit's status to Submitted and stamps SubmittedAt
// with the current time.
func (s *Store) MarkSubmitted(ctx context.Context, id string) (err error) {
	defer func() { s.metrics.ObserveOp("submit", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(ctx, id, "", submitPatch(s.now()))
}

// update applies patch to the visit with id. A non-empty ownerID makes
// visits of other owners invisible. Callers hold s.mu.
func (s *Store) update(ctx context.Context, id, ownerID string, patch Patch) error {
	i, ok := s.index[id]
	if !ok || (ownerID != "" && s.visits[i].MarketingPersonID != ownerID) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	current := s.visits[i]
	if patch.Status != nil {
		if !patch.Status.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidStatus, *patch.Status)
		}
		if current.Status == Submitted && *patch.Status == Draft {
			return ErrInvalidTransition
		}
	}

	updated := current.apply(patch)
	s.stamp(&updated)
	if patch.Products != nil {
		assignProductIDs(updated.ID, updated.Products)
	}

	next := make([]ClientVisit, len(s.visits))
	copy(next, s.visits)
	next[i] = updated

	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.visits = next
	return nil
}

// persist rewrites the full collection.
func (s *Store) persist(ctx context.Context, visits []ClientVisit) error {
	start := time.Now()

	data, err := encode(visits)
	if err != nil {
		return fmt.Errorf("encoding visits: %w", err)
	}
	if err := s.blobs.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("saving visits: %w", err)
	}

	s.metrics.ObservePersist(time.Since(start))
	s.metrics.SetCounts(countByStatus(visits))
	return nil
}

// stamp keeps SubmittedAt present exactly when the visit is submitted.
func (s *Store) stamp(v *ClientVisit) {
	switch v.Status {
	case Submitted:
		if v.SubmittedAt == "" {
			v.SubmittedAt = formatTime(s.now())
		}
	default:
		v.SubmittedAt = ""
	}
}

func (s *Store) uniqueID() string {
	for i := 0; i < 10; i++ {
		if id := s.newID(); id != "" {
			if _, taken := s.index[id]; !taken {
				return id
			}
		}
	}
	for {
		id := uuid.NewString()
		if _, taken := s.index[id]; !taken {
			return id
		}
	}
}

func newVisitID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// assignProductIDs fills in missing product ids, keeping them unique within the visit.
func assignProductIDs(visitID string, products []Product) {
	taken := make(map[string]bool, len(products))
	for _, p := range products {
		if p.ID != "" {
			taken[p.ID] = true
		}
	}
	for i := range products {
		if products[i].ID != "" {
			continue
		}
		id := fmt.Sprintf("%s-%d", visitID, i)
		for taken[id] {
			id = uuid.NewString()
		}
		products[i].ID = id
		taken[id] = true
	}
}

func submitPatch(now time.Time) Patch {
	status := Submitted
	ts := formatTime(now)
	return Patch{Status: &status, SubmittedAt: &ts}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func countByStatus(visits []ClientVisit) map[string]int {
	counts := map[string]int{string(Draft): 0, string(Submitted): 0}
	for _, v := range visits {
		counts[string(v.Status)]++
	}
	return counts
}
