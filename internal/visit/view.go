package visit

import "context"

// View is the store as seen by one user. With scoping on, the user only
// sees and changes visits attributed to them and every visit they create is
// attributed to them. With scoping off, the view passes straight through to
// the store and only fills in attribution the caller left empty.
type View struct {
	store   *Store
	ownerID string
	scoped  bool
}

// View returns the store as seen by ownerID.
func (s *Store) View(ownerID string, scoped bool) *View {
	return &View{store: s, ownerID: ownerID, scoped: scoped}
}

// OwnerID returns the user the view acts for.
func (v *View) OwnerID() string { return v.ownerID }

// IsScoped reports whether the view hides other owners' visits.
func (v *View) IsScoped() bool { return v.scoped }

func (v *View) filter() string {
	if v.scoped {
		return v.ownerID
	}
	return ""
}

// List returns the visible visits in insertion order. With scoping off,
// ownerID narrows the result the same way Store.List does; with scoping on
// it is ignored.
func (v *View) List(ownerID string) []ClientVisit {
	if v.scoped {
		return v.store.List(v.ownerID)
	}
	return v.store.List(ownerID)
}

// Get returns a visible visit.
func (v *View) Get(id string) (ClientVisit, bool) {
	c, ok := v.store.Get(id)
	if !ok || (v.scoped && c.MarketingPersonID != v.ownerID) {
		return ClientVisit{}, false
	}
	return c, true
}

// Create stores draft attributed to the view's owner.
func (v *View) Create(ctx context.Context, draft ClientVisit) (ClientVisit, error) {
	if v.scoped || draft.MarketingPersonID == "" {
		draft.MarketingPersonID = v.ownerID
	}
	return v.store.Create(ctx, draft)
}

// Update patches a visible visit. Invisible visits report ErrNotFound.
func (v *View) Update(ctx context.Context, id string, patch Patch) (err error) {
	defer func() { v.store.metrics.ObserveOp("update", err) }()

	v.store.mu.Lock()
	defer v.store.mu.Unlock()

	return v.store.update(ctx, id, v.filter(), patch)
}

// MarkSubmitted submits a visible visit.
func (v *View) MarkSubmitted(ctx context.Context, id string) (err error) {
	defer func() { v.store.metrics.ObserveOp("submit", err) }()

	v.store.mu.Lock()
	defer v.store.mu.Unlock()

	return v.store.update(ctx, id, v.filter(), submitPatch(v.store.now()))
}
