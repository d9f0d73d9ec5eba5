package flow

import (
	"context"
	"sync"
	"time"
)

// Draft is the resumable snapshot of an in-progress flow. It is keyed by
// (service slug, identity ref) and is only ever written by the one UI
// session that owns it, so writes are last-write-wins with no locking.
type Draft struct {
	ServiceSlug   string                 `json:"service_slug"`
	CurrentStepID string                 `json:"current_step_id"`
	Answers       map[string]interface{} `json:"answers"`
	// IdentityRef is the owning profile id, or "" for an anonymous draft.
	IdentityRef string    `json:"identity_ref,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DraftStore is the persistence port for drafts. Get returns (nil, nil)
// when no draft exists for the key.
type DraftStore interface {
	Get(ctx context.Context, serviceSlug, identityRef string) (*Draft, error)
	Put(ctx context.Context, draft *Draft) error
	Delete(ctx context.Context, serviceSlug, identityRef string) error
}

// MergeAnswers is the total merge used for every answer update. Precedence:
// an incoming non-nil value always wins; an incoming nil removes the key;
// keys absent from incoming are kept as-is. The input maps are not mutated.
func MergeAnswers(current, incoming map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(current)+len(incoming))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range incoming {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	return merged
}

// MemoryDraftStore is an in-process DraftStore, used in tests and as the
// default when no backend is wired.
type MemoryDraftStore struct {
	mu     sync.RWMutex
	drafts map[string]*Draft
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: make(map[string]*Draft)}
}

func draftKey(serviceSlug, identityRef string) string {
	return serviceSlug + ":" + identityRef
}

func (s *MemoryDraftStore) Get(ctx context.Context, serviceSlug, identityRef string) (*Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	draft, ok := s.drafts[draftKey(serviceSlug, identityRef)]
	if !ok {
		return nil, nil
	}
	copied := *draft
	copied.Answers = MergeAnswers(nil, draft.Answers)
	return &copied, nil
}

func (s *MemoryDraftStore) Put(ctx context.Context, draft *Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *draft
	copied.Answers = MergeAnswers(nil, draft.Answers)
	s.drafts[draftKey(draft.ServiceSlug, draft.IdentityRef)] = &copied
	return nil
}

func (s *MemoryDraftStore) Delete(ctx context.Context, serviceSlug, identityRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, draftKey(serviceSlug, identityRef))
	return nil
}
