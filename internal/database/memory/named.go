package memory

import (
	"bytes"
	"context"
	"slices"
	"strings"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/google/uuid"
)

// NamedStore хранилище меток или ингредиентов в памяти.
type NamedStore[T domain.Named] struct {
	store *Store
	items map[uuid.UUID]T
	// links возвращает список связей рецепта с записями этого вида.
	links func(r *domain.Recipe) *[]uuid.UUID
}

func (n *NamedStore[T]) Create(_ context.Context, item *T) error {
	n.store.mu.Lock()
	defer n.store.mu.Unlock()

	rec := domain.Tag(*item)
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = n.store.now()
	*item = T(rec)
	n.items[rec.ID] = *item
	return nil
}

func (n *NamedStore[T]) List(_ context.Context, userID uuid.UUID, assignedOnly bool) ([]T, error) {
	n.store.mu.RLock()
	defer n.store.mu.RUnlock()

	var assigned map[uuid.UUID]struct{}
	if assignedOnly {
		assigned = make(map[uuid.UUID]struct{})
		for _, r := range n.store.recipes {
			if r.UserID != userID {
				continue
			}
			for _, id := range *n.links(&r) {
				assigned[id] = struct{}{}
			}
		}
	}

	out := []T{}
	for id, item := range n.items {
		if domain.Tag(item).UserID != userID {
			continue
		}
		if assignedOnly {
			if _, ok := assigned[id]; !ok {
				continue
			}
		}
		out = append(out, item)
	}
	sortByNameDesc(out)
	return out, nil
}

func (n *NamedStore[T]) Get(_ context.Context, userID, id uuid.UUID) (*T, error) {
	n.store.mu.RLock()
	defer n.store.mu.RUnlock()

	item, ok := n.items[id]
	if !ok || domain.Tag(item).UserID != userID {
		return nil, domain.ErrNotFound
	}
	return &item, nil
}

func (n *NamedStore[T]) FindByIDs(_ context.Context, userID uuid.UUID, ids []uuid.UUID) ([]T, error) {
	n.store.mu.RLock()
	defer n.store.mu.RUnlock()

	out := []T{}
	for _, id := range n.ownedIDs(userID, ids) {
		out = append(out, n.items[id])
	}
	sortByNameDesc(out)
	return out, nil
}

func (n *NamedStore[T]) Update(_ context.Context, item *T) error {
	n.store.mu.Lock()
	defer n.store.mu.Unlock()

	rec := domain.Tag(*item)
	current, ok := n.items[rec.ID]
	if !ok || domain.Tag(current).UserID != rec.UserID {
		return domain.ErrNotFound
	}
	rec.CreatedAt = domain.Tag(current).CreatedAt
	*item = T(rec)
	n.items[rec.ID] = *item
	return nil
}

// Delete удаляет запись и снимает ее со всех рецептов.
func (n *NamedStore[T]) Delete(_ context.Context, userID, id uuid.UUID) error {
	n.store.mu.Lock()
	defer n.store.mu.Unlock()

	item, ok := n.items[id]
	if !ok || domain.Tag(item).UserID != userID {
		return domain.ErrNotFound
	}
	delete(n.items, id)

	for rid, r := range n.store.recipes {
		ids := n.links(&r)
		if i := slices.Index(*ids, id); i >= 0 {
			*ids = slices.Delete(slices.Clone(*ids), i, i+1)
			n.store.recipes[rid] = r
		}
	}
	return nil
}

// ownedIDs оставляет из ids только существующие записи владельца. Вызывать под store.mu.
func (n *NamedStore[T]) ownedIDs(userID uuid.UUID, ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		item, ok := n.items[id]
		if ok && domain.Tag(item).UserID == userID && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func sortByNameDesc[T domain.Named](items []T) {
	slices.SortFunc(items, func(a, b T) int {
		ta, tb := domain.Tag(a), domain.Tag(b)
		if c := strings.Compare(tb.Name, ta.Name); c != 0 {
			return c
		}
		return bytes.Compare(tb.ID[:], ta.ID[:])
	})
}
