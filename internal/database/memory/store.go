// Package memory реализует порты хранилища в памяти процесса.
// Используется драйвером STORAGE_DRIVER=memory и в тестах.
package memory

import (
	"bytes"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/google/uuid"
)

// Store общий контейнер данных. Все хранилища разделяют один мьютекс.
type Store struct {
	mu sync.RWMutex

	users       map[uuid.UUID]domain.User
	tokens      map[string]domain.AuthToken
	recipes     map[uuid.UUID]domain.Recipe
	tags        *NamedStore[domain.Tag]
	ingredients *NamedStore[domain.Ingredient]

	lastCreated time.Time
}

// New создает пустое хранилище.
func New() *Store {
	s := &Store{
		users:   make(map[uuid.UUID]domain.User),
		tokens:  make(map[string]domain.AuthToken),
		recipes: make(map[uuid.UUID]domain.Recipe),
	}
	s.tags = &NamedStore[domain.Tag]{
		store: s,
		items: make(map[uuid.UUID]domain.Tag),
		links: func(r *domain.Recipe) *[]uuid.UUID { return &r.TagIDs },
	}
	s.ingredients = &NamedStore[domain.Ingredient]{
		store: s,
		items: make(map[uuid.UUID]domain.Ingredient),
		links: func(r *domain.Recipe) *[]uuid.UUID { return &r.IngredientIDs },
	}
	return s
}

// Tags хранилище меток.
func (s *Store) Tags() *NamedStore[domain.Tag] { return s.tags }

// Ingredients хранилище ингредиентов.
func (s *Store) Ingredients() *NamedStore[domain.Ingredient] { return s.ingredients }

// now возвращает строго возрастающее время, чтобы порядок "новые первыми" был однозначным.
// Вызывать под s.mu.
func (s *Store) now() time.Time {
	t := time.Now().UTC()
	if !t.After(s.lastCreated) {
		t = s.lastCreated.Add(time.Microsecond)
	}
	s.lastCreated = t
	return t
}

// --- users ---

func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return domain.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) GetUserByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (s *Store) UpdateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[user.ID]
	if !ok {
		return domain.ErrNotFound
	}
	user.Email = current.Email
	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = s.now()
	s.users[user.ID] = *user
	return nil
}

// --- tokens ---

func (s *Store) GetOrCreateToken(_ context.Context, userID uuid.UUID, candidateKey string) (*domain.AuthToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tokens {
		if t.UserID == userID {
			return &t, nil
		}
	}
	t := domain.AuthToken{Key: candidateKey, UserID: userID, CreatedAt: s.now()}
	s.tokens[t.Key] = t
	return &t, nil
}

func (s *Store) GetToken(_ context.Context, key string) (*domain.AuthToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tokens[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (s *Store) DeleteUserToken(_ context.Context, userID uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, t := range s.tokens {
		if t.UserID == userID {
			delete(s.tokens, key)
			return key, nil
		}
	}
	return "", nil
}

// --- recipes ---

func (s *Store) CreateRecipe(_ context.Context, recipe *domain.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}
	now := s.now()
	recipe.CreatedAt, recipe.UpdatedAt = now, now
	s.putRecipe(recipe)
	return nil
}

func (s *Store) GetRecipe(_ context.Context, userID, id uuid.UUID) (*domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[id]
	if !ok || r.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return cloneRecipe(r), nil
}

func (s *Store) ListRecipes(_ context.Context, userID uuid.UUID, filter domain.RecipeFilter) ([]domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Recipe{}
	for _, r := range s.recipes {
		if r.UserID != userID {
			continue
		}
		if len(filter.TagIDs) > 0 && !intersects(r.TagIDs, filter.TagIDs) {
			continue
		}
		if len(filter.IngredientIDs) > 0 && !intersects(r.IngredientIDs, filter.IngredientIDs) {
			continue
		}
		out = append(out, *cloneRecipe(r))
	}

	slices.SortFunc(out, func(a, b domain.Recipe) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return bytes.Compare(b.ID[:], a.ID[:])
	})
	return out, nil
}

func (s *Store) UpdateRecipe(_ context.Context, recipe *domain.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.recipes[recipe.ID]
	if !ok || current.UserID != recipe.UserID {
		return domain.ErrNotFound
	}
	recipe.CreatedAt = current.CreatedAt
	recipe.UpdatedAt = s.now()
	s.putRecipe(recipe)
	return nil
}

func (s *Store) DeleteRecipe(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.recipes[id]
	if !ok || r.UserID != userID {
		return domain.ErrNotFound
	}
	delete(s.recipes, id)
	return nil
}

// putRecipe сохраняет копию рецепта, оставляя только связи с записями владельца.
// Вызывать под s.mu.
func (s *Store) putRecipe(recipe *domain.Recipe) {
	stored := *cloneRecipe(*recipe)
	stored.TagIDs = s.tags.ownedIDs(recipe.UserID, recipe.TagIDs)
	stored.IngredientIDs = s.ingredients.ownedIDs(recipe.UserID, recipe.IngredientIDs)
	s.recipes[stored.ID] = stored
}

func cloneRecipe(r domain.Recipe) *domain.Recipe {
	r.TagIDs = append([]uuid.UUID{}, r.TagIDs...)
	r.IngredientIDs = append([]uuid.UUID{}, r.IngredientIDs...)
	return &r
}

func intersects(have, want []uuid.UUID) bool {
	for _, id := range want {
		if slices.Contains(have, id) {
			return true
		}
	}
	return false
}
