package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/GoArmGo/RecipeApp/internal/adapter/cache/redis"
	"github.com/GoArmGo/RecipeApp/internal/database/memory"
	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/GoArmGo/RecipeApp/internal/logger"
	"github.com/GoArmGo/RecipeApp/internal/usecase"
	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type memFiles struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *memFiles) UploadFile(_ context.Context, key string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	f.types[key] = contentType
	return nil
}

func (f *memFiles) DeleteFile(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *memFiles) PublicURL(key string) string { return "http://files.test/recipes/" + key }

type testAPI struct {
	t       *testing.T
	handler http.Handler
	files   *memFiles
}

type apiOptions struct {
	withFiles     bool
	authRateLimit int
}

func newTestAPI(t *testing.T, opts apiOptions) *testAPI {
	t.Helper()
	log := logger.Discard()
	store := memory.New()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	api := &testAPI{t: t}
	var recipes usecase.RecipeUseCase
	if opts.withFiles {
		api.files = &memFiles{objects: map[string][]byte{}, types: map[string]string{}}
		cleanup := usecase.NewImageCleanupUseCase(api.files, nil, log)
		recipes = usecase.NewRecipeUseCase(store, store.Tags(), store.Ingredients(), api.files, cleanup, 1<<16, log)
	} else {
		cleanup := usecase.NewImageCleanupUseCase(nil, nil, log)
		recipes = usecase.NewRecipeUseCase(store, store.Tags(), store.Ingredients(), nil, cleanup, 1<<16, log)
	}

	limit := opts.authRateLimit
	if limit == 0 {
		limit = 1000
	}
	api.handler = NewRouter(RouterDeps{
		Accounts:       usecase.NewAccountUseCase(store, bcrypt.MinCost, log),
		Tokens:         usecase.NewTokenUseCase(store, store, redis.NewTokenCache(rdb, time.Minute, log), log),
		Tags:           usecase.NewTagUseCase(store.Tags(), log),
		Ingredients:    usecase.NewIngredientUseCase(store.Ingredients(), log),
		Recipes:        recipes,
		Logger:         log,
		RequestTimeout: 5 * time.Second,
		AuthRateLimit:  limit,
		MaxImageBytes:  1 << 16,
	})
	return api
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) upload(path, token, field string, content []byte) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, "upload.bin")
	require.NoError(a.t, err)
	_, err = part.Write(content)
	require.NoError(a.t, err)
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Token "+token)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// register создает пользователя и возвращает его токен.
func (a *testAPI) register(email string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/user/create", "", map[string]string{
		"email": email, "password": "testpass123", "name": "Test",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(http.MethodPost, "/api/user/token", "", map[string]string{
		"email": email, "password": "testpass123",
	})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[tokenResponse](a.t, rec).Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestCreateUser(t *testing.T) {
	api := newTestAPI(t, apiOptions{})

	rec := api.do(http.MethodPost, "/api/user/create", "", map[string]string{
		"email": "Test@Example.com", "password": "testpass123", "name": "Test Name",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, userResponse{Email: "test@example.com", Name: "Test Name"}, decode[userResponse](t, rec))
	assert.NotContains(t, rec.Body.String(), "password")
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	rec = api.do(http.MethodPost, "/api/user/create", "", map[string]string{
		"email": "test@example.com", "password": "testpass123",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Fields, "email")

	rec = api.do(http.MethodPost, "/api/user/create", "", map[string]string{
		"email": "short@example.com", "password": "pw",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Ensure this field has at least 6 characters.", decode[errorResponse](t, rec).Fields["password"])

	rec = api.do(http.MethodPost, "/api/user/create", "", map[string]string{
		"email": "not-an-email", "password": "testpass123",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Fields, "email")
}

func TestCreateToken(t *testing.T) {
	api := newTestAPI(t, apiOptions{})
	first := api.register("user@example.com")
	assert.Len(t, first, 40)

	rec := api.do(http.MethodPost, "/api/user/token", "", map[string]string{
		"email": "user@example.com", "password": "testpass123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first, decode[tokenResponse](t, rec).Token)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"wrong password", map[string]string{"email": "user@example.com", "password": "wrong"}},
		{"unknown user", map[string]string{"email": "nobody@example.com", "password": "testpass123"}},
		{"missing password", map[string]string{"email": "user@example.com", "password": ""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := api.do(http.MethodPost, "/api/user/token", "", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotContains(t, rec.Body.String(), "token\"")
		})
	}
}

func TestAuthenticationRequired(t *testing.T) {
	api := newTestAPI(t, apiOptions{})

	for _, path := range []string{"/api/user/me", "/api/recipe/tags", "/api/recipe/ingredients", "/api/recipe/recipes"} {
		rec := api.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"), path)
	}

	rec := api.do(http.MethodGet, "/api/user/me", strings.Repeat("a", 40), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
	rr := httptest.NewRecorder()
	api.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProfile(t *testing.T) {
	api := newTestAPI(t, apiOptions{})
	token := api.register("me@example.com")

	rec := api.do(http.MethodGet, "/api/user/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userResponse{Email: "me@example.com", Name: "Test"}, decode[userResponse](t, rec))

	rec = api.do(http.MethodPost, "/api/user/me", token, map[string]string{})
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = api.do(http.MethodPatch, "/api/user/me", token, map[string]string{"name": "Renamed"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Renamed", decode[userResponse](t, rec).Name)

	rec = api.do(http.MethodPut, "/api/user/me", token, map[string]string{"name": "Only name"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Fields, "password")

	rec = api.do(http.MethodPatch, "/api/user/me", token, map[string]string{"password": "123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPut, "/api/user/me", token, map[string]string{"name": "New", "password": "newpass123"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodPost, "/api/user/token", "", map[string]string{"email": "me@example.com", "password": "newpass123"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRevokeToken(t *testing.T) {
	api := newTestAPI(t, apiOptions{})
	token := api.register("revoke@example.com")

	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/user/me", token, nil).Code)
	require.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/user/token", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/user/me", token, nil).Code)

	rec := api.do(http.MethodPost, "/api/user/token", "", map[string]string{
		"email": "revoke@example.com", "password": "testpass123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, token, decode[tokenResponse](t, rec).Token)
}

func TestTags(t *testing.T) {
	api := newTestAPI(t, apiOptions{})
	alice := api.register("alice@example.com")
	bob := api.register("bob@example.com")

	for _, name := range []string{"Dessert", "Vegan"} {
		rec := api.do(http.MethodPost, "/api/recipe/tags", alice, map[string]string{"name": name})
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := api.do(http.MethodPost, "/api/recipe/tags", bob, map[string]string{"name": "Fruity"})
	require.Equal(t, http.StatusCreated, rec.Code)
	bobTag := decode[namedResponse](t, rec)

	rec = api.do(http.MethodGet, "/api/recipe/tags", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]namedResponse](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "Vegan", list[0].Name)
	assert.Equal(t, "Dessert", list[1].Name)

	rec = api.do(http.MethodPost, "/api/recipe/tags", alice, map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = api.do(http.MethodPost, "/api/recipe/tags", alice, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	path := "/api/recipe/tags/" + bobTag.ID.String()
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodPatch, path, alice, map[string]string{"name": "Mine"}).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, path, alice, nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, api.do(http.MethodGet, path, bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/api/recipe/tags/not-a-uuid", bob, nil).Code)

	rec = api.do(http.MethodPut, path, bob, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPatch, path, bob, map[string]string{"name": "Citrus"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, namedResponse{ID: bobTag.ID, Name: "Citrus"}, decode[namedResponse](t, rec))

	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, path, bob, nil).Code)
	rec = api.do(http.MethodGet, "/api/recipe/tags", bob, nil)
	assert.Empty(t, decode[[]namedResponse](t, rec))
}

func TestRecipes(t *testing.T) {
	api := newTestAPI(t, apiOptions{})
	alice := api.register("alice@example.com")
	bob := api.register("bob@example.com")

	vegan := decode[namedResponse](t, api.do(http.MethodPost, "/api/recipe/tags", alice, map[string]string{"name": "Vegan"}))
	dessert := decode[namedResponse](t, api.do(http.MethodPost, "/api/recipe/tags", alice, map[string]string{"name": "Dessert"}))
	salt := decode[namedResponse](t, api.do(http.MethodPost, "/api/recipe/ingredients", alice, map[string]string{"name": "Salt"}))
	foreign := decode[namedResponse](t, api.do(http.MethodPost, "/api/recipe/tags", bob, map[string]string{"name": "Theirs"}))

	rec := api.do(http.MethodPost, "/api/recipe/recipes", alice, map[string]any{
		"title":        "Curry",
		"time_minutes": 30,
		"price":        "12.5",
		"tags":         []string{vegan.ID.String()},
		"ingredients":  []string{salt.ID.String()},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	curry := decode[recipeResponse](t, rec)
	assert.Equal(t, "12.50", curry.Price)
	assert.Equal(t, "easy", curry.Difficulty)
	assert.Nil(t, curry.Image)
	assert.Len(t, curry.Tags, 1)

	rec = api.do(http.MethodPost, "/api/recipe/recipes", alice, map[string]any{
		"title": "Cake", "time_minutes": 60, "tags": []string{dessert.ID.String()},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	cake := decode[recipeResponse](t, rec)
	assert.Equal(t, "0.00", cake.Price)

	rec = api.do(http.MethodPost, "/api/recipe/recipes", alice, map[string]any{
		"title": "Stolen", "time_minutes": 5, "tags": []string{foreign.ID.String()},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Fields, "tags")

	rec = api.do(http.MethodPost, "/api/recipe/recipes", alice, map[string]any{"title": "No time"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Fields, "time_minutes")

	rec = api.do(http.MethodPost, "/api/recipe/recipes", alice, map[string]any{
		"title": "Bad", "time_minutes": 1, "difficulty": "extreme",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Fields, "difficulty")

	rec = api.do(http.MethodGet, "/api/recipe/recipes", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]recipeResponse](t, rec), 2)

	rec = api.do(http.MethodGet, "/api/recipe/recipes", bob, nil)
	assert.Empty(t, decode[[]recipeResponse](t, rec))

	rec = api.do(http.MethodGet, "/api/recipe/recipes?tags="+vegan.ID.String(), alice, nil)
	filtered := decode[[]recipeResponse](t, rec)
	require.Len(t, filtered, 1)
	assert.Equal(t, curry.ID, filtered[0].ID)

	rec = api.do(http.MethodGet, "/api/recipe/recipes?ingredients=bogus", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/recipe/tags?assigned_only=1", alice, nil)
	assert.Len(t, decode[[]namedResponse](t, rec), 2)
	rec = api.do(http.MethodGet, "/api/recipe/ingredients?assigned_only=1", alice, nil)
	assert.Len(t, decode[[]namedResponse](t, rec), 1)

	curryPath := "/api/recipe/recipes/" + curry.ID.String()
	rec = api.do(http.MethodGet, curryPath, alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[recipeDetailResponse](t, rec)
	require.Len(t, detail.Tags, 1)
	assert.Equal(t, "Vegan", detail.Tags[0].Name)
	require.Len(t, detail.Ingredients, 1)
	assert.Equal(t, "Salt", detail.Ingredients[0].Name)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, curryPath, bob, nil).Code)

	rec = api.do(http.MethodPatch, curryPath, alice, map[string]any{"title": "Green curry", "tags": []string{}})
	require.Equal(t, http.StatusOK, rec.Code)
	patched := decode[recipeResponse](t, rec)
	assert.Equal(t, "Green curry", patched.Title)
	assert.Equal(t, 30, patched.TimeMinutes)
	assert.Empty(t, patched.Tags)
	assert.Len(t, patched.Ingredients, 1)

	rec = api.do(http.MethodPut, curryPath, alice, map[string]any{"title": "Only title"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPut, curryPath, alice, map[string]any{"title": "Red curry", "time_minutes": 25, "difficulty": "hard"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hard", decode[recipeResponse](t, rec).Difficulty)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, curryPath, bob, nil).Code)
	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, curryPath, alice, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, curryPath, alice, nil).Code)
}

func TestUploadImage(t *testing.T) {
	api := newTestAPI(t, apiOptions{withFiles: true})
	token := api.register("chef@example.com")

	rec := api.do(http.MethodPost, "/api/recipe/recipes", token, map[string]any{"title": "Pie", "time_minutes": 20})
	require.Equal(t, http.StatusCreated, rec.Code)
	pie := decode[recipeResponse](t, rec)
	path := "/api/recipe/recipes/" + pie.ID.String() + "/upload-image"

	rec = api.upload(path, token, "image", append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 64)...))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[recipeImageResponse](t, rec)
	require.NotNil(t, resp.Image)
	assert.True(t, strings.HasPrefix(*resp.Image, "http://files.test/recipes/recipes/"))
	assert.True(t, strings.HasSuffix(*resp.Image, ".png"))
	require.Len(t, api.files.objects, 1)
	for key, ct := range api.files.types {
		assert.Equal(t, "image/png", ct, key)
	}

	rec = api.upload(path, token, "image", []byte("definitely not an image"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.upload(path, token, "file", pngHeader)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Fields, "image")

	other := api.register("other@example.com")
	assert.Equal(t, http.StatusNotFound, api.upload(path, other, "image", pngHeader).Code)

	rec = api.do(http.MethodGet, "/api/recipe/recipes/"+pie.ID.String(), token, nil)
	require.NotNil(t, decode[recipeDetailResponse](t, rec).Image)
}

func TestUploadImageWithoutStorage(t *testing.T) {
	api := newTestAPI(t, apiOptions{})
	token := api.register("chef@example.com")

	rec := api.do(http.MethodPost, "/api/recipe/recipes", token, map[string]any{"title": "Pie", "time_minutes": 20})
	require.Equal(t, http.StatusCreated, rec.Code)
	pie := decode[recipeResponse](t, rec)

	rec = api.upload("/api/recipe/recipes/"+pie.ID.String()+"/upload-image", token, "image", pngHeader)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAuthRateLimit(t *testing.T) {
	api := newTestAPI(t, apiOptions{authRateLimit: 2})

	for i := 0; i < 2; i++ {
		rec := api.do(http.MethodPost, "/api/user/token", "", map[string]string{"email": "x@example.com", "password": "secret123"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
	rec := api.do(http.MethodPost, "/api/user/token", "", map[string]string{"email": "x@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestHealthAndNotFound(t *testing.T) {
	api := newTestAPI(t, apiOptions{})

	rec := api.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestTokenFromHeader(t *testing.T) {
	cases := map[string]struct {
		header string
		key    string
		ok     bool
	}{
		"token scheme":   {"Token abc", "abc", true},
		"bearer scheme":  {"bearer abc", "abc", true},
		"missing key":    {"Token ", "", false},
		"no scheme":      {"abc", "", false},
		"unknown scheme": {"Basic abc", "", false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			key, ok := tokenFromHeader(tc.header)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.key, key)
		})
	}
}

func TestValidationErrorBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	respondWithDomainError(rec, req, domain.NewValidationError("name", "This field may not be blank."), logger.Discard())

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid input.","fields":{"name":"This field may not be blank."}}`, rec.Body.String())
}

func TestAccountEndToEnd(t *testing.T) {
	api := newTestAPI(t, apiOptions{})

	rec := api.do(http.MethodPost, "/api/user/create", "", map[string]string{
		"email": "test@gmail.com", "password": "password", "name": "Joe Joe",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = api.do(http.MethodPost, "/api/user/token", "", map[string]string{"email": "test@gmail.com", "password": "password"})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[tokenResponse](t, rec).Token

	rec = api.do(http.MethodGet, "/api/user/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"Joe Joe","email":"test@gmail.com"}`, rec.Body.String())

	rec = api.do(http.MethodPatch, "/api/user/me", token, map[string]string{"name": "New Name", "password": "newpass"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "New Name", decode[userResponse](t, rec).Name)

	rec = api.do(http.MethodPost, "/api/user/token", "", map[string]string{"email": "test@gmail.com", "password": "newpass"})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(http.MethodPost, "/api/user/token", "", map[string]string{"email": "test@gmail.com", "password": "password"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecipeRejectsNilTagReference(t *testing.T) {
	api := newTestAPI(t, apiOptions{})
	token := api.register("nil@example.com")
	nilID := "00000000-0000-0000-0000-000000000000"

	rec := api.do(http.MethodPost, "/api/recipe/recipes", token, map[string]any{
		"title": "Soup", "time_minutes": 1, "tags": []string{nilID},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, decode[errorResponse](t, rec).Fields, "tags")

	rec = api.do(http.MethodPost, "/api/recipe/recipes", token, map[string]any{"title": "Soup", "time_minutes": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	soup := decode[recipeResponse](t, rec)

	rec = api.do(http.MethodPatch, "/api/recipe/recipes/"+soup.ID.String(), token, map[string]any{
		"ingredients": []string{nilID},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Fields, "ingredients")

	rec = api.do(http.MethodGet, "/api/recipe/recipes", token, nil)
	list := decode[[]recipeResponse](t, rec)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Ingredients)
}

func TestEmailIsTrimmedBeforeValidation(t *testing.T) {
	api := newTestAPI(t, apiOptions{})

	rec := api.do(http.MethodPost, "/api/user/create", "", map[string]string{
		"email": "  Spaced@Example.com ", "password": "testpass123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "spaced@example.com", decode[userResponse](t, rec).Email)

	rec = api.do(http.MethodPost, "/api/user/token", "", map[string]string{
		"email": " spaced@example.com  ", "password": "testpass123",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}
