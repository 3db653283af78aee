package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/GoArmGo/RecipeApp/internal/usecase"
	"github.com/google/uuid"
)

// сколько байт читаем для определения типа файла
const sniffLen = 512

// RecipeHandler обрабатывает HTTP-запросы, связанные с рецептами.
type RecipeHandler struct {
	recipes       usecase.RecipeUseCase
	maxImageBytes int64
	logger        *slog.Logger
}

// NewRecipeHandler создает новый экземпляр RecipeHandler.
func NewRecipeHandler(recipes usecase.RecipeUseCase, maxImageBytes int64, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, maxImageBytes: maxImageBytes, logger: logger}
}

// List обрабатывает GET /api/recipe/recipes[?tags=<id,...>&ingredients=<id,...>]
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondWithDomainError(w, r, domain.ErrUnauthenticated, h.logger)
		return
	}

	query := r.URL.Query()
	verr := &domain.ValidationError{}
	tagIDs, err := parseIDList(query.Get("tags"))
	if err != nil {
		verr.Add("tags", err.Error())
	}
	ingredientIDs, err := parseIDList(query.Get("ingredients"))
	if err != nil {
		verr.Add("ingredients", err.Error())
	}
	if err := verr.OrNil(); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	recipes, err := h.recipes.List(r.Context(), user.ID, domain.RecipeFilter{
		TagIDs:        tagIDs,
		IngredientIDs: ingredientIDs,
	})
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	out := make([]recipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, h.toRecipeResponse(&recipes[i]))
	}
	respondWithJSON(w, http.StatusOK, out, h.logger)
}

// Get обрабатывает GET /api/recipe/recipes/{id}
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondWithDomainError(w, r, domain.ErrUnauthenticated, h.logger)
		return
	}
	id, ok := idParam(r)
	if !ok {
		respondWithDomainError(w, r, domain.ErrNotFound, h.logger)
		return
	}

	detail, err := h.recipes.Get(r.Context(), user.ID, id)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, h.toDetailResponse(detail), h.logger)
}

// Create обрабатывает POST /api/recipe/recipes
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondWithDomainError(w, r, domain.ErrUnauthenticated, h.logger)
		return
	}

	req, err := h.decodeRecipe(w, r)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	detail, err := h.recipes.Create(r.Context(), user.ID, req.changes())
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusCreated, h.toRecipeResponse(&detail.Recipe), h.logger)
}

// Replace обрабатывает PUT /api/recipe/recipes/{id}
func (h *RecipeHandler) Replace(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

// Patch обрабатывает PATCH /api/recipe/recipes/{id}
func (h *RecipeHandler) Patch(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

func (h *RecipeHandler) update(w http.ResponseWriter, r *http.Request, replace bool) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondWithDomainError(w, r, domain.ErrUnauthenticated, h.logger)
		return
	}
	id, ok := idParam(r)
	if !ok {
		respondWithDomainError(w, r, domain.ErrNotFound, h.logger)
		return
	}

	req, err := h.decodeRecipe(w, r)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	detail, err := h.recipes.Update(r.Context(), user.ID, id, req.changes(), replace)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, h.toRecipeResponse(&detail.Recipe), h.logger)
}

// Delete обрабатывает DELETE /api/recipe/recipes/{id}
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondWithDomainError(w, r, domain.ErrUnauthenticated, h.logger)
		return
	}
	id, ok := idParam(r)
	if !ok {
		respondWithDomainError(w, r, domain.ErrNotFound, h.logger)
		return
	}

	if err := h.recipes.Delete(r.Context(), user.ID, id); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondNoContent(w)
}

// UploadImage обрабатывает POST /api/recipe/recipes/{id}/upload-image (multipart, поле "image").
func (h *RecipeHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondWithDomainError(w, r, domain.ErrUnauthenticated, h.logger)
		return
	}
	id, ok := idParam(r)
	if !ok {
		respondWithDomainError(w, r, domain.ErrNotFound, h.logger)
		return
	}

	// запас на заголовки multipart сверх размера самого файла
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+sniffLen*2)
	if err := r.ParseMultipartForm(h.maxImageBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithDomainError(w, r, domain.NewValidationError("image",
				fmt.Sprintf("Ensure the file size is no more than %d bytes.", h.maxImageBytes)), h.logger)
			return
		}
		respondWithDomainError(w, r, domain.NewValidationError("image", "No file was submitted."), h.logger)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("image")
	if err != nil {
		respondWithDomainError(w, r, domain.NewValidationError("image", "No file was submitted."), h.logger)
		return
	}
	defer file.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		respondWithDomainError(w, r, fmt.Errorf("handler: read uploaded image: %w", err), h.logger)
		return
	}
	head = head[:n]
	if n == 0 {
		respondWithDomainError(w, r, domain.NewValidationError("image", "The submitted file is empty."), h.logger)
		return
	}

	recipe, err := h.recipes.UploadImage(r.Context(), user.ID, id, usecase.ImageUpload{
		Body:        io.MultiReader(bytes.NewReader(head), file),
		ContentType: http.DetectContentType(head),
		Size:        header.Size,
	})
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, recipeImageResponse{ID: recipe.ID, Image: h.imageURL(recipe.Image)}, h.logger)
}

func (h *RecipeHandler) decodeRecipe(w http.ResponseWriter, r *http.Request) (recipeRequest, error) {
	var req recipeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return req, err
	}
	return req, validateRequest(req)
}

func (h *RecipeHandler) imageURL(key string) *string {
	url := h.recipes.ImageURL(key)
	if url == "" {
		return nil
	}
	return &url
}

func (h *RecipeHandler) toRecipeResponse(rec *domain.Recipe) recipeResponse {
	return recipeResponse{
		ID:          rec.ID,
		Title:       rec.Title,
		TimeMinutes: rec.TimeMinutes,
		Price:       rec.Price.StringFixed(domain.PriceDecimalPlaces),
		Difficulty:  string(rec.Difficulty),
		Link:        rec.Link,
		Image:       h.imageURL(rec.Image),
		Tags:        idsOrEmpty(rec.TagIDs),
		Ingredients: idsOrEmpty(rec.IngredientIDs),
	}
}

func (h *RecipeHandler) toDetailResponse(d *domain.RecipeDetail) recipeDetailResponse {
	return recipeDetailResponse{
		ID:          d.ID,
		Title:       d.Title,
		TimeMinutes: d.TimeMinutes,
		Price:       d.Price.StringFixed(domain.PriceDecimalPlaces),
		Difficulty:  string(d.Difficulty),
		Link:        d.Link,
		Image:       h.imageURL(d.Image),
		Tags:        toNamedResponses(d.Tags),
		Ingredients: toNamedResponses(d.Ingredients),
	}
}

// parseIDList разбирает список идентификаторов через запятую. Пустые элементы пропускаются.
func parseIDList(raw string) ([]uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid UUID.", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
