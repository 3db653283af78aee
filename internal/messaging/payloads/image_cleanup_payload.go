package payloads

import "github.com/google/uuid"

// ImageCleanupPayload задача на удаление объекта из хранилища изображений.
// Публикуется, когда изображение рецепта заменено или рецепт удален.
type ImageCleanupPayload struct {
	Key      string    `json:"key"`
	RecipeID uuid.UUID `json:"recipe_id"`
	UserID   uuid.UUID `json:"user_id"`
}
