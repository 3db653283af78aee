package usecase

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/GoArmGo/RecipeApp/internal/messaging/payloads"
	"github.com/google/uuid"
)

type fakeFiles struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failPut bool
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{objects: map[string][]byte{}}
}

func (f *fakeFiles) UploadFile(_ context.Context, key string, body io.Reader, _ string) error {
	if f.failPut {
		return errors.New("upload failed")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeFiles) DeleteFile(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeFiles) PublicURL(key string) string { return "http://files.test/" + key }

type fakePublisher struct {
	published []payloads.ImageCleanupPayload
	err       error
}

func (p *fakePublisher) PublishImageCleanup(_ context.Context, payload payloads.ImageCleanupPayload) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, payload)
	return nil
}

type fakeCache struct {
	entries map[string]uuid.UUID
	sets    int
	// deleteFailures сколько ближайших вызовов Delete завершатся ошибкой
	deleteFailures int
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string]uuid.UUID{}} }

func (c *fakeCache) Get(_ context.Context, key string) (uuid.UUID, bool, error) {
	id, ok := c.entries[key]
	return id, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, userID uuid.UUID) error {
	c.sets++
	c.entries[key] = userID
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	if c.deleteFailures > 0 {
		c.deleteFailures--
		return errors.New("cache unavailable")
	}
	delete(c.entries, key)
	return nil
}

func payloadFor(key string) payloads.ImageCleanupPayload {
	return payloads.ImageCleanupPayload{Key: key, RecipeID: uuid.New(), UserID: uuid.New()}
}
