package service_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cancerinfo/cms/internal/logger"
	"github.com/cancerinfo/cms/internal/media"
	"github.com/cancerinfo/cms/internal/models"
	"github.com/cancerinfo/cms/internal/service"
)

type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (m *memoryStore) Save(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestProfileUpdateBio(t *testing.T) {
	db, auth := setupAuth(t)
	ctx := context.Background()
	profiles := service.NewProfileService(db, logger.Nop(), newMemoryStore())
	a := register(t, auth, "bio", false)

	p, err := profiles.Update(ctx, a.ID, service.ProfileInput{Bio: ptr("Penyintas kanker.")})
	require.NoError(t, err)
	assert.Equal(t, "Penyintas kanker.", p.Bio)
	require.NotNil(t, p.Account)
	assert.Equal(t, "bio", p.Account.Username)

	_, err = profiles.Update(ctx, a.ID, service.ProfileInput{Bio: ptr(strings.Repeat("x", models.MaxBioLength+1))})
	var ve *service.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "bio")

	p, err = profiles.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Penyintas kanker.", p.Bio)
}

func TestProfileSetAvatar(t *testing.T) {
	db, auth := setupAuth(t)
	ctx := context.Background()
	store := newMemoryStore()
	profiles := service.NewProfileService(db, logger.Nop(), store)
	a := register(t, auth, "foto", false)

	p, err := profiles.SetAvatar(ctx, a.ID, bytes.NewReader(pngOf(t, 600, 300)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.Avatar, media.AvatarPrefix))
	require.Contains(t, store.objects, p.Avatar)

	img, err := png.Decode(bytes.NewReader(store.objects[p.Avatar]))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())

	first := p.Avatar
	p, err = profiles.SetAvatar(ctx, a.ID, bytes.NewReader(pngOf(t, 50, 50)))
	require.NoError(t, err)
	assert.NotEqual(t, first, p.Avatar)
	assert.NotContains(t, store.objects, first)
	assert.Len(t, store.objects, 1)

	_, err = profiles.SetAvatar(ctx, a.ID, strings.NewReader("garbage"))
	var ve *service.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "avatar")
}
