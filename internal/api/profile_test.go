package api_test

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cancerinfo/cms/internal/media"
)

func TestProfileRequiresAuth(t *testing.T) {
	ta := newTestAPI(t)
	w := ta.do(t, http.MethodGet, "/api/v1/profile/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileGetAndUpdate(t *testing.T) {
	ta := newTestAPI(t)

	w := ta.do(t, http.MethodGet, "/api/v1/profile/", ta.memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "member", body["username"])
	assert.Equal(t, "/media/profile_pics/default.jpg", body["avatar"])

	w = ta.do(t, http.MethodPatch, "/api/v1/profile/", ta.memberToken, map[string]string{"bio": "Survivor."})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Survivor.", decode(t, w)["bio"])

	w = ta.do(t, http.MethodPatch, "/api/v1/profile/", ta.memberToken, map[string]string{
		"bio": strings.Repeat("x", 501),
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w), "bio")
}

func avatarRequest(t *testing.T, token string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("avatar", "me.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile/avatar/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAvatarUpload(t *testing.T) {
	ta := newTestAPI(t)

	img := image.NewRGBA(image.Rect(0, 0, 640, 320))
	for x := 0; x < 640; x++ {
		img.Set(x, x%320, color.RGBA{R: 200, A: 255})
	}
	var src bytes.Buffer
	require.NoError(t, png.Encode(&src, img))

	w := httptest.NewRecorder()
	ta.router.ServeHTTP(w, avatarRequest(t, ta.memberToken, src.Bytes()))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	avatar, _ := decode(t, w)["avatar"].(string)
	require.True(t, strings.HasPrefix(avatar, "/media/"+media.AvatarPrefix), avatar)

	stored, err := os.ReadFile(filepath.Join(ta.store.Root, strings.TrimPrefix(avatar, "/media/")))
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 100, cfg.Height)

	w = httptest.NewRecorder()
	ta.router.ServeHTTP(w, avatarRequest(t, ta.memberToken, []byte("not an image")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvatarUploadRejectsHugeDimensions(t *testing.T) {
	ta := newTestAPI(t)

	w := httptest.NewRecorder()
	ta.router.ServeHTTP(w, avatarRequest(t, ta.memberToken, pngHeader(20000, 20000)))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "pixels")

	entries, err := os.ReadDir(ta.store.Root)
	if err == nil {
		assert.Empty(t, entries)
	}
}

// pngHeader returns a PNG signature and IHDR chunk for a w x h 8-bit
// grayscale image. It carries no pixel data.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 4+13)
	copy(ihdr, "IHDR")
	binary.BigEndian.PutUint32(ihdr[4:], w)
	binary.BigEndian.PutUint32(ihdr[8:], h)
	ihdr[12] = 8

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(13))
	buf.Write(ihdr)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(ihdr))
	return buf.Bytes()
}

