package images

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKeyStable(t *testing.T) {
	a := ObjectKey("https://x.com/prop/1", 0, "https://cdn.x.com/a.jpg")
	b := ObjectKey("https://x.com/prop/1", 0, "https://cdn.x.com/a.jpg")
	assert.Equal(t, a, b)
	assert.True(t, strings.HasSuffix(a, "/0.jpg"))

	other := ObjectKey("https://x.com/prop/2", 0, "https://cdn.x.com/a.jpg")
	assert.NotEqual(t, a, other)
}

func TestObjectKeyExtension(t *testing.T) {
	assert.True(t, strings.HasSuffix(ObjectKey("u", 1, "https://cdn.x.com/b.webp"), "/1.webp"))
	assert.True(t, strings.HasSuffix(ObjectKey("u", 2, "https://cdn.x.com/c.png?w=400"), "/2.png"))
	// Unknown extensions normalize to jpg
	assert.True(t, strings.HasSuffix(ObjectKey("u", 3, "https://cdn.x.com/photo"), "/3.jpg"))
}

func TestRehostAll(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "broken") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpegdata"))
	}))
	defer origin.Close()

	var uploads int
	objectStore := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "Bearer store-key", r.Header.Get("Authorization"))
		assert.True(t, strings.HasPrefix(r.URL.Path, "/storage/v1/object/listing-images/"))
		uploads++
		w.WriteHeader(http.StatusOK)
	}))
	defer objectStore.Close()

	r := NewRehoster(objectStore.URL, "store-key", "listing-images")
	hosted := r.RehostAll(context.Background(), "https://x.com/prop/1", []string{
		origin.URL + "/a.jpg",
		origin.URL + "/broken.jpg",
		origin.URL + "/c.jpg",
	})

	assert.Len(t, hosted, 3)
	assert.Equal(t, 2, uploads)
	assert.Contains(t, hosted[0], objectStore.URL+"/storage/v1/object/public/listing-images/")
	// The broken image keeps its original URL
	assert.Equal(t, origin.URL+"/broken.jpg", hosted[1])
	assert.Contains(t, hosted[2], "/2.jpg")
}

func TestRehostAllEmpty(t *testing.T) {
	r := NewRehoster("http://unused.invalid", "k", "b")
	assert.Empty(t, r.RehostAll(context.Background(), "https://x.com/prop/1", nil))
}
