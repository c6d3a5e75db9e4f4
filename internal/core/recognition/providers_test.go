package recognition

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dish-lens/internal/core/catalog"
	"dish-lens/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalModelRecognizer(t *testing.T) {
	r := NewLocalModelRecognizer(0, rand.NewPCG(7, 7))

	for i := 0; i < 100; i++ {
		got, err := r.Recognize(context.Background(), Image{})
		require.NoError(t, err)

		assert.True(t, got.Success)
		assert.Contains(t, catalog.FoodCategories, got.DishName)
		assert.GreaterOrEqual(t, got.Confidence, 0.7)
		assert.Less(t, got.Confidence, 0.99)
		assert.GreaterOrEqual(t, len(got.AllPredictions), 3)
		assert.LessOrEqual(t, len(got.AllPredictions), 5)
		assert.Equal(t, got.DishName, got.AllPredictions[0].Name)
		for _, p := range got.AllPredictions[1:] {
			assert.GreaterOrEqual(t, p.Probability, 0.1)
			assert.Less(t, p.Probability, got.Confidence)
		}
	}
}

func TestLocalModelIsReproducibleWithSeed(t *testing.T) {
	a := NewLocalModelRecognizer(0, rand.NewPCG(42, 1))
	b := NewLocalModelRecognizer(0, rand.NewPCG(42, 1))

	for i := 0; i < 10; i++ {
		ra, _ := a.Recognize(context.Background(), Image{})
		rb, _ := b.Recognize(context.Background(), Image{})
		assert.Equal(t, ra, rb)
	}
}

func TestLocalModelHonoursCancellation(t *testing.T) {
	r := NewLocalModelRecognizer(time.Hour, rand.NewPCG(1, 1))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := r.Recognize(ctx, Image{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestObjectDetectorRecognizer(t *testing.T) {
	d := NewObjectDetectorRecognizer(0, rand.NewPCG(9, 9))

	for i := 0; i < 100; i++ {
		items := d.Detect(context.Background())
		assert.GreaterOrEqual(t, len(items), 1)
		assert.LessOrEqual(t, len(items), 3)

		seen := map[string]bool{}
		for _, item := range items {
			assert.Contains(t, catalog.DetectorClasses, item)
			assert.False(t, seen[item], "duplicate class %q", item)
			seen[item] = true
		}
	}

	got, err := d.Recognize(context.Background(), Image{})
	require.NoError(t, err)
	assert.True(t, got.Success)
	assert.Equal(t, got.AllPredictions[0].Name, got.DishName)
}

func TestObjectDetectorCancelledReturnsSentinel(t *testing.T) {
	d := NewObjectDetectorRecognizer(time.Hour, rand.NewPCG(1, 1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, []string{"dish"}, d.Detect(ctx))
	_, err := d.Recognize(ctx, Image{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilenameRecognizer(t *testing.T) {
	r := NewFilenameRecognizer()

	got, err := r.Recognize(context.Background(), Image{Filename: "/tmp/Homemade_Lasagna-2.JPG"})
	require.NoError(t, err)
	assert.True(t, got.Success)
	assert.Equal(t, "lasagna", got.DishName)

	got, err = r.Recognize(context.Background(), Image{Filename: "photo_0001.jpg"})
	require.NoError(t, err)
	assert.False(t, got.Success)
	assert.False(t, got.IsUsable())
}

func TestGeminiRecognizer(t *testing.T) {
	g := NewGeminiRecognizer(config.GeminiConfig{APIKey: "key", Model: "gemini-1.5-flash", Timeout: time.Second})
	g.generate = func(ctx context.Context, img Image) (string, error) {
		assert.Equal(t, "image/png", img.MIMEType)
		return `{"dish": "Sushi", "confidence": 0.93}`, nil
	}

	got, err := g.Recognize(context.Background(), Image{Data: []byte{1}, MIMEType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, "Sushi", got.DishName)
	assert.Equal(t, "gemini", got.Provider)
	assert.InDelta(t, 0.93, got.Confidence, 1e-9)
}

func TestGeminiRecognizerErrors(t *testing.T) {
	_, err := NewGeminiRecognizer(config.GeminiConfig{}).Recognize(context.Background(), Image{})
	assert.ErrorIs(t, err, ErrProviderUnavailable)

	g := NewGeminiRecognizer(config.GeminiConfig{APIKey: "key"})
	g.generate = func(context.Context, Image) (string, error) { return "no idea", nil }
	_, err = g.Recognize(context.Background(), Image{})
	assert.ErrorIs(t, err, ErrParseFailure)

	g.generate = func(context.Context, Image) (string, error) { return "", errors.New("quota exceeded") }
	_, err = g.Recognize(context.Background(), Image{})
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestOpenRouterRecognizer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "vision-model", body["model"])
		raw, _ := json.Marshal(body["messages"])
		assert.True(t, strings.Contains(string(raw), "data:image/jpeg;base64,"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"dish\":\"Paella\",\"description\":\"Rice dish\",\"confidence\":0.8}"}}]}`))
	}))
	defer srv.Close()

	o := NewOpenRouterRecognizer(config.OpenRouterConfig{
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		Model:     "vision-model",
		MaxTokens: 100,
		Timeout:   time.Second,
	})

	got, err := o.Recognize(context.Background(), Image{Data: []byte("img")})
	require.NoError(t, err)
	assert.Equal(t, "Paella", got.DishName)
	assert.Equal(t, "Rice dish", got.Description)
	assert.Equal(t, "openrouter", got.Provider)
}

func TestOpenRouterRecognizerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	o := NewOpenRouterRecognizer(config.OpenRouterConfig{APIKey: "k", BaseURL: srv.URL, Timeout: time.Second})
	_, err := o.Recognize(context.Background(), Image{})
	assert.ErrorContains(t, err, "429")

	_, err = NewOpenRouterRecognizer(config.OpenRouterConfig{BaseURL: srv.URL}).Recognize(context.Background(), Image{})
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestBuildProviders(t *testing.T) {
	cfg := &config.Config{}
	cfg.Recognition.Providers = []string{
		config.ProviderGemini, config.ProviderOpenRouter, config.ProviderFilename,
		config.ProviderLocalModel, config.ProviderDetector,
	}

	providers, err := BuildProviders(cfg, rand.NewPCG(1, 2))
	require.NoError(t, err)
	assert.Equal(t, []string{"filename", "local_model", "object_detector"}, NewPipeline(providers).Providers())

	cfg.Gemini.APIKey = "g"
	providers, err = BuildProviders(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "gemini", providers[0].Name())

	cfg.Recognition.Providers = []string{"clarifai"}
	_, err = BuildProviders(cfg, nil)
	assert.Error(t, err)
}
