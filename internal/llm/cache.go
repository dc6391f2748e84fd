package llm

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	cacheSubdir   = "whatif/answers"
	partialSuffix = ".part"
)

type cachedGenerator struct {
	inner Generator
	dir   string
	ttl   time.Duration
	now   func() time.Time
}

type cachedAnswer struct {
	Question  string    `json:"question"`
	Generator string    `json:"generator"`
	Answer    string    `json:"answer"`
	CachedAt  time.Time `json:"cachedAt"`
}

// WithCache stores answers from inner on disk under dir and replays them for
// ttl. Questions that frame to the same "What if ... happened?" share an
// entry. An empty dir uses the user cache directory; a non-positive ttl
// returns inner unchanged.
func WithCache(inner Generator, dir string, ttl time.Duration) (Generator, error) {
	if ttl <= 0 {
		return inner, nil
	}
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = filepath.Join(os.TempDir(), "whatif-cache")
		}
		dir = filepath.Join(base, cacheSubdir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &cachedGenerator{inner: inner, dir: dir, ttl: ttl, now: time.Now}, nil
}

func (c *cachedGenerator) Name() string { return c.inner.Name() }

// Generate serves a fresh cached answer when there is one. Otherwise it asks
// the wrapped generator and falls back to an expired entry if that fails.
func (c *cachedGenerator) Generate(ctx context.Context, question string) (string, error) {
	framed := FrameQuestion(question)
	path := filepath.Join(c.dir, c.key(framed)+".json")

	cached, cacheErr := readAnswer(path)
	if cacheErr == nil && c.now().Sub(cached.CachedAt) < c.ttl {
		return cached.Answer, nil
	}

	answer, err := c.inner.Generate(ctx, question)
	if err != nil {
		if cacheErr == nil && cached.Answer != "" {
			return cached.Answer, nil
		}
		return "", err
	}
	_ = writeAnswer(path, cachedAnswer{
		Question:  framed,
		Generator: c.inner.Name(),
		Answer:    answer,
		CachedAt:  c.now().UTC(),
	})
	return answer, nil
}

func (c *cachedGenerator) key(framed string) string {
	sum := sha1.Sum([]byte(c.inner.Name() + "\n" + strings.ToLower(framed)))
	return hex.EncodeToString(sum[:])
}

func readAnswer(path string) (cachedAnswer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cachedAnswer{}, err
	}
	var entry cachedAnswer
	if err := json.Unmarshal(data, &entry); err != nil {
		return cachedAnswer{}, err
	}
	return entry, nil
}

// writeAnswer goes through a partial file so readers never see half an entry.
func writeAnswer(path string, entry cachedAnswer) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	partial := path + partialSuffix
	if err := os.WriteFile(partial, data, 0o644); err != nil {
		return err
	}
	return os.Rename(partial, path)
}
