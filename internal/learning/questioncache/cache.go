package questioncache

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/yungbote/codemaster-backend/internal/learning/content"
	"github.com/yungbote/codemaster-backend/internal/learning/index"
	"github.com/yungbote/codemaster-backend/internal/platform/logger"
)

// Gameplay item kinds.
const (
	KindQuiz   = "quiz"
	KindOutput = "output"
	KindBug    = "bug"
)

const DefaultMaxPerBucket = 50

type entry struct {
	Fingerprint string          `json:"fp"`
	Item        json.RawMessage `json:"item"`
	AddedAt     time.Time       `json:"added_at"`
}

type BucketStats struct {
	Kind      string `json:"kind"`
	Lang      string `json:"lang"`
	Total     int    `json:"total"`
	Available int    `json:"available"`
}

// Cache remembers generated gameplay items per (kind, language) and hands
// them out without repeats until a bucket is exhausted.
type Cache struct {
	log       *logger.Logger
	store     Store
	namespace string
	max       int

	// serializes read-modify-write cycles on buckets within this process
	mu  sync.Mutex
	rnd *rand.Rand
}

type Option func(*Cache)

func WithNamespace(ns string) Option { return func(c *Cache) { c.namespace = ns } }

func WithMaxPerBucket(n int) Option { return func(c *Cache) { c.max = n } }

func WithRand(r *rand.Rand) Option { return func(c *Cache) { c.rnd = r } }

func New(log *logger.Logger, store Store, opts ...Option) *Cache {
	c := &Cache{
		log:       log.With("service", "QuestionCache"),
		store:     store,
		namespace: index.DefaultNamespace,
		max:       DefaultMaxPerBucket,
	}
	for _, o := range opts {
		o(c)
	}
	if c.max <= 0 {
		c.max = DefaultMaxPerBucket
	}
	if c.rnd == nil {
		c.rnd = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	return c
}

// Encode marshals typed items for Add. Items that fail to marshal are skipped.
func Encode[T any](items []T) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(items))
	for _, it := range items {
		b, err := json.Marshal(it)
		if err != nil {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Add stores items not already in the bucket and returns how many were new.
// The bucket keeps the newest MaxPerBucket items.
func (c *Cache) Add(ctx context.Context, kind, lang string, items []json.RawMessage) int {
	if len(items) == 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := index.QuestionBucketKey(c.namespace, kind, lang)
	bucket, ok := c.loadBucket(ctx, key)
	if !ok {
		return 0
	}
	seen := make(map[string]bool, len(bucket)+len(items))
	for _, e := range bucket {
		seen[e.Fingerprint] = true
	}
	now := time.Now().UTC()
	added := 0
	for _, it := range items {
		fp, err := content.Fingerprint(it)
		if err != nil {
			c.log.Warn("question cache skipped unparseable item", "kind", kind, "lang", lang, "error", err)
			continue
		}
		if seen[fp] {
			continue
		}
		seen[fp] = true
		bucket = append(bucket, entry{Fingerprint: fp, Item: it, AddedAt: now})
		added++
	}
	if added == 0 {
		return 0
	}
	if over := len(bucket) - c.max; over > 0 {
		bucket = bucket[over:]
	}
	if !c.saveJSON(ctx, "set", key, bucket) {
		return 0
	}
	return added
}

// Draw returns up to count distinct unused items, chosen uniformly at random,
// and marks them used. When too few unused items remain the bucket is recycled
// once, so the result has min(count, bucket size) items.
func (c *Cache) Draw(ctx context.Context, kind, lang string, count int) []json.RawMessage {
	if count <= 0 {
		return []json.RawMessage{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	bucketKey := index.QuestionBucketKey(c.namespace, kind, lang)
	usedKey := index.QuestionUsedKey(c.namespace, kind, lang)
	bucket, ok := c.loadBucket(ctx, bucketKey)
	if !ok || len(bucket) == 0 {
		return []json.RawMessage{}
	}
	used, ok := c.loadUsed(ctx, usedKey)
	if !ok {
		return []json.RawMessage{}
	}

	unused := unusedEntries(bucket, used)
	if len(unused) < count {
		used = map[string]bool{}
		unused = bucket
	}
	picked := make([]entry, len(unused))
	copy(picked, unused)
	c.rnd.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	if len(picked) > count {
		picked = picked[:count]
	}

	out := make([]json.RawMessage, 0, len(picked))
	for _, e := range picked {
		used[e.Fingerprint] = true
		out = append(out, e.Item)
	}
	// drop fingerprints of evicted items so the used set stays bounded
	inBucket := make(map[string]bool, len(bucket))
	for _, e := range bucket {
		inBucket[e.Fingerprint] = true
	}
	fps := make([]string, 0, len(used))
	for fp := range used {
		if inBucket[fp] {
			fps = append(fps, fp)
		}
	}
	sort.Strings(fps)
	c.saveJSON(ctx, "set", usedKey, fps)
	return out
}

// Stats reports every bucket in the namespace.
func (c *Cache) Stats(ctx context.Context) []BucketStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys, err := c.store.Keys(ctx, index.QuestionBucketPattern(c.namespace))
	if err != nil {
		c.warn(&CacheUnavailableError{Op: "keys", Key: index.QuestionBucketPattern(c.namespace), Err: err})
		return []BucketStats{}
	}
	out := make([]BucketStats, 0, len(keys))
	for _, key := range keys {
		kind, lang, ok := index.ParseQuestionBucketKey(c.namespace, key)
		if !ok {
			continue
		}
		bucket, ok := c.loadBucket(ctx, key)
		if !ok {
			continue
		}
		used, _ := c.loadUsed(ctx, index.QuestionUsedKey(c.namespace, kind, lang))
		out = append(out, BucketStats{
			Kind:      kind,
			Lang:      lang,
			Total:     len(bucket),
			Available: len(unusedEntries(bucket, used)),
		})
	}
	return out
}

// Clear removes every bucket and used-set in the namespace and returns the number of keys removed.
func (c *Cache) Clear(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var keys []string
	for _, pattern := range []string{index.QuestionBucketPattern(c.namespace), index.QuestionUsedPattern(c.namespace)} {
		found, err := c.store.Keys(ctx, pattern)
		if err != nil {
			c.warn(&CacheUnavailableError{Op: "keys", Key: pattern, Err: err})
			return 0
		}
		keys = append(keys, found...)
	}
	if len(keys) == 0 {
		return 0
	}
	if err := c.store.Del(ctx, keys...); err != nil {
		c.warn(&CacheUnavailableError{Op: "del", Key: index.QuestionBucketPattern(c.namespace), Err: err})
		return 0
	}
	c.log.Info("question cache cleared", "keys", len(keys))
	return len(keys)
}

func unusedEntries(bucket []entry, used map[string]bool) []entry {
	out := make([]entry, 0, len(bucket))
	for _, e := range bucket {
		if !used[e.Fingerprint] {
			out = append(out, e)
		}
	}
	return out
}

func (c *Cache) loadBucket(ctx context.Context, key string) ([]entry, bool) {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		c.warn(&CacheUnavailableError{Op: "get", Key: key, Err: err})
		return nil, false
	}
	if len(raw) == 0 {
		return []entry{}, true
	}
	var bucket []entry
	if err := json.Unmarshal(raw, &bucket); err != nil {
		c.warn(&CacheUnavailableError{Op: "decode", Key: key, Err: err})
		return []entry{}, true
	}
	return bucket, true
}

func (c *Cache) loadUsed(ctx context.Context, key string) (map[string]bool, bool) {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		c.warn(&CacheUnavailableError{Op: "get", Key: key, Err: err})
		return nil, false
	}
	used := map[string]bool{}
	if len(raw) == 0 {
		return used, true
	}
	var fps []string
	if err := json.Unmarshal(raw, &fps); err != nil {
		c.warn(&CacheUnavailableError{Op: "decode", Key: key, Err: err})
		return used, true
	}
	for _, fp := range fps {
		used[fp] = true
	}
	return used, true
}

func (c *Cache) saveJSON(ctx context.Context, op, key string, v any) bool {
	b, err := json.Marshal(v)
	if err == nil {
		err = c.store.Set(ctx, key, b)
	}
	if err != nil {
		c.warn(&CacheUnavailableError{Op: op, Key: key, Err: err})
		return false
	}
	return true
}

func (c *Cache) warn(err *CacheUnavailableError) {
	c.log.Warn("question cache unavailable", "op", err.Op, "key", err.Key, "error", err.Err)
}
