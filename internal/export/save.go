package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLinkNotFound is returned for unknown or revoked download tokens.
var ErrLinkNotFound = errors.New("export: download link not found")

// DirSaver writes files into a directory on the host. It is the native save
// path: the file lands where the operator configured exports to go.
type DirSaver struct {
	Dir string
}

// Save writes data under name, adding a numeric suffix when the name is
// taken. It returns the written path.
func (s DirSaver) Save(name string, data []byte) (string, error) {
	if s.Dir == "" {
		return "", errors.New("export: no export directory configured")
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("export: prepare directory: %w", err)
	}
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 0; i < 1000; i++ {
		candidate := base
		if i > 0 {
			candidate = stem + "-" + strconv.Itoa(i) + ext
		}
		path := filepath.Join(s.Dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("export: create %s: %w", candidate, err)
		}
		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("export: write %s: %w", candidate, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("export: close %s: %w", candidate, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("export: no free file name for %s", base)
}

// Revoker schedules the removal of a download link.
type Revoker interface {
	ScheduleRevoke(ctx context.Context, token string, after time.Duration) error
}

// Download is a file held behind a download link.
type Download struct {
	Name string
	Data []byte
}

// Links keeps generated files in Redis behind random tokens.
type Links struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewLinks constructs Links. Files expire after ttl even when no revocation
// runs; URLs are prefix + token.
func NewLinks(client *redis.Client, ttl time.Duration, prefix string) *Links {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if prefix == "" {
		prefix = "/downloads/"
	}
	return &Links{client: client, ttl: ttl, prefix: prefix}
}

func linkKey(token string) string { return "download:" + token }

// Put stores a file and returns its token and URL.
func (l *Links) Put(ctx context.Context, name string, data []byte) (string, string, error) {
	token := uuid.NewString()
	key := linkKey(token)
	pipe := l.client.TxPipeline()
	pipe.HSet(ctx, key, "name", name, "data", data)
	pipe.Expire(ctx, key, l.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", "", fmt.Errorf("export: store download: %w", err)
	}
	return token, l.prefix + token, nil
}

// Open returns the file behind token.
func (l *Links) Open(ctx context.Context, token string) (Download, error) {
	values, err := l.client.HGetAll(ctx, linkKey(token)).Result()
	if err != nil {
		return Download{}, fmt.Errorf("export: open download: %w", err)
	}
	data, ok := values["data"]
	if !ok {
		return Download{}, ErrLinkNotFound
	}
	return Download{Name: values["name"], Data: []byte(data)}, nil
}

// Revoke removes the file behind token.
func (l *Links) Revoke(ctx context.Context, token string) error {
	return l.client.Del(ctx, linkKey(token)).Err()
}
