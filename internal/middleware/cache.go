package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/football-club/internal/config"
	"github.com/iliyamo/football-club/internal/logging"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 || cw.size < cw.limit {
		remain := cw.limit - cw.size
		if cw.limit <= 0 || int64(len(b)) <= remain {
			cw.buf.Write(b)
		} else if remain > 0 {
			cw.buf.Write(b[:remain])
		}
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// dependents lists the cached resources a write to a resource makes
// stale. Deleting a team cascades to its players and to the standings
// rows of every competition it played in.
var dependents = map[string][]string{
	"teams":        {"teams", "players", "competitions"},
	"players":      {"players"},
	"competitions": {"competitions"},
}

// Cache serves public GET responses from Redis and drops them when the
// underlying resource is written. With caching disabled or no Redis
// client every method is a pass-through.
type Cache struct {
	cfg config.CacheConfig
	rdb *redis.Client
	log logging.Logger
}

func NewCache(cfg config.CacheConfig, rdb *redis.Client, log logging.Logger) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return &Cache{cfg: cfg, rdb: rdb, log: log}
}

func (rc *Cache) enabled() bool { return rc != nil && rc.cfg.Enabled && rc.rdb != nil }

// resourceOf returns the first path segment after the API prefix, e.g.
// "teams" for /api/v1/teams/3.
func resourceOf(path string) string {
	path = strings.TrimPrefix(path, "/api/v1")
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}

// cacheKey is prefix:resource:sha1(path?query). Keeping the resource in
// clear text lets Invalidate drop a whole resource with one SCAN pattern.
func (rc *Cache) cacheKey(r *http.Request) string {
	sum := sha1.Sum([]byte(r.Method + " " + r.URL.Path + "?" + r.URL.RawQuery))
	return fmt.Sprintf("%s:%s:%x", rc.cfg.Prefix, resourceOf(r.URL.Path), sum[:])
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:8+len(hdrJSON)], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	hdr := make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &hdr); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, hdr, bs[8+hlen:], true
}

// Read stores headers + body so clients see identical formatting as the
// original response. Only 200 responses that fit MaxBodyBytes are stored.
func (rc *Cache) Read() echo.MiddlewareFunc {
	if !rc.enabled() {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	maxBody := int64(rc.cfg.MaxBodyBytes)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rc.cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			ctx := c.Request().Context()
			key := rc.cacheKey(c.Request())

			if bs, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := decodePayload(bs); ok {
					for k, vals := range hdr {
						if strings.EqualFold(k, echo.HeaderContentLength) {
							continue
						}
						for _, v := range vals {
							c.Response().Header().Add(k, v)
						}
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					_, _ = c.Response().Write(body)
					return nil
				}
			}

			// Miss: capture
			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || (maxBody > 0 && cw.size > maxBody) {
				return nil
			}
			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			if payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes()); err == nil {
				_ = rc.rdb.SetEx(context.WithoutCancel(ctx), key, payload, rc.cfg.TTL).Err()
			}
			return nil
		}
	}
}

// InvalidateOnWrite drops cached reads of the written resource (and of
// its dependents) after every successful non-cached request.
func (rc *Cache) InvalidateOnWrite() echo.MiddlewareFunc {
	if !rc.enabled() {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if rc.cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return err
			}
			if status := c.Response().Status; err == nil && status >= 200 && status < 300 {
				rc.Invalidate(context.WithoutCancel(c.Request().Context()), resourceOf(c.Request().URL.Path))
			}
			return err
		}
	}
}

// Invalidate deletes every cached entry of the given resources and of
// their dependents. Failures are logged; a stale entry expires with its
// TTL anyway.
func (rc *Cache) Invalidate(ctx context.Context, resources ...string) {
	if !rc.enabled() {
		return
	}
	seen := map[string]bool{}
	for _, res := range resources {
		targets := dependents[res]
		if targets == nil {
			targets = []string{res}
		}
		for _, t := range targets {
			if seen[t] {
				continue
			}
			seen[t] = true
			if err := rc.deletePattern(ctx, rc.cfg.Prefix+":"+t+":*"); err != nil {
				rc.log.Warn(ctx, "cache invalidation failed", "resource", t, "error", err)
			}
		}
	}
}

// deletePattern finishes the SCAN before deleting so the cursor never
// walks a keyspace that is shrinking under it. Keys go out in DELs of at
// most delBatch.
func (rc *Cache) deletePattern(ctx context.Context, pattern string) error {
	const delBatch = 200
	var keys []string
	iter := rc.rdb.Scan(ctx, 0, pattern, delBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	for len(keys) > 0 {
		n := min(len(keys), delBatch)
		if err := rc.rdb.Del(ctx, keys[:n]...).Err(); err != nil {
			return err
		}
		keys = keys[n:]
	}
	return nil
}
