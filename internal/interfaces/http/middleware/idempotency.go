package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inventa/backend/internal/infrastructure/cache"
	"github.com/inventa/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Idempotency headers
const (
	IdempotencyKeyHeader   = "Idempotency-Key"
	IdempotentReplayHeader = "Idempotent-Replayed"
	// MaxIdempotencyKeyLength caps client supplied keys
	MaxIdempotencyKeyLength = 255
)

// responseRecorder tees the response body so it can be stored for replay
type responseRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response when a mutating request repeats
// its Idempotency-Key. Keys are scoped to the resolved actor; a key reused
// with a different method, path or body is rejected with 409. Responses
// with a 5xx status, or from a panicking handler, are not kept so the
// client may retry. Requests without the header pass through untouched.
//
// A store failure is logged and the request proceeds without replay.
func Idempotency(store cache.ResponseStore, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || !isMutating(c.Request.Method) {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength {
			abortWithError(c, dto.ErrCodeBadRequest, "Idempotency-Key is too long")
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				abortWithError(c, dto.ErrCodeBodyTooLarge, "Request body exceeds maximum allowed size")
				return
			}
			abortWithError(c, dto.ErrCodeBadRequest, "Failed to read request body")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		ctx := c.Request.Context()
		scoped := scopeKey(c, key)
		fingerprint := requestFingerprint(c.Request.Method, c.Request.URL.Path, body)

		existing, err := store.Reserve(ctx, scoped, fingerprint, ttl)
		if err != nil {
			log.Warn("Idempotency store unavailable, processing without replay",
				zap.String("request_id", GetRequestID(c)), zap.Error(err))
			c.Next()
			return
		}
		if existing != nil {
			replayOrReject(c, existing, fingerprint)
			return
		}

		// a client that hangs up must not leave the key pending
		storeCtx := context.WithoutCancel(ctx)
		release := func() {
			if err := store.Release(storeCtx, scoped); err != nil {
				log.Warn("Failed to release idempotency key", zap.Error(err))
			}
		}

		// A panic unwinds past the code below; free the key before
		// Recovery turns it into a 500.
		defer func() {
			if recovered := recover(); recovered != nil {
				release()
				panic(recovered)
			}
		}()

		rec := &responseRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		status := rec.Status()
		if status >= http.StatusInternalServerError {
			release()
			return
		}
		if err := store.Complete(storeCtx, scoped, cache.Entry{
			Fingerprint: fingerprint,
			Status:      status,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
		}, ttl); err != nil {
			log.Warn("Failed to store idempotent response", zap.Error(err))
		}
	}
}

func replayOrReject(c *gin.Context, existing *cache.Entry, fingerprint string) {
	switch {
	case existing.Fingerprint != fingerprint:
		abortWithError(c, dto.ErrCodeIdempotencyConflict,
			"Idempotency-Key was already used for a different request")
	case existing.Pending:
		abortWithError(c, dto.ErrCodeIdempotencyConflict,
			"A request with this Idempotency-Key is still being processed")
	default:
		c.Header(IdempotentReplayHeader, "true")
		if len(existing.Body) == 0 {
			c.AbortWithStatus(existing.Status)
			return
		}
		c.Abort()
		c.Data(existing.Status, existing.ContentType, existing.Body)
	}
}

func abortWithError(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code),
		dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func scopeKey(c *gin.Context, key string) string {
	if actorID := GetActorID(c); actorID != nil {
		return "actor:" + strconv.FormatUint(*actorID, 10) + ":" + key
	}
	return "anonymous:" + key
}

func requestFingerprint(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
