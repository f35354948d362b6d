package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"bazaar/models"
	"bazaar/repo"
	"bazaar/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// IdempotencyTTL is how long a recorded response can be replayed.
const IdempotencyTTL = 24 * time.Hour

func computeRequestHash(r *http.Request, bodyBytes []byte, userID string) string {
	h := sha256.New()
	h.Write([]byte(r.Method + ":" + r.URL.Path + ":" + userID + ":"))
	h.Write(bodyBytes)
	return hex.EncodeToString(h.Sum(nil))
}

// CaptureResponseWriter wraps http.ResponseWriter to capture status and body.
type CaptureResponseWriter struct {
	w           http.ResponseWriter
	statusCode  int
	buf         bytes.Buffer
	wroteHeader bool
}

func NewCaptureResponseWriter(w http.ResponseWriter) *CaptureResponseWriter {
	return &CaptureResponseWriter{w: w, statusCode: http.StatusOK}
}

func (c *CaptureResponseWriter) Header() http.Header {
	return c.w.Header()
}

func (c *CaptureResponseWriter) WriteHeader(statusCode int) {
	if !c.wroteHeader {
		c.statusCode = statusCode
		c.w.WriteHeader(statusCode)
		c.wroteHeader = true
	}
}

func (c *CaptureResponseWriter) Write(b []byte) (int, error) {
	c.buf.Write(b)
	return c.w.Write(b)
}

func (c *CaptureResponseWriter) Status() int {
	return c.statusCode
}

func (c *CaptureResponseWriter) BodyBytes() []byte {
	return c.buf.Bytes()
}

// Idempotency makes a mutating handler safe to retry when the client sends an
// Idempotency-Key header.
//   - No header: pass-through.
//   - First use of a key: run the handler and record its response.
//   - Reused key with a different request: 409.
//   - Reused key with a recorded response: replay it.
//   - Reused key still in flight: 409, the client retries later.
//   - Server errors are not recorded, so a retry runs the handler again.
func Idempotency(store repo.IdempotencyRepo, log *zap.Logger, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		key := r.Header.Get("Idempotency-Key")
		if key == "" {
			next(w, r, ps)
			return
		}

		userID := utils.GetUserIDFromRequest(r)
		bodyBytes, err := utils.ReadBody(r)
		if err != nil {
			utils.RespondWithAppError(w, err)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

		reqHash := computeRequestHash(r, bodyBytes, userID)
		now := time.Now()
		rec := &models.IdempotencyRecord{
			Key:         key,
			Method:      r.Method,
			Path:        r.URL.Path,
			UserID:      userID,
			RequestHash: reqHash,
			CreatedAt:   now,
			ExpiresAt:   now.Add(IdempotencyTTL),
		}

		ctx := r.Context()
		err = store.Insert(ctx, rec)
		if err == nil {
			crw := NewCaptureResponseWriter(w)
			next(crw, r, ps)

			if crw.Status() >= http.StatusInternalServerError {
				if err := store.Delete(ctx, key); err != nil {
					log.Warn("idempotency record release failed", zap.String("key", key), zap.Error(err))
				}
				return
			}

			var parsed interface{}
			if err := json.Unmarshal(crw.BodyBytes(), &parsed); err != nil {
				parsed = string(crw.BodyBytes())
			}
			response := map[string]interface{}{"status": crw.Status(), "body": parsed}
			if err := store.SetResponse(ctx, key, response); err != nil {
				log.Warn("idempotency record update failed", zap.String("key", key), zap.Error(err))
			}
			return
		}
		if !errors.Is(err, repo.ErrDuplicateKey) {
			log.Error("idempotency insert failed", zap.String("key", key), zap.Error(err))
			utils.RespondWithError(w, http.StatusInternalServerError, "idempotency lookup error")
			return
		}

		existing, err := store.FindByKey(ctx, key)
		if err != nil {
			log.Error("idempotency lookup failed", zap.String("key", key), zap.Error(err))
			utils.RespondWithError(w, http.StatusInternalServerError, "idempotency lookup error")
			return
		}
		if existing.RequestHash != reqHash {
			utils.RespondWithError(w, http.StatusConflict, "idempotency-key conflict")
			return
		}
		if existing.Response == nil {
			utils.RespondWithError(w, http.StatusConflict, "request with this idempotency-key is in progress")
			return
		}
		utils.RespondWithJSON(w, statusOf(existing.Response["status"]), existing.Response["body"])
	}
}

// statusOf reads a stored status that may have round-tripped through BSON or JSON.
func statusOf(v interface{}) int {
	switch s := v.(type) {
	case int:
		return s
	case int32:
		return int(s)
	case int64:
		return int(s)
	case float64:
		return int(s)
	}
	return http.StatusOK
}
