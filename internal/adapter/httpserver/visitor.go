package httpserver

import (
	"crypto/rand"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/fairyhunter13/ai-career-advisor/internal/config"
	obsctx "github.com/fairyhunter13/ai-career-advisor/internal/observability"
)

const (
	visitorSessionName = "career_visitor"
	visitorIDValue     = "vid"
)

// VisitorSessions issues a signed cookie holding a random visitor id. The id
// selects the visitor's ui.Controller; no profile data is stored in it.
type VisitorSessions struct {
	store *sessions.CookieStore
}

// NewVisitorSessions builds the cookie store. Without SESSION_SECRET a random
// key is used, so visitors start over after a restart.
func NewVisitorSessions(cfg config.Config) *VisitorSessions {
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			panic(err)
		}
		slog.Warn("SESSION_SECRET not set; using an ephemeral session key")
	}
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProd(),
		SameSite: http.SameSiteLaxMode,
	}
	return &VisitorSessions{store: store}
}

// Middleware loads or assigns the visitor id and adds it to the request
// context and logger. The cookie is re-sent on each response to slide its expiry.
func (v *VisitorSessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lg := LoggerFrom(r)
		sess, err := v.store.Get(r, visitorSessionName)
		if err != nil {
			// tampered or signed with an old key; Get still returns a fresh session
			lg.Debug("discarding unreadable visitor cookie", slog.Any("error", err))
		}
		id, _ := sess.Values[visitorIDValue].(string)
		if id == "" {
			id = uuid.NewString()
			sess.Values[visitorIDValue] = id
		}
		if err := sess.Save(r, w); err != nil {
			lg.Warn("failed to save visitor cookie", slog.Any("error", err))
		}

		lg = lg.With(slog.String("visitor_id", id))
		ctx := obsctx.ContextWithVisitorID(r.Context(), id)
		ctx = obsctx.ContextWithLogger(ctx, lg)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
