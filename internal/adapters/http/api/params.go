package api

import (
	"net/http"

	"github.com/okian/surveytarget/internal/domain/query"
)

// LastQueryCookie carries the caller's last successful parameters.
const LastQueryCookie = "last_query"

const lastQueryMaxAge = 30 * 24 * 60 * 60

type paramResolver struct {
	defaults query.Params
}

// resolve merges request values over the cookie, or the defaults when the
// cookie is absent or unreadable.
func (pr *paramResolver) resolve(r *http.Request) (query.Params, error) {
	last := pr.defaults
	if c, err := r.Cookie(LastQueryCookie); err == nil {
		if p, err := query.Decode(c.Value); err == nil {
			last = p
		}
	}
	q := r.URL.Query()
	return query.Resolve(query.Input{
		Hour: q.Get("hour"),
		Time: q.Get("time"),
		Day:  q.Get("day"),
	}, last)
}

func rememberParams(w http.ResponseWriter, p query.Params) {
	http.SetCookie(w, &http.Cookie{
		Name:     LastQueryCookie,
		Value:    p.Encode(),
		Path:     "/",
		MaxAge:   lastQueryMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
