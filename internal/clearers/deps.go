package clearers

import (
	"net/http"
	"time"

	"nathanbeddoewebdev/ccev/internal/cache"
	"nathanbeddoewebdev/ccev/internal/config"
	"nathanbeddoewebdev/ccev/internal/services/auth"
	"nathanbeddoewebdev/ccev/internal/sitedb"
	"nathanbeddoewebdev/ccev/internal/wpcli"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultHTTPTimeout bounds each outbound purge request.
const DefaultHTTPTimeout = 15 * time.Second

// Deps are the connections handlers work through. Any of them may be nil;
// a handler whose backend is missing reports skipped or info instead of
// failing.
type Deps struct {
	Config *config.Config
	SiteDB sitedb.DB
	Redis  redis.UniversalClient
	WP     wpcli.Runner
	HTTP   *http.Client
	Auth   auth.Store
	Zones  *cache.Cache
	Log    logrus.FieldLogger

	// Now is the clock used for cookie expiry.
	Now func() time.Time
}

func (d *Deps) withDefaults() *Deps {
	out := Deps{}
	if d != nil {
		out = *d
	}
	if out.Config == nil {
		out.Config = &config.Config{}
	}
	if out.HTTP == nil {
		out.HTTP = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	if out.Log == nil {
		out.Log = logrus.StandardLogger()
	}
	if out.Now == nil {
		out.Now = time.Now
	}
	return &out
}

// Close releases the connections held by d.
func (d *Deps) Close() error {
	var firstErr error
	if d.SiteDB != nil {
		if err := d.SiteDB.Close(); err != nil {
			firstErr = err
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
