package removal

import (
	"strconv"
	"strings"

	gocache "github.com/patrickmn/go-cache"
)

// cachedModel memoizes fits keyed by the catch vector. Survey frames repeat
// short catch patterns (many sites catch the same handful of fish), so the
// underlying model runs once per distinct vector. Entries never expire; the
// cache lives only for one analysis run.
type cachedModel struct {
	inner Model
	fits  *gocache.Cache
}

// Cached wraps model with a catch-vector-keyed memo cache. The wrapped model
// must be deterministic; errors are not cached so a retried fit reaches the
// model again.
func Cached(model Model) Model {
	return &cachedModel{
		inner: model,
		fits:  gocache.New(gocache.NoExpiration, 0),
	}
}

func (cm *cachedModel) Name() string { return cm.inner.Name() }

func (cm *cachedModel) Fit(catches []int) (Fit, error) {
	key := catchKey(catches)
	if hit, ok := cm.fits.Get(key); ok {
		return hit.(Fit), nil
	}
	fit, err := cm.inner.Fit(catches)
	if err != nil {
		return Fit{}, err
	}
	cm.fits.Set(key, fit, gocache.NoExpiration)
	return fit, nil
}

func catchKey(catches []int) string {
	var sb strings.Builder
	for i, c := range catches {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(c))
	}
	return sb.String()
}
