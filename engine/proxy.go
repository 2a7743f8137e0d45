package engine

import (
	"fmt"
	"net/url"
)

func parseProxy(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("http_engine: invalid proxy %q", raw)
	}
	return u, nil
}
