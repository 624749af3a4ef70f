package internal

import (
	"fmt"
	"net/url"
)

// urlFor builds the URL for a named route. Placeholder substitution and its
// error cases live in RePath.Fill; non-empty query parameters are URL-encoded
// and appended. Exact patterns reverse to themselves.
func (t *routeTable) urlFor(name string, args map[string]string, query map[string]string) (string, error) {
	route, ok := t.names[name]
	if !ok {
		return "", fmt.Errorf("no route named %q", name)
	}
	u, err := route.rePath.Fill(args)
	if err != nil {
		return "", err
	}
	if len(query) > 0 {
		u += "?" + encodeQuery(query)
	}
	return u, nil
}

// encodeQuery renders query parameters in sorted key order.
func encodeQuery(query map[string]string) string {
	vals := make(url.Values, len(query))
	for k, v := range query {
		vals.Set(k, v)
	}
	return vals.Encode()
}
