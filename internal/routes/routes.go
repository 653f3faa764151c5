// Package routes names the application's URL locations and builds links to
// them.
package routes

import (
	"fmt"
	"net/url"
	"strings"
)

// APIVersion prefixes every JSON API path.
const APIVersion = "/api/v1"

const (
	Home    = "/"
	About   = "/about"
	Phrases = "/phrases"
	Signin  = "/signin"
	Signup  = "/signup"
	Signout = "/signout"
	Static  = "/static"
	Health  = "/health"
	Metrics = "/metrics"

	Login      = APIVersion + "/login"
	PhrasesAPI = APIVersion + "/phrases"
)

// Href returns the URL of location with query parameters given as
// key/value pairs. Pairs with an empty value are dropped.
func Href(location string, kv ...string) string {
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			q.Set(kv[i], kv[i+1])
		}
	}
	if len(q) == 0 {
		return location
	}
	var b strings.Builder
	b.WriteString(location)
	b.WriteByte('?')
	b.WriteString(q.Encode())
	return b.String()
}

var named = map[string]string{
	"home":    Home,
	"about":   About,
	"phrases": Phrases,
	"signin":  Signin,
	"signup":  Signup,
	"signout": Signout,
}

// URL is Href for a location given by name, as templates refer to them.
func URL(name string, kv ...string) (string, error) {
	loc, ok := named[name]
	if !ok {
		return "", fmt.Errorf("unknown location %q", name)
	}
	return Href(loc, kv...), nil
}

// Asset is the URL of a file served under Static.
func Asset(file string) string {
	return Static + "/" + strings.TrimPrefix(file, "/")
}
