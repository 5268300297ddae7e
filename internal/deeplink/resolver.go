// Package deeplink turns raw deeplink strings into opaque action handles
// the platform can dispatch on. Pure passthrough with normalization; an
// unparseable deeplink still resolves, carrying the raw string.
package deeplink

import (
	"net/url"

	"pushrender/pkg/models"
)

type Resolver interface {
	Resolve(rawURL string) models.ActionHandle
}

type URIResolver struct{}

func NewURIResolver() *URIResolver {
	return &URIResolver{}
}

func (r *URIResolver) Resolve(rawURL string) models.ActionHandle {
	u, err := url.Parse(rawURL)
	if err != nil {
		return models.ActionHandle{URI: rawURL}
	}
	return models.ActionHandle{URI: u.String()}
}
