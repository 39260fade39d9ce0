// Package domain contains the content entities exposed by the REST layer (posts,
// post types, statuses, taxonomies, terms, site settings and users) together with
// roles, capabilities and domain validation errors. It is independent of storage
// and transport.
package domain
