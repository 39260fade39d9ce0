// Package store defines the content-store interfaces consumed by the REST
// controllers (posts, terms, site options, users) together with their query
// types and sentinel errors. Implementations live under internal/platform.
package store
