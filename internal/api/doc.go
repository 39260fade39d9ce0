// Package api implements the content controllers mounted on the REST
// dispatcher: post types, post statuses, taxonomies, terms, posts of every
// REST-enabled type, users, site settings and token issuance. Each controller
// owns its schema and registers its routes through a rest.Registrar.
package api
