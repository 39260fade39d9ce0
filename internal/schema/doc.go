// Package schema models the JSON-Schema-like description of a REST resource and
// implements per-property validation, sanitization and context filtering.
//
// A Schema is declared once per controller. EndpointArgs turns it into the
// argument specs the dispatcher runs against request parameters, and the
// OpenAPI rendering serves it on /schema routes.
package schema
