// Package content holds the object registry: the post types, post statuses and
// taxonomies known to the site. The registry is populated during startup from
// built-in defaults and an optional YAML file, then frozen and shared read-only
// by every request.
package content
