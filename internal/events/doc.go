// Package events carries content change notifications between components.
//
// Controllers emit a ContentEvent after every successful write (post, term or
// site settings); handlers such as the object cache invalidator subscribe to
// them without the controllers knowing who listens.
package events
