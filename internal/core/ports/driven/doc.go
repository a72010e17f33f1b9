// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentStore: Lists and fetches documents (Dropbox, Drive, GitHub, filesystem)
//   - TextExtractor: Turns raw document bytes into plain text (Tika)
//   - SearchEngine: Index management, upsert and match queries (Elasticsearch, Bleve)
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunStore: Persists sync reports. Without it, no history is kept.
//   - RunLock: Prevents concurrent sync passes over the same data directory.
//   - Watcher: Change notification for stores that support it.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
