// Package tweets turns a classified change set into ordered, character-
// bounded tweet payloads. Each change record becomes one thread: the text is
// packed into chunks at sentence boundaries (word boundaries as a fallback),
// the first chunk carries the change-type prefix, and later chunks carry a
// thread-position suffix.
package tweets
