// Package poster publishes synthesized change tweets.
//
// The HTTP implementation posts each thread chunk in order, chaining
// replies so multi-part changes render as one thread. When posting is
// disabled a noop implementation is returned so callers never branch.
package poster
