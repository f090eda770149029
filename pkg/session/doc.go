/*
Package session serializes access to traversals.

A traversal is keyed by (user, scenario). The Manager holds a reference-counted
mutex per key so that concurrent submissions inside one process queue up, and
optionally takes a distributed lock so replicas behind a load balancer do the
same. Stores still enforce optimistic concurrency underneath, so the lock is a
fast path and never the only guarantee.
*/
package session
