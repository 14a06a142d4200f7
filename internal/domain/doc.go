// Package domain defines the core types of the Sentinel discovery simulator.
//
// This package contains the records the rest of the system passes around:
// discovered hosts with their services and vulnerabilities, the derived
// topology graph, scan records, process-wide metrics, operational log
// entries, compliance policies and framework documents.
//
// # Core Types
//
// Host is a discovered network endpoint keyed by its IP address. It owns an
// ordered list of Services and an ordered list of Vulnerabilities.
//
// Vulnerability carries a one-way status transition (open to remediated)
// with the remediation timestamp and action recorded on the transition.
//
// Topology is the node/edge view derived from the current host set. Edges
// are never stored; they are recomputed from hosts on demand.
//
// ScanRecord is the immutable result of a single discovery run.
//
// # Errors
//
// Error carries a Kind (validation, not found, conflict, busy, internal) so
// transport layers can map failures to status codes without string matching.
//
// # Design Principles
//
// - Plain value types, safe to copy across goroutines once built
// - No storage, transport or randomness in this package
package domain
