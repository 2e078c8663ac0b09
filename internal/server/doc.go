// Package server provides the MCP server context plus the operational HTTP
// surface (metrics and health endpoints) for the gmail-mcp application.
//
// # Key Components
//
// ServerContext manages Gmail API clients with lazy initialization and
// caching. Clients are keyed by account name, so one server instance can act
// on several authenticated mailboxes. The context also carries the optional
// instrumentation wiring (metrics recorder and audit logger) that tool
// handlers pick up.
//
// MetricsServer serves Prometheus metrics on a dedicated port, isolated from
// the MCP transport. HealthChecker contributes /healthz and /readyz handlers
// for liveness and readiness probes.
package server
