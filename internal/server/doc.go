// Package server holds the shared runtime context for the MCP server
// and the HTTP sidecar that receives OAuth callbacks and serves
// health and metrics endpoints.
//
// The MCP transport and the callback listener are independent inbound
// paths; both operate on the same store through the components carried
// by ServerContext.
package server
