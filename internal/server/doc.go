// Package server implements the MCP (Model Context Protocol) server for the
// Gabor filtering tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Filter Bank:
//   - gabor_filter_bank: Build and render a filter bank
//   - gabor_lut: Show the post-processing lookup table
//
// Filtering:
//   - gabor_compute: Filter an image and store the response planes
//
// Stored Results:
//   - gabor_response_plane: Render one response plane
//   - gabor_orientation_map: Render the dominant orientation per pixel
//   - gabor_roi_overlay: Draw the filtered regions on the source image
//
// Every tool argument left unset falls back to the server configuration
// (see package config).
//
// # Results
//
// gabor_compute keeps its output in a bounded in-memory store keyed by a
// random UUID. Once the store is full the oldest result is dropped, so a
// result_id may expire after server.result_capacity newer runs.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
package server
