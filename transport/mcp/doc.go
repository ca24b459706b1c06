// Package mcp provides the Model Context Protocol interface for Tank Tactics.
//
// The Client is a thin proxy: every tool call is translated into a request
// against the REST API and the JSON response is rendered as text for the
// agent. The package holds no game state of its own.
//
// MCP Tools:
//   - create_session, list_sessions, get_session: session management
//   - board_state: ASCII map of the ground level plus tank stats
//   - add_tank: place a player tank
//   - submit_action: queue any tank or dead tank action
//   - pending_actions: list the queue
//   - resolve_turn: resolve the queue and show the turn report
//   - describe_cell: everything at one coordinate
//   - prices: today's price sheet
//   - list_configs, game_instructions
//
// Transport Modes:
//   - Stdio: the mcp command serves the tools over stdin/stdout
//   - HTTP: the server command mounts the tools at POST /mcp
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
