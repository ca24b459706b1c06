// Package api provides HTTP REST API handlers for Tank Tactics.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "classic"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Turn Operations:
//   - POST /api/sessions/{id}/tanks - Add a player tank
//   - GET /api/sessions/{id}/actions - List queued actions
//   - POST /api/sessions/{id}/actions - Queue an action
//   - POST /api/sessions/{id}/resolve - Resolve the queue and advance the day
//
// Board State:
//   - GET /api/sessions/{id}/board - Full board with tank views
//   - GET /api/sessions/{id}/cells/{x}/{y}?level=N - What occupies one cell
//   - GET /api/sessions/{id}/prices?tank=alpha - Today's price sheet
//
// Configuration:
//   - GET /api/configs - List available configurations
//   - GET /api/configs/{name} - Get one configuration
//   - POST /api/configs - Save a configuration (JSON or YAML on disk)
//
// Actions are queued with a JSON body; actor_id and target_id accept either
// an entity id or a tank name:
//
//	{
//	  "type": "move",
//	  "actor_id": "alpha",
//	  "steps": ["north", "north", "east"],
//	  "precedence": 2
//	}
//
// Errors are returned as JSON with the matching HTTP status code. Unknown
// sessions, entities and configs give 404; malformed or ineligible actions
// give 400:
//
//	{
//	  "error": "unknown action: teleport",
//	  "code": 400
//	}
//
// Clients subscribe to live updates at /ws?session={id}.
package api
