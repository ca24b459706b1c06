// Package websocket provides WebSocket push updates for Tank Tactics.
//
// A Hub keeps one room of spectators per session. Each connection has a
// read goroutine and a write goroutine, and the goroutine running Hub.Run
// owns joins, leaves and fan-out. Cancelling Run's context disconnects
// every spectator.
//
// Message Protocol:
//
// Clients only listen. Every frame is one JSON Message:
//   - board_update: the full board on connect and after every change
//   - turn_report: the report of a resolved turn
//   - action_queued, session_deleted: lightweight notifications in Data
//
// Session Integration:
//
// Clients name their session with a query parameter (?sessionId=abc1).
// Updates are delivered only to clients connected to the same session;
// session IDs are matched case-insensitively.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("sessionId"), board)
//	})
//
//	hub.BroadcastBoard(sessionID, board)
//
// Broadcasting never blocks the caller. When the hub queue is full the
// update is dropped, and clients whose buffers are full are disconnected.
package websocket
