// Package session keeps Tank Tactics games alive between requests.
//
// A Manager maps 4-character hex ids, matched without regard to case, to
// service.Session values. Each session holds one engine.Game, the config id
// it was built from and its access times.
//
// With a SessionPersistence attached, every created or mutated session is
// saved as an engine snapshot. FilePersistence writes one JSON file per
// session and SQLitePersistence keeps the same document in one table.
// Queued actions and the random seed are not part of a snapshot, so a
// session restored after a restart starts its turn with an empty queue.
//
// Idle sessions are saved and evicted by CleanupExpiredSessions and come
// back on their next Get.
//
//	store, _ := session.NewSQLitePersistence("sessions.db", logger)
//	manager := session.NewManagerWithPersistence(store, logger)
//	manager.LoadPersistedSessions()
//	sess, err := manager.Create("", "classic", config)
package session
