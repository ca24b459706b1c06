// Package service is the layer the REST API, websocket hub and MCP tools
// call into. GameService exposes session lifecycle, action submission, turn
// resolution, board views and config management. Actors and targets may be
// named by entity id or by tank name.
//
// Each call takes the session's lock for its whole duration and returns
// views that share no memory with the engine. Sessions are saved after the
// lock is released whenever the SessionManager has a persistence backend.
//
//	svc := service.NewGameService(sessions, configs, logger)
//	info, _ := svc.CreateSession(ctx, "classic")
//	svc.SubmitAction(ctx, info.ID, engine.ActionRequest{
//		Type:    engine.ActionMove,
//		ActorID: "alpha",
//		Steps:   []string{"north"},
//	})
//	result, err := svc.ResolveTurn(ctx, info.ID)
package service
