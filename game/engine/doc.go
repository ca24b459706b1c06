// Package engine provides the turn-resolution core of Tank Tactics.
//
// The engine package implements:
//   - Board geometry with vertical levels and a square border
//   - The entity model: walls, gifts, drones, tanks and dead tanks
//   - The action catalogue with eligibility, affordability and execution
//   - Turn resolution ordered by precedence bids with random tie-breaks
//   - The lifecycle pass: gravity, death and dead-tank promotion
//   - Modules, event cards and the upgrade economy
//   - Snapshot encoding for persistence
//
// Core Types:
//
// Game is the session context. It owns the Board, the day of the week, the
// action queue and the random source. Actions are queued with Submit and
// consumed by Resolve, which returns a TurnReport for the presentation layer.
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	game, err := engine.NewGameFromConfig(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	game.Submit(engine.NewMove(tankID, 0, engine.North))
//	report := game.Resolve()
//
// Game Rules:
//
// Every action costs fuel, metal, or for dead tanks essence and energy. On
// Tuesday fuel costs are halved. Upgrades are sold on their category's day
// unless the tank carries a factory module, and modules can only be sold on
// Thursday. A tank whose health reaches zero becomes a dead tank that haunts
// its killer and can still place walls, place gifts or harm nearby tanks.
package engine
