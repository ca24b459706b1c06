package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wricardo/tank-tactics/game/engine"
)

var (
	// ErrSessionNotFound is shared with session managers so callers can match it
	ErrSessionNotFound = errors.New("session not found")
	// ErrNotATank is returned when a tank-only query names something else
	ErrNotATank = errors.New("entity is not a living tank")
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   zerolog.Logger
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, logger zerolog.Logger) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   logger.With().Str("component", "GameService").Logger(),
	}
}

// CreateSession creates a new game session from a config, or the default one
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			return nil, s.configLoadError(configName, err)
		}
	} else {
		config = s.configs.GetDefault()
		configName = s.configIDFor(config)
	}

	// Let session manager generate a 4-character ID
	session, err := s.sessions.Create("", configName, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info().Str("session", session.ID).Str("config", configName).Msg("session created")

	session.Lock()
	defer session.Unlock()
	return sessionInfo(session), nil
}

// configLoadError lists the available configs when the requested one is missing
func (s *gameServiceImpl) configLoadError(configName string, err error) error {
	available, listErr := s.configs.ListConfigs()
	if listErr != nil || len(available) == 0 {
		return fmt.Errorf("failed to load config %s: %w", configName, err)
	}
	ids := make([]string, 0, len(available))
	for _, cfg := range available {
		ids = append(ids, cfg.ConfigID)
	}
	return fmt.Errorf("config '%s' could not be loaded (%w). Available configs: %v", configName, err, ids)
}

// configIDFor returns the config_id whose display name matches config
func (s *gameServiceImpl) configIDFor(config *engine.GameConfig) string {
	if config == nil {
		return "default"
	}
	if available, err := s.configs.ListConfigs(); err == nil {
		for _, cfg := range available {
			if cfg.Name == config.Name {
				return cfg.ConfigID
			}
		}
	}
	return config.Name
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	var info *SessionInfo
	err := s.locked(sessionID, func(sess *Session) error {
		info = sessionInfo(sess)
		return nil
	})
	return info, err
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		sess.Lock()
		result = append(result, sessionInfo(sess))
		sess.Unlock()
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(sessionID)
}

// AddTank places a new player tank with the session's default stat line
func (s *gameServiceImpl) AddTank(ctx context.Context, sessionID string, spec engine.TankSpec) (*TankView, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("%w: tank name is required", engine.ErrInvalidPlacement)
	}

	var view TankView
	err := s.locked(sessionID, func(sess *Session) error {
		if _, exists := sess.Game.Board.Find(spec.Name); exists {
			return fmt.Errorf("%w: a tank named %q already exists", engine.ErrInvalidPlacement, spec.Name)
		}

		template := engine.DefaultTankTemplate()
		if config, err := s.configs.LoadConfig(sess.ConfigName); err == nil {
			template = config.StartingTank
		}

		tank, err := sess.Game.AddTank(spec, template)
		if err != nil {
			return err
		}
		view = tankView(sess.Game, tank)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.persist(sessionID, "add tank")
	return &view, nil
}

// SubmitAction queues an action for the next resolution. The actor and any
// target may be given by id or by tank name.
func (s *gameServiceImpl) SubmitAction(ctx context.Context, sessionID string, req engine.ActionRequest) (*SubmitResult, error) {
	var result *SubmitResult
	err := s.locked(sessionID, func(sess *Session) error {
		actor, ok := sess.Game.Board.Find(string(req.ActorID))
		if !ok {
			return fmt.Errorf("%w: no tank %q", engine.ErrStaleReference, req.ActorID)
		}
		req.ActorID = actor.ID
		if req.TargetID != "" {
			if target, ok := sess.Game.Board.Find(string(req.TargetID)); ok {
				req.TargetID = target.ID
			}
		}

		action, err := engine.DecodeAction(req)
		if err != nil {
			return err
		}
		sess.Game.Submit(action)

		pending := len(sess.Game.PendingActions())
		result = &SubmitResult{
			Queued:      true,
			Action:      engine.DescribeAction(action),
			ActorName:   actor.Name(),
			PendingSize: pending,
			Message:     fmt.Sprintf("%s queued %s; %d actions pending", actor.Name(), action.Kind(), pending),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.persist(sessionID, "submit")
	return result, nil
}

// PendingActions lists the queue in submission order
func (s *gameServiceImpl) PendingActions(ctx context.Context, sessionID string) ([]engine.ActionRequest, error) {
	var out []engine.ActionRequest
	err := s.locked(sessionID, func(sess *Session) error {
		actions := sess.Game.PendingActions()
		out = make([]engine.ActionRequest, 0, len(actions))
		for _, a := range actions {
			out = append(out, engine.DescribeAction(a))
		}
		return nil
	})
	return out, err
}

// ResolveTurn resolves every queued action and advances the day
func (s *gameServiceImpl) ResolveTurn(ctx context.Context, sessionID string) (*TurnResult, error) {
	var result *TurnResult
	err := s.locked(sessionID, func(sess *Session) error {
		report := sess.Game.Resolve()
		result = &TurnResult{
			Report: report,
			Board:  boardView(sess),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.persist(sessionID, "resolve")
	return result, nil
}

// GetBoard returns the full board of a session
func (s *gameServiceImpl) GetBoard(ctx context.Context, sessionID string) (*BoardView, error) {
	var view *BoardView
	err := s.locked(sessionID, func(sess *Session) error {
		view = boardView(sess)
		return nil
	})
	return view, err
}

// DescribeCell lists what occupies a single cell
func (s *gameServiceImpl) DescribeCell(ctx context.Context, sessionID string, at engine.Coordinates) (*CellView, error) {
	var view *CellView
	err := s.locked(sessionID, func(sess *Session) error {
		board := sess.Game.Board
		view = &CellView{
			Position: at,
			InBounds: board.InBounds(at),
			Entities: []*engine.Entity{},
			Summary:  []string{},
		}
		_, view.Solid = board.SolidAt(at)
		for _, e := range board.EntitiesAt(at) {
			view.Entities = append(view.Entities, e.Clone())
			view.Summary = append(view.Summary, summarize(e))
		}
		return nil
	})
	return view, err
}

// GetPrices returns today's price sheet for a tank
func (s *gameServiceImpl) GetPrices(ctx context.Context, sessionID, tankRef string) (*engine.PriceSheet, error) {
	var sheet engine.PriceSheet
	err := s.locked(sessionID, func(sess *Session) error {
		var tank *engine.Entity
		if tankRef != "" {
			e, ok := sess.Game.Board.Find(tankRef)
			if !ok {
				return fmt.Errorf("%w: %q", engine.ErrEntityNotFound, tankRef)
			}
			if e.Kind != engine.KindTank {
				return fmt.Errorf("%w: %s", ErrNotATank, e.Name())
			}
			tank = e
		}
		sheet = sess.Game.Prices(tank)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sheet, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// session fetches a session and marks it accessed
func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// locked runs fn with the session's game locked
func (s *gameServiceImpl) locked(sessionID string, fn func(sess *Session) error) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	sess.Lock()
	defer sess.Unlock()
	return fn(sess)
}

// persist auto-saves after a mutation; failures are logged, not returned.
// The session lock must not be held.
func (s *gameServiceImpl) persist(sessionID, after string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.logger.Warn().Err(err).Str("session", sessionID).Str("after", after).Msg("failed to persist session")
	}
}

func sessionInfo(sess *Session) *SessionInfo {
	g := sess.Game
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigName,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Day:            g.Day,
		Turn:           g.Turn,
		Tanks:          len(g.Board.OfKind(engine.KindTank)),
		DeadTanks:      len(g.Board.OfKind(engine.KindDeadTank)),
		PendingActions: len(g.PendingActions()),
	}
}

func boardView(sess *Session) *BoardView {
	g := sess.Game
	offer := g.ModuleOffer()
	view := &BoardView{
		SessionID:         sess.ID,
		Name:              g.Name,
		Day:               g.Day,
		Turn:              g.Turn,
		Border:            g.Rules.Border,
		Phase:             g.Phase(),
		ModuleOffer:       offer,
		OfferPrice:        offer.Price(),
		PendingActions:    len(g.PendingActions()),
		Tanks:             []TankView{},
		DeadTanks:         []DeadTankView{},
		Entities:          make([]*engine.Entity, 0, g.Board.Len()),
		EventCardsToPrint: append([]engine.CardDraw(nil), g.EventCardsToPrint...),
	}
	for _, e := range g.Board.All() {
		view.Entities = append(view.Entities, e.Clone())
	}
	for _, t := range g.Board.OfKind(engine.KindTank) {
		view.Tanks = append(view.Tanks, tankView(g, t))
	}
	for _, d := range g.Board.OfKind(engine.KindDeadTank) {
		view.DeadTanks = append(view.DeadTanks, DeadTankView{
			ID:       d.ID,
			Name:     d.Dead.Name,
			Position: d.Position,
			KilledBy: d.Dead.KilledBy,
			Essence:  d.Dead.Essence,
			Energy:   d.Dead.Energy,
		})
	}
	return view
}

func tankView(g *engine.Game, e *engine.Entity) TankView {
	t := e.Tank
	view := TankView{
		ID:            e.ID,
		Name:          t.Name,
		Position:      e.Position,
		Health:        e.Health,
		Defense:       e.Defense,
		Fuel:          t.Fuel,
		Metal:         t.Metal,
		MovementRange: t.MovementRange,
		MovementCost:  t.MovementCost,
		GunRange:      t.GunRange,
		GunDamage:     t.GunDamage,
		GunCost:       t.GunCost,
		HighSight:     t.HighSight,
		LowSight:      t.LowSight,
		RadarSight:    t.EffectiveRadarSight(),
		Kills:         t.Kills,
		Essence:       engine.Essence(e),
		Modules:       t.DescribeModules(),
		DailyMessage:  t.DailyMessage,
	}
	if card, ok := g.Pending[e.ID]; ok {
		cv := card.Describe()
		view.PendingCard = &cv
	}
	return view
}

func summarize(e *engine.Entity) string {
	switch e.Kind {
	case engine.KindTank:
		return fmt.Sprintf("tank %s: health %d, defense %d, fuel %d, metal %d", e.Tank.Name, e.Health, e.Defense, e.Tank.Fuel, e.Tank.Metal)
	case engine.KindDeadTank:
		return fmt.Sprintf("dead tank %s: essence %d, energy %d", e.Dead.Name, e.Dead.Essence, e.Dead.Energy)
	case engine.KindGift, engine.KindDeluxeGift:
		s := fmt.Sprintf("%s: %d fuel, %d metal", e.Kind, e.FuelDropped, e.MetalDropped)
		if e.Gift != nil && e.Gift.Module != nil {
			s += fmt.Sprintf(", %s module", *e.Gift.Module)
		}
		return s
	case engine.KindDrone:
		return fmt.Sprintf("drone of %s", e.Drone.OwnerID)
	}
	return fmt.Sprintf("%s: health %d", e.Kind, e.Health)
}
