package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/wricardo/tank-tactics/game/engine"
	"github.com/wricardo/tank-tactics/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Tank Tactics",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tank Tactics - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Players queue actions for their tanks during the day. A game master resolves
the queue once per day; the highest precedence bid goes first and ties are
broken randomly.

AVAILABLE TOOLS:
- create_session / list_sessions / get_session: manage games
- board_state: map of the board plus every tank's stats
- add_tank: place a new player tank
- submit_action: queue an action (move, fire, build_wall, upgrade, ...)
- pending_actions: what is queued for the next resolution
- resolve_turn: resolve the queue and advance the day
- describe_cell: everything at one coordinate
- prices: today's upgrade, module and construction prices
- list_configs: available board configurations
- game_instructions: full rules

NOTE: The 'intent' parameter on submit_action is for your own reasoning; the server ignores it.`),
	)

	c.registerTools()
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func intProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session from a board configuration",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": stringProp("Config identifier to use (optional, see list_configs)"),
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": stringProp("Session ID to retrieve"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board_state",
		Description: "Get a map of the board and the stats of every tank",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": stringProp("Session ID"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleBoardState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "add_tank",
		Description: "Place a new player tank on an empty cell",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": stringProp("Session ID"),
				"name":       stringProp("Unique tank name"),
				"x":          intProp("X coordinate (east is positive)"),
				"y":          intProp("Y coordinate (north is positive)"),
			},
			Required: []string{"session_id", "name", "x", "y"},
		},
	}, c.handleAddTank)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "submit_action",
		Description: "Queue an action for the next turn resolution",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": stringProp("Session ID"),
				"type": map[string]interface{}{
					"type": "string",
					"enum": []string{
						string(engine.ActionMove), string(engine.ActionFire),
						string(engine.ActionBuildWall), string(engine.ActionBuildReinforcedWall),
						string(engine.ActionBuildGift), string(engine.ActionUpgrade),
						string(engine.ActionPurchaseModule), string(engine.ActionSellModule),
						string(engine.ActionBidEventCard), string(engine.ActionMoveDrone),
						string(engine.ActionExtractResource), string(engine.ActionSendMessage),
						string(engine.ActionPlaceWall), string(engine.ActionPlaceGift),
						string(engine.ActionHarmTank),
					},
					"description": "Action kind",
				},
				"actor":      stringProp("Acting tank or dead tank, by name or entity id"),
				"precedence": intProp("Precedence bid; higher goes first and costs extra fuel (dead tanks cannot bid)"),
				"steps": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Directions for move, fire or move_drone (north, south, east, west, ne, nw, se, sw)",
				},
				"direction": stringProp("Direction for build and extract actions"),
				"upgrade":   stringProp("Upgrade kind (movement_range, movement_cost, gun_range, gun_cost, gun_damage, defense, sight)"),
				"module":    stringProp("Module kind for purchase_module or sell_module"),
				"amount":    intProp("Metal to bid for bid_event_card"),
				"fuel":      intProp("Fuel to put in a gift"),
				"metal":     intProp("Metal to put in a gift"),
				"x":         intProp("Target X for placement actions"),
				"y":         intProp("Target Y for placement actions"),
				"level":     intProp("Target level for placement actions (0 is ground)"),
				"target":    stringProp("Target entity (tank name or id) for messages and harm"),
				"text":      stringProp("Message text for send_message"),
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this action (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "type", "actor"},
		},
	}, c.handleSubmitAction)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "pending_actions",
		Description: "List actions queued for the next resolution",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": stringProp("Session ID"),
			},
			Required: []string{"session_id"},
		},
	}, c.handlePendingActions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "resolve_turn",
		Description: "Resolve every queued action and advance to the next day",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": stringProp("Session ID"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleResolveTurn)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get everything that occupies one cell of the board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": stringProp("Session ID"),
				"x":          intProp("X coordinate"),
				"y":          intProp("Y coordinate"),
				"level":      intProp("Level (0 is ground, optional)"),
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "prices",
		Description: "Get today's price sheet, optionally for one tank",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": stringProp("Session ID"),
				"tank":       stringProp("Tank name or id for tank-specific prices (optional)"),
			},
			Required: []string{"session_id"},
		},
	}, c.handlePrices)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"].(string); ok && msg != "" {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// arguments returns the tool call arguments as a map
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID := cast.ToString(args["config_id"])

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall("POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\nTanks: %d\nDay: %s\n",
		session.ID, session.ConfigName, session.Tanks, session.Day)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&b, "- %s (Config: %s, Day: %s, Turn: %d, Created: %s)\n",
			s.ID, s.ConfigName, s.Day, s.Turn, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := cast.ToString(arguments(request)["session_id"])

	var session service.SessionInfo
	if err := c.apiCall("GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleBoardState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := cast.ToString(arguments(request)["session_id"])

	var board service.BoardView
	if err := c.apiCall("GET", sessionPath(sessionID, "/board"), nil, &board); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoard(&board)), nil
}

func (c *Client) handleAddTank(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := cast.ToString(args["session_id"])

	spec := engine.TankSpec{
		Name: cast.ToString(args["name"]),
		Position: engine.Coordinates{
			X: cast.ToInt(args["x"]),
			Y: cast.ToInt(args["y"]),
		},
	}

	var tank service.TankView
	if err := c.apiCall("POST", sessionPath(sessionID, "/tanks"), spec, &tank); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Tank added\n\n" + formatTank(&tank)), nil
}

// actionFromArgs builds an action request from loosely typed tool arguments
func actionFromArgs(args map[string]interface{}) engine.ActionRequest {
	req := engine.ActionRequest{
		Type:       engine.ActionKind(cast.ToString(args["type"])),
		ActorID:    engine.EntityID(cast.ToString(args["actor"])),
		Precedence: cast.ToInt(args["precedence"]),
		Direction:  cast.ToString(args["direction"]),
		Upgrade:    engine.UpgradeKind(cast.ToString(args["upgrade"])),
		Module:     engine.ModuleKind(cast.ToString(args["module"])),
		Amount:     cast.ToInt(args["amount"]),
		Fuel:       cast.ToInt(args["fuel"]),
		Metal:      cast.ToInt(args["metal"]),
		TargetID:   engine.EntityID(cast.ToString(args["target"])),
		Text:       cast.ToString(args["text"]),
	}

	if steps, ok := args["steps"]; ok {
		req.Steps = cast.ToStringSlice(steps)
	}

	_, hasX := args["x"]
	_, hasY := args["y"]
	if hasX && hasY {
		req.Target = &engine.Coordinates{
			X:     cast.ToInt(args["x"]),
			Y:     cast.ToInt(args["y"]),
			Level: cast.ToInt(args["level"]),
		}
	}

	return req
}

func (c *Client) handleSubmitAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := cast.ToString(args["session_id"])

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = args["intent"]

	var result service.SubmitResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/actions"), actionFromArgs(args), &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Queued %s for %s (precedence %d)\nPending actions: %d\n",
		result.Action.Type, result.ActorName, result.Action.Precedence, result.PendingSize)
	if result.Message != "" {
		text += result.Message + "\n"
	}
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handlePendingActions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := cast.ToString(arguments(request)["session_id"])

	var response struct {
		Count   int                    `json:"count"`
		Actions []engine.ActionRequest `json:"actions"`
	}
	if err := c.apiCall("GET", sessionPath(sessionID, "/actions"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if response.Count == 0 {
		return mcp.NewToolResultText("No actions queued.\n"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Queued Actions (%d):\n\n", response.Count)
	for i, a := range response.Actions {
		fmt.Fprintf(&b, "%d. %s by %s (precedence %d)%s\n", i+1, a.Type, a.ActorID, a.Precedence, describeAction(a))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleResolveTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := cast.ToString(arguments(request)["session_id"])

	var result service.TurnResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/resolve"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := formatReport(result.Report)
	if result.Board != nil {
		text += "\n" + formatBoard(result.Board)
	}
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := cast.ToString(args["session_id"])

	x, errX := cast.ToIntE(args["x"])
	y, errY := cast.ToIntE(args["y"])
	if errX != nil || errY != nil {
		return mcp.NewToolResultError("x and y must be integers"), nil
	}
	level := cast.ToInt(args["level"])

	path := sessionPath(sessionID, fmt.Sprintf("/cells/%d/%d", x, y))
	if level != 0 {
		path += fmt.Sprintf("?level=%d", level)
	}

	var cell service.CellView
	if err := c.apiCall("GET", path, nil, &cell); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCell(&cell)), nil
}

func (c *Client) handlePrices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := cast.ToString(args["session_id"])

	path := sessionPath(sessionID, "/prices")
	if tank := cast.ToString(args["tank"]); tank != "" {
		path += "?tank=" + url.QueryEscape(tank)
	}

	var sheet engine.PriceSheet
	if err := c.apiCall("GET", path, nil, &sheet); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPrices(&sheet)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall("GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Border: %d, Tanks: %d, Walls: %d\n\n",
			config.Name, config.ConfigID, config.Description, config.Border, config.Tanks, config.Walls)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Tank Tactics - Complete Instructions

GAME OBJECTIVE:
Be the last tank standing. Killed tanks keep playing as dead tanks and can
still shape the board.

THE BOARD:
• Coordinates run from -border to +border on both axes; north is +Y, east is +X
• Walls, reinforced walls and tanks are solid; two solid things never share a cell
• Driving into the border stops the move and costs collision damage
• Gifts hold fuel and metal; driving onto one collects it

THE DAY:
• The week runs Monday to Friday, one resolution per day
• Actions are queued during the day and resolved together by the game master
• Higher precedence goes first; ties are broken randomly
• Precedence is extra fuel paid on top of the action's cost; dead tanks cannot bid
• On Tuesday fuel costs are halved, rounded up (not the precedence bid, nor fuel put into a gift)
• Upgrades are sold by day: movement on Monday, guns on Wednesday, defense and sight on Friday
• Modules can only be sold back on Thursday
• A different module is offered for sale each day

TANK ACTIONS:
• move: up to movement_range steps of north/south/east/west or ne/nw/se/sw, paying movement cost once
• fire: shoot along a path of up to gun_range steps; damage is gun damage minus the target's defense, and a negative result heals
• build_wall / build_reinforced_wall / build_gift: build next to you (needs the construction module)
• upgrade: raise movement_range, movement_cost, gun_range, gun_cost, gun_damage, defense or sight
• purchase_module / sell_module: buy today's offered module or sell one back
• bid_event_card: bid metal for today's event card
• move_drone: fly the drone (needs the drone module)
• extract_resource: mine metal from an adjacent wall
• send_message: deliver a note to another tank

DEAD TANK ACTIONS:
• place_wall / place_gift / harm_tank: spend essence and energy within a range set by energy
• A dead tank follows its killer around and gains energy whenever the killer scores a kill

COLLISIONS:
• Moving into a solid cell stops the move and damages both sides
• Things left standing on nothing fall and take fall damage

DEATH:
• A tank at zero health becomes a dead tank
• It drops its resources as a gift (a deluxe gift when it was rich enough)
• The last tank to damage it is credited with the kill

API USAGE BEST PRACTICES:
- Check board_state and prices before planning
- Queue every tank's actions, then call resolve_turn once
- Read the turn report: every result says whether the action succeeded and what it charged

Good luck, commander!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\nLast Accessed: %s\nDay: %s\nTurn: %d\nTanks: %d (dead: %d)\nPending Actions: %d\n",
		session.ID,
		session.ConfigName,
		session.CreatedAt.Format(time.RFC3339),
		session.LastAccessedAt.Format(time.RFC3339),
		session.Day,
		session.Turn,
		session.Tanks,
		session.DeadTanks,
		session.PendingActions,
	)
}

// glyphPriority orders entity kinds when several share a cell
var glyphPriority = map[engine.Kind]int{
	engine.KindTank:           6,
	engine.KindReinforcedWall: 5,
	engine.KindWall:           4,
	engine.KindDeadTank:       3,
	engine.KindDrone:          2,
	engine.KindDeluxeGift:     1,
	engine.KindGift:           0,
}

func glyphFor(k engine.Kind) byte {
	switch k {
	case engine.KindTank:
		return 'T'
	case engine.KindReinforcedWall:
		return '%'
	case engine.KindWall:
		return '#'
	case engine.KindDeadTank:
		return 'x'
	case engine.KindDrone:
		return 'd'
	case engine.KindDeluxeGift:
		return 'G'
	case engine.KindGift:
		return 'g'
	}
	return '?'
}

// renderGrid draws ground level entities, north at the top
func renderGrid(border int, entities []*engine.Entity) string {
	size := 2*border + 1
	grid := make([][]byte, size)
	prio := make([][]int, size)
	for i := range grid {
		grid[i] = []byte(strings.Repeat(".", size))
		prio[i] = make([]int, size)
		for j := range prio[i] {
			prio[i][j] = -1
		}
	}

	for _, e := range entities {
		p := e.Position
		if p.Level != 0 || !engine.InBounds(p, border) {
			continue
		}
		row, col := border-p.Y, p.X+border
		if pr := glyphPriority[e.Kind]; pr > prio[row][col] {
			prio[row][col] = pr
			grid[row][col] = glyphFor(e.Kind)
		}
	}

	var b strings.Builder
	for i, line := range grid {
		fmt.Fprintf(&b, "%4d %s\n", border-i, string(line))
	}
	return b.String()
}

func formatBoard(board *service.BoardView) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Board: %s (session %s)\n", board.Name, board.SessionID)
	fmt.Fprintf(&b, "Day: %s, Turn: %d, Border: %d\n", board.Day, board.Turn, board.Border)
	if board.ModuleOffer != "" {
		fmt.Fprintf(&b, "Module on offer: %s for %d metal\n", board.ModuleOffer, board.OfferPrice)
	}
	fmt.Fprintf(&b, "Pending actions: %d\n\n", board.PendingActions)

	b.WriteString("Legend: T=tank x=dead tank #=wall %=reinforced wall g=gift G=deluxe gift d=drone .=empty\n\n")
	b.WriteString(renderGrid(board.Border, board.Entities))

	if len(board.Tanks) > 0 {
		b.WriteString("\nTanks:\n")
		for i := range board.Tanks {
			b.WriteString(formatTank(&board.Tanks[i]))
		}
	}

	if len(board.DeadTanks) > 0 {
		b.WriteString("\nDead Tanks:\n")
		for _, d := range board.DeadTanks {
			fmt.Fprintf(&b, "- %s at (%d,%d) essence %d, energy %d\n",
				d.Name, d.Position.X, d.Position.Y, d.Essence, d.Energy)
		}
	}

	return b.String()
}

func formatTank(tank *service.TankView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- %s [%s] at (%d,%d,%d)\n", tank.Name, tank.ID, tank.Position.X, tank.Position.Y, tank.Position.Level)
	fmt.Fprintf(&b, "  Health: %d  Defense: %d  Fuel: %d  Metal: %d  Kills: %d\n",
		tank.Health, tank.Defense, tank.Fuel, tank.Metal, tank.Kills)
	fmt.Fprintf(&b, "  Move: range %d cost %d  Gun: range %d damage %d cost %d  Sight: %d/%d\n",
		tank.MovementRange, tank.MovementCost, tank.GunRange, tank.GunDamage, tank.GunCost, tank.HighSight, tank.LowSight)
	if len(tank.Modules) > 0 {
		names := make([]string, 0, len(tank.Modules))
		for _, m := range tank.Modules {
			name := string(m.Kind)
			if m.Active {
				name += "*"
			}
			names = append(names, name)
		}
		fmt.Fprintf(&b, "  Modules: %s\n", strings.Join(names, ", "))
	}
	if tank.PendingCard != nil {
		fmt.Fprintf(&b, "  Event card: %s\n", tank.PendingCard.Description)
	}
	if tank.DailyMessage != "" {
		fmt.Fprintf(&b, "  Message: %s\n", tank.DailyMessage)
	}
	return b.String()
}

func describeAction(a engine.ActionRequest) string {
	var parts []string
	if len(a.Steps) > 0 {
		parts = append(parts, "steps "+strings.Join(a.Steps, ","))
	}
	if a.Direction != "" {
		parts = append(parts, "direction "+a.Direction)
	}
	if a.Upgrade != "" {
		parts = append(parts, "upgrade "+string(a.Upgrade))
	}
	if a.Module != "" {
		parts = append(parts, "module "+string(a.Module))
	}
	if a.Amount != 0 {
		parts = append(parts, fmt.Sprintf("amount %d", a.Amount))
	}
	if a.Target != nil {
		parts = append(parts, fmt.Sprintf("at (%d,%d,%d)", a.Target.X, a.Target.Y, a.Target.Level))
	}
	if a.TargetID != "" {
		parts = append(parts, "target "+string(a.TargetID))
	}
	if len(parts) == 0 {
		return ""
	}
	return ": " + strings.Join(parts, "; ")
}

func formatReport(report *engine.TurnReport) string {
	if report == nil {
		return "No report.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Turn %d resolved (%s -> %s)\n\n", report.Turn, report.Day, report.NextDay)

	if len(report.Results) == 0 {
		b.WriteString("No actions were queued.\n")
	}
	for _, r := range report.Results {
		actor := r.ActorName
		if actor == "" {
			actor = string(r.ActorID)
		}
		status := "ok"
		if !r.Success {
			status = "FAILED: " + r.Error
		}
		fmt.Fprintf(&b, "%d. %s %s (precedence %d) %s\n", r.Order, actor, r.Action, r.Precedence, status)
	}

	for _, p := range report.Promotions {
		killer := p.KillerName
		if killer == "" {
			killer = "the board"
		}
		fmt.Fprintf(&b, "\n☠ %s was destroyed by %s (essence %d)\n", p.Name, killer, p.Essence)
	}

	for _, c := range report.CardsDrawn {
		fmt.Fprintf(&b, "\n🃏 %s drew %s for %d\n", c.Name, c.Card, c.Bid)
	}

	if len(report.Notes) > 0 {
		b.WriteString("\nNotes:\n")
		for _, n := range report.Notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}

	return b.String()
}

func formatCell(cell *service.CellView) string {
	var b strings.Builder
	p := cell.Position
	fmt.Fprintf(&b, "Cell (%d,%d,%d)\n", p.X, p.Y, p.Level)
	if !cell.InBounds {
		b.WriteString("Out of bounds: anything here is destroyed.\n")
		return b.String()
	}
	if cell.Solid {
		b.WriteString("Blocked: a solid entity occupies this cell.\n")
	} else {
		b.WriteString("Open: tanks can enter this cell.\n")
	}
	if len(cell.Summary) == 0 {
		b.WriteString("Empty.\n")
	}
	for _, s := range cell.Summary {
		fmt.Fprintf(&b, "- %s\n", s)
	}
	return b.String()
}

func formatPrices(sheet *engine.PriceSheet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Prices for %s\n", sheet.Day)
	if sheet.TuesdayRule {
		b.WriteString("Tuesday discount in effect\n")
	}

	b.WriteString("\nUpgrades:\n")
	kinds := make([]string, 0, len(sheet.Upgrades))
	for k := range sheet.Upgrades {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		kind := engine.UpgradeKind(k)
		line := fmt.Sprintf("- %s: %d", k, sheet.Upgrades[kind])
		if available, ok := sheet.Available[kind]; ok && !available {
			line += " (maxed)"
		}
		b.WriteString(line + "\n")
	}

	if sheet.ModuleOffer != "" {
		fmt.Fprintf(&b, "\nModule on offer: %s for %d\n", sheet.ModuleOffer, sheet.OfferPrice)
	}

	if len(sheet.Resale) > 0 {
		b.WriteString("\nResale:\n")
		mods := make([]string, 0, len(sheet.Resale))
		for m := range sheet.Resale {
			mods = append(mods, string(m))
		}
		sort.Strings(mods)
		for _, m := range mods {
			fmt.Fprintf(&b, "- %s: %d\n", m, sheet.Resale[engine.ModuleKind(m)])
		}
	}

	if len(sheet.Construction) > 0 {
		b.WriteString("\nConstruction:\n")
		builds := make([]string, 0, len(sheet.Construction))
		for k := range sheet.Construction {
			builds = append(builds, string(k))
		}
		sort.Strings(builds)
		for _, k := range builds {
			fmt.Fprintf(&b, "- %s: %d\n", k, sheet.Construction[engine.Kind(k)])
		}
	}

	return b.String()
}
