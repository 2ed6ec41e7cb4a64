// internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/ThinkInAIXYZ/go-mcp/server"

	"github.com/Watson-W722/cat-feeding-app/internal/ledger"
	"github.com/Watson-W722/cat-feeding-app/internal/models"
)

const defaultSessionID = "default"

// SessionParams identify the meal being edited. Empty fields fall back to
// today, the current time and the next unrecorded meal.
type SessionParams struct {
	SessionID  string  `json:"session_id,omitempty" description:"Cart owner; defaults to a shared cart"`
	Pet        string  `json:"pet,omitempty" description:"Pet name (defaults to the configured pet)"`
	Date       string  `json:"date,omitempty" description:"Meal date (YYYY/MM/DD or YYYY-MM-DD), defaults to today"`
	Time       string  `json:"time,omitempty" description:"Meal time (HH:MM), defaults to now"`
	Meal       string  `json:"meal,omitempty" description:"Meal name, defaults to the next unrecorded meal"`
	BowlWeight float64 `json:"bowl_weight,omitempty" description:"Empty bowl weight in grams"`
}

type ListItemsParams struct {
	Category string `json:"category,omitempty" description:"Only items with this category label"`
}

type AddItemParams struct {
	SessionParams
	Item   string  `json:"item" description:"Catalog item id or name"`
	Raw    float64 `json:"raw" description:"Scale reading, or unit count for count items"`
	Zeroed bool    `json:"zeroed,omitempty" description:"Scale was tared before weighing this item"`
}

type CartParams struct {
	SessionID string `json:"session_id,omitempty" description:"Cart owner; defaults to a shared cart"`
}

type RemoveCartItemParams struct {
	CartParams
	Index int `json:"index" description:"Zero-based cart position"`
}

type CommitCartParams struct {
	CartParams
	Time string `json:"time,omitempty" description:"Override the meal time (HH:MM)"`
}

type ScopeParams struct {
	Pet  string `json:"pet,omitempty" description:"Pet name (defaults to the configured pet)"`
	Date string `json:"date,omitempty" description:"Meal date, defaults to today"`
	Meal string `json:"meal" description:"Meal name"`
}

type FinishMealParams struct {
	ScopeParams
	Outcome    string  `json:"outcome" description:"all_consumed or has_leftover"`
	Gross      float64 `json:"gross,omitempty" description:"Container plus leftover weight"`
	Tare       float64 `json:"tare,omitempty" description:"Empty container weight"`
	BowlWeight float64 `json:"bowl_weight,omitempty" description:"Empty bowl weight in grams"`
	FinishedAt string  `json:"finished_at,omitempty" description:"RFC3339 finish time, defaults to now"`
}

type EstimateWasteParams struct {
	ScopeParams
	Gross float64 `json:"gross" description:"Container plus leftover weight"`
	Tare  float64 `json:"tare" description:"Empty container weight"`
}

type DayParams struct {
	Pet  string `json:"pet,omitempty" description:"Pet name (defaults to the configured pet)"`
	Date string `json:"date,omitempty" description:"Day, defaults to today"`
}

type TrendParams struct {
	Pet  string `json:"pet,omitempty" description:"Pet name (defaults to the configured pet)"`
	From string `json:"from,omitempty" description:"First day, defaults to six days before to"`
	To   string `json:"to,omitempty" description:"Last day, defaults to today"`
}

type PetParams struct {
	Pet string `json:"pet,omitempty" description:"Pet name (defaults to the configured pet)"`
}

// cartState is a cart together with the session its drafts belong to.
type cartState struct {
	cart    ledger.Cart
	session models.Session
}

type cartView struct {
	SessionID string            `json:"session_id"`
	Session   *models.Session   `json:"session,omitempty"`
	Items     []models.LogEntry `json:"items"`
	Totals    ledger.CartTotals `json:"totals"`
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal arguments: %v", errInvalidParams, err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}

	return nil
}

func invalidParams(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errInvalidParams, fmt.Sprintf(format, args...))
}

func (s *FeedingLogServer) today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

// parseDate accepts YYYY/MM/DD and YYYY-MM-DD; empty means today.
func (s *FeedingLogServer) parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return s.today(), nil
	}
	for _, layout := range []string{models.DateLayout, time.DateOnly} {
		if t, err := time.ParseInLocation(layout, value, s.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, invalidParams("date %q is not YYYY/MM/DD", value)
}

func (s *FeedingLogServer) resolveSession(ctx context.Context, p SessionParams) (models.Session, error) {
	date, err := s.parseDate(p.Date)
	if err != nil {
		return models.Session{}, err
	}
	clock := strings.TrimSpace(p.Time)
	if clock == "" {
		clock = s.now().In(s.loc).Format("15:04")
	}
	if _, err := models.ParseClock(clock); err != nil {
		return models.Session{}, invalidParams("time %q is not HH:MM", clock)
	}
	if p.BowlWeight < 0 {
		return models.Session{}, invalidParams("bowl weight must not be negative")
	}

	meal := strings.TrimSpace(p.Meal)
	if meal == "" {
		if meal, err = s.engine.NextMealName(ctx, p.Pet, date); err != nil {
			return models.Session{}, err
		}
	}
	return models.Session{
		Pet:        strings.TrimSpace(p.Pet),
		Date:       date,
		Time:       clock,
		Meal:       meal,
		BowlWeight: p.BowlWeight,
	}, nil
}

func (s *FeedingLogServer) resolveScope(p ScopeParams) (models.MealScope, error) {
	date, err := s.parseDate(p.Date)
	if err != nil {
		return models.MealScope{}, err
	}
	meal := strings.TrimSpace(p.Meal)
	if meal == "" {
		return models.MealScope{}, invalidParams("meal is required")
	}
	return models.MealScope{Date: date.Format(models.DateLayout), Meal: meal, Pet: strings.TrimSpace(p.Pet)}, nil
}

func sessionID(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return defaultSessionID
}

// cartLocked returns the cart of a session id. Callers hold s.mu.
func (s *FeedingLogServer) cartLocked(id string) *cartState {
	st, ok := s.carts[id]
	if !ok {
		st = &cartState{}
		s.carts[id] = st
	}
	return st
}

func (s *FeedingLogServer) viewLocked(id string) cartView {
	view := cartView{SessionID: id, Items: []models.LogEntry{}}
	if st, ok := s.carts[id]; ok && st.cart.Len() > 0 {
		session := st.session
		view.Session = &session
		view.Items = st.cart.Items()
		view.Totals = st.cart.Totals()
	}
	return view
}

func (s *FeedingLogServer) handleListItems(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ListItemsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	items, err := s.engine.Items(ctx)
	if err != nil {
		return nil, err
	}
	if category := strings.TrimSpace(params.Category); category != "" {
		filtered := make([]models.ItemDefinition, 0, len(items))
		for _, it := range items {
			if it.Category.Label == category {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}

	return s.createJSONResponse(items)
}

// sessionConflict rejects a draft naming a pet, date or meal other than the
// one the cart was opened for. Empty fields mean "same as the cart".
func (s *FeedingLogServer) sessionConflict(session models.Session, p SessionParams) error {
	if pet := strings.TrimSpace(p.Pet); pet != "" && pet != s.petOf(session) {
		return invalidParams("cart holds items for pet %s; commit or reset it first", s.petOf(session))
	}
	if strings.TrimSpace(p.Date) != "" {
		date, err := s.parseDate(p.Date)
		if err != nil {
			return err
		}
		if !date.Equal(session.Date) {
			return invalidParams("cart holds items for %s; commit or reset it first", session.Date.Format(models.DateLayout))
		}
	}
	if meal := strings.TrimSpace(p.Meal); meal != "" && meal != session.Meal {
		return invalidParams("cart holds items for %s; commit or reset it first", session.Meal)
	}
	return nil
}

func (s *FeedingLogServer) petOf(session models.Session) string {
	if session.Pet == "" {
		return s.engine.DefaultPet()
	}
	return session.Pet
}

// handleAddItem puts a draft in the session's cart. The first draft fixes
// the cart's pet, date and meal; later drafts must not name different ones.
func (s *FeedingLogServer) handleAddItem(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params AddItemParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Item) == "" {
		return nil, invalidParams("item is required")
	}

	id := sessionID(params.SessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.cartLocked(id)
	session := st.session
	if st.cart.Len() == 0 {
		var err error
		if session, err = s.resolveSession(ctx, params.SessionParams); err != nil {
			return nil, err
		}
	} else if err := s.sessionConflict(session, params.SessionParams); err != nil {
		return nil, err
	}

	res, err := s.engine.AddItem(ctx, session, &st.cart, ledger.AddItemInput{
		Item:   params.Item,
		Raw:    params.Raw,
		Zeroed: params.Zeroed,
	})
	if err != nil {
		return nil, err
	}
	st.session = session

	result := map[string]interface{}{
		"entry":    res.Entry,
		"baseline": res.Baseline,
		"cart":     s.viewLocked(id),
	}
	if res.Density != nil {
		result["density"] = res.Density
	}
	if res.Warning != nil {
		result["warning"] = res.Warning.Error()
	}
	return s.createJSONResponse(result)
}

func (s *FeedingLogServer) handleRemoveCartItem(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params RemoveCartItemParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	id := sessionID(params.SessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.cartLocked(id).cart.Remove(params.Index)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(map[string]interface{}{
		"removed": removed,
		"cart":    s.viewLocked(id),
	})
}

func (s *FeedingLogServer) handleViewCart(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params CartParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createJSONResponse(s.viewLocked(sessionID(params.SessionID)))
}

func (s *FeedingLogServer) handleCommitCart(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params CommitCartParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	id := sessionID(params.SessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.cartLocked(id)
	session := st.session
	if clock := strings.TrimSpace(params.Time); clock != "" {
		if _, err := models.ParseClock(clock); err != nil {
			return nil, invalidParams("time %q is not HH:MM", clock)
		}
		session.Time = clock
	}

	committed, err := s.engine.Commit(ctx, session, &st.cart)
	if err != nil {
		return nil, err
	}
	delete(s.carts, id)

	return s.createJSONResponse(map[string]interface{}{
		"committed": committed,
		"count":     len(committed),
	})
}

func (s *FeedingLogServer) handleResetCart(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params CartParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	id := sessionID(params.SessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	if st, ok := s.carts[id]; ok {
		removed = st.cart.Len()
		delete(s.carts, id)
	}
	return s.createJSONResponse(map[string]interface{}{"removed": removed})
}

func parseOutcome(value string) (ledger.Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "all_consumed", "finished":
		return ledger.AllConsumed, nil
	case "has_leftover", "leftover":
		return ledger.HasLeftover, nil
	}
	return 0, invalidParams("outcome %q is not all_consumed or has_leftover", value)
}

func (s *FeedingLogServer) handleFinishMeal(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params FinishMealParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	scope, err := s.resolveScope(params.ScopeParams)
	if err != nil {
		return nil, err
	}
	outcome, err := parseOutcome(params.Outcome)
	if err != nil {
		return nil, err
	}
	finishedAt := s.now().In(s.loc)
	if params.FinishedAt != "" {
		if finishedAt, err = time.Parse(time.RFC3339, params.FinishedAt); err != nil {
			return nil, invalidParams("finished_at: %v", err)
		}
		finishedAt = finishedAt.In(s.loc)
	}

	entry, err := s.engine.FinishMeal(ctx, ledger.FinishInput{
		Scope:      scope,
		Outcome:    outcome,
		Gross:      params.Gross,
		Tare:       params.Tare,
		BowlWeight: params.BowlWeight,
		FinishedAt: finishedAt,
	})
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(entry)
}

func (s *FeedingLogServer) handleEstimateWaste(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params EstimateWasteParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	scope, err := s.resolveScope(params.ScopeParams)
	if err != nil {
		return nil, err
	}
	wasteNet := params.Gross - params.Tare
	if !(wasteNet > 0) {
		return nil, fmt.Errorf("%w: gross %.1f, tare %.1f", ledger.ErrInvalidWaste, params.Gross, params.Tare)
	}

	calorie, err := s.engine.EstimateWaste(ctx, scope, wasteNet)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(map[string]interface{}{
		"waste_net":     wasteNet,
		"waste_calorie": calorie,
	})
}

func (s *FeedingLogServer) handleGetMealSummary(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ScopeParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	scope, err := s.resolveScope(params)
	if err != nil {
		return nil, err
	}
	report, err := s.engine.MealSummary(ctx, scope)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(report)
}

func (s *FeedingLogServer) handleGetDaySummary(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params DayParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	day, err := s.parseDate(params.Date)
	if err != nil {
		return nil, err
	}
	report, err := s.engine.DaySummary(ctx, params.Pet, day)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(report)
}

func (s *FeedingLogServer) handleGetTrend(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params TrendParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	to, err := s.parseDate(params.To)
	if err != nil {
		return nil, err
	}
	from := to.AddDate(0, 0, -6)
	if params.From != "" {
		if from, err = s.parseDate(params.From); err != nil {
			return nil, err
		}
	}
	if from.After(to) {
		return nil, invalidParams("from %s is after to %s", from.Format(models.DateLayout), to.Format(models.DateLayout))
	}

	trend, err := s.engine.Trend(ctx, params.Pet, from, to)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(trend)
}

func (s *FeedingLogServer) handleGetLeftoverDensity(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params PetParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	density, err := s.engine.ResolveLeftoverDensity(ctx, params.Pet)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(density)
}

type toolDef struct {
	name        string
	description string
	params      interface{}
	handler     toolHandler
}

func (s *FeedingLogServer) toolDefs() []toolDef {
	return []toolDef{
		{"list_items", "List catalog items, optionally by category", ListItemsParams{}, s.handleListItems},
		{"add_item", "Weigh an item into the session's cart", AddItemParams{}, s.handleAddItem},
		{"remove_cart_item", "Drop a draft from the cart", RemoveCartItemParams{}, s.handleRemoveCartItem},
		{"view_cart", "Show the cart's drafts and totals", CartParams{}, s.handleViewCart},
		{"commit_cart", "Write the cart's drafts to the ledger", CommitCartParams{}, s.handleCommitCart},
		{"reset_cart", "Discard the cart", CartParams{}, s.handleResetCart},
		{"finish_meal", "Record that a meal is finished, with or without leftovers", FinishMealParams{}, s.handleFinishMeal},
		{"estimate_waste", "Preview the calories a leftover would deduct", EstimateWasteParams{}, s.handleEstimateWaste},
		{"get_meal_summary", "Totals and entries of one meal", ScopeParams{}, s.handleGetMealSummary},
		{"get_day_summary", "Totals, tallies and meal statuses of one day", DayParams{}, s.handleGetDaySummary},
		{"get_trend", "Daily totals over a date range", TrendParams{}, s.handleGetTrend},
		{"get_leftover_density", "Nutrient density of the latest leftover", PetParams{}, s.handleGetLeftoverDensity},
	}
}

// registerTools fills the table used by plain HTTP calls and registers the
// same handlers with the MCP server.
func (s *FeedingLogServer) registerTools() {
	s.tools = make(map[string]toolHandler)
	for _, def := range s.toolDefs() {
		s.tools[def.name] = def.handler
		s.server.RegisterTool(&protocol.Tool{
			Name:        def.name,
			Description: def.description,
			InputSchema: inputSchema(def.params),
		}, s.mcpHandler(def.name, def.handler))
		s.logger.Debug("registered tool", "tool", def.name)
	}
}

// mcpHandler adapts a tool handler to go-mcp. Tool failures are reported
// as error results rather than JSON-RPC errors so clients see the message.
func (s *FeedingLogServer) mcpHandler(name string, h toolHandler) server.ToolHandlerFunc {
	return func(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
		ctx := context.Background()
		start := time.Now()
		result, err := h(ctx, req)
		if err != nil {
			s.logger.WarnContext(ctx, "mcp tool call failed",
				"tool", name, "duration_ms", time.Since(start).Milliseconds(), "error", err)
			return &protocol.CallToolResult{
				Content: []protocol.Content{protocol.TextContent{Type: "text", Text: err.Error()}},
				IsError: true,
			}, nil
		}
		s.logger.DebugContext(ctx, "mcp tool call", "tool", name, "duration_ms", time.Since(start).Milliseconds())
		return result, nil
	}
}
