// Physicsbox Physics Review Game
//
// Two teams race along a shared 38-square track. Each turn a team plays cards
// from one of four categories: naming symbols and SI units, drawing a
// concept, short-answer questions, or describing a concept without its
// forbidden words. A correct answer moves the team one square forward; in
// the taboo category, saying a forbidden word moves it one square back.
//
// Features:
// - WebSockets per game ID: /path/:gameid and /path/:gameid/ws
// - All connected screens share one session (classroom projector + phones)
// - Category picker, then team registration on first use
// - Server-side round countdown (30s symbols, 120s drawing, 60s otherwise)
// - Board and per-category scores cached in the configured storage backend
// - Drawing strokes relayed live to every screen during drawing rounds
// - Per-client action rate limiting
// - Games auto-reaped after configurable idle timeout
// - Random 8-char game IDs via crypto/rand, with server-side collision check
// - In-browser QR button to share the current session, backed by go-qrcode

package main

import (
	"context"
	"crypto/rand"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"golang.org/x/time/rate"

	"github.com/Seednode/physicsbox/games/physics"
	"github.com/Seednode/physicsbox/storage"
)

const (
	screenHome         = "home"
	screenRegistration = "registration"
	screenGame         = "game"

	maxStrokes = 20000
)

// Stroke is one point of a free-hand drawing, in canvas-relative units (0-1).
type Stroke struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Start bool    `json:"start,omitempty"`
}

// Messages coming from clients
type ClientMessage struct {
	Type     string             `json:"type"`               // see handleAction
	Category physics.CategoryID `json:"category,omitempty"` // select_category / change_category
	Teams    *physics.Teams     `json:"teams,omitempty"`    // register
	Stroke   *Stroke            `json:"stroke,omitempty"`   // draw
}

// CategoryInfo adds the deck size to the category metadata.
type CategoryInfo struct {
	physics.Category
	Cards int `json:"cards"`
}

// StateMessage is broadcast after every change.
type StateMessage struct {
	Type            string            `json:"type"` // "state"
	GameID          string            `json:"game_id"`
	Screen          string            `json:"screen"`
	Categories      []CategoryInfo    `json:"categories"`
	WinningPosition int               `json:"winning_position"`
	Session         *physics.Session  `json:"session,omitempty"`
	Card            *physics.CardView `json:"card,omitempty"`
	TeamNames       [2]string         `json:"team_names"`
	Progress        [2]float64        `json:"progress"`
	TimeProgress    float64           `json:"time_progress"`
	Clock           string            `json:"clock,omitempty"`
	Winner          int               `json:"winner,omitempty"`
	WinnerName      string            `json:"winner_name,omitempty"`
}

// DrawMessage carries strokes for the current canvas epoch.
type DrawMessage struct {
	Type    string   `json:"type"` // "draw"
	Epoch   int      `json:"epoch"`
	Strokes []Stroke `json:"strokes"`
}

// SimpleMessage is for generic notifications ("time_up", "error")
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
	limiter  *rate.Limiter
}

type actionRequest struct {
	client *Client
	msg    ClientMessage
}

type Hub struct {
	id  string
	cfg *Config

	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	actions  chan actionRequest
	quit     chan struct{}
	stopOnce sync.Once

	mu sync.RWMutex

	createdAt  time.Time
	lastActive time.Time

	storage  physics.Storage
	decks    physics.Decks
	tickRate time.Duration

	// Owned by run.
	screen   string
	category physics.CategoryID
	game     *physics.Engine
	strokes  []Stroke
	epoch    int
}

func newHub(cfg *Config, gameID string, store physics.Storage, decks physics.Decks, tickRate time.Duration) *Hub {
	now := time.Now()
	return &Hub{
		id:         gameID,
		cfg:        cfg,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		actions:    make(chan actionRequest),
		quit:       make(chan struct{}),
		createdAt:  now,
		lastActive: now,
		storage:    store,
		decks:      decks,
		tickRate:   tickRate,
		screen:     screenHome,
		category:   physics.Symbols,
	}
}

func (h *Hub) run() {
	var (
		ticker *time.Ticker
		tick   <-chan time.Time
	)

	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.lastActive = time.Now()
			h.clients[c] = true
			h.mu.Unlock()

			h.deliver(c, h.stateMessage())
			if len(h.strokes) > 0 {
				h.deliver(c, DrawMessage{Type: "draw", Epoch: h.epoch, Strokes: append([]Stroke(nil), h.strokes...)})
			}

		case c := <-h.unreg:
			h.mu.Lock()
			h.lastActive = time.Now()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case ar := <-h.actions:
			h.mu.Lock()
			h.lastActive = time.Now()
			h.mu.Unlock()

			h.handleAction(ar)

		case <-tick:
			if h.game.Tick() {
				snap := h.game.Snapshot()
				logf(h.cfg, "GAMES: Time is up for %q in %s", h.teamName(snap.ActiveTeam), h.id)

				h.broadcast(SimpleMessage{Type: "time_up", Message: "Süre doldu!"})
			}
			h.broadcast(h.stateMessage())

		case <-h.quit:
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				_ = c.conn.Close()
				delete(h.clients, c)
			}
			h.mu.Unlock()

			return
		}

		// Only a playing round keeps a tick source; anything else discards it.
		running := h.game != nil && h.game.Ticking()
		switch {
		case running && ticker == nil:
			ticker = time.NewTicker(h.tickRate)
			tick = ticker.C
		case !running && ticker != nil:
			ticker.Stop()
			ticker, tick = nil, nil
		}
	}
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// deliver sends to one client, dropping it if its buffer is full.
func (h *Hub) deliver(c *Client, msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[c] {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) broadcast(msg any) {
	h.broadcastExcept(nil, msg)
}

func (h *Hub) broadcastExcept(skip *Client, msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if client == skip {
			continue
		}

		select {
		case client.send <- msg:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

func (h *Hub) teamName(n int) string {
	if h.game == nil {
		return physics.Teams{}.Name(n)
	}
	return h.game.Snapshot().Teams.Name(n)
}

func (h *Hub) categoryInfo() []CategoryInfo {
	counts := h.decks.Counts()

	cats := physics.Categories()
	out := make([]CategoryInfo, 0, len(cats))
	for _, c := range cats {
		out = append(out, CategoryInfo{Category: c, Cards: counts[c.ID]})
	}
	return out
}

func (h *Hub) stateMessage() StateMessage {
	msg := StateMessage{
		Type:            "state",
		GameID:          h.id,
		Screen:          h.screen,
		Categories:      h.categoryInfo(),
		WinningPosition: physics.WinningPosition,
	}

	if h.game == nil {
		msg.TeamNames = [2]string{h.teamName(1), h.teamName(2)}
		return msg
	}

	snap := h.game.Snapshot()
	msg.Session = &snap
	msg.TeamNames = [2]string{snap.Teams.Name(1), snap.Teams.Name(2)}
	msg.Progress = [2]float64{
		physics.Progress(snap.Board.Team1Position),
		physics.Progress(snap.Board.Team2Position),
	}
	msg.TimeProgress = snap.TimeProgress()
	msg.Clock = clock(snap.Remaining)

	if card, ok := h.game.Card(); ok {
		view := card.View()
		msg.Card = &view
	}

	if winner, ok := h.game.Winner(); ok {
		msg.Winner = winner
		msg.WinnerName = snap.Teams.Name(winner)
	}

	return msg
}

func (h *Hub) reject(c *Client, text string) {
	h.deliver(c, SimpleMessage{Type: "error", Message: text})
}

func (h *Hub) newEngine(teams physics.Teams) (*physics.Engine, error) {
	return physics.New(context.Background(), physics.Options{
		Storage:  h.storage,
		Decks:    h.decks,
		Category: h.category,
		Teams:    teams,
		Logf: func(format string, args ...any) {
			logf(h.cfg, "%s | "+format, append([]any{h.id}, args...)...)
		},
	})
}

// handleAction applies one client message. It runs only on the hub goroutine.
func (h *Hub) handleAction(ar actionRequest) {
	c, msg := ar.client, ar.msg

	switch msg.Type {
	case "select_category":
		if _, err := physics.Lookup(msg.Category); err != nil {
			h.reject(c, "Bilinmeyen kategori.")
			return
		}

		h.category = msg.Category
		if h.game == nil {
			h.screen = screenRegistration
			break
		}

		_ = h.game.ChangeCategory(msg.Category)
		h.screen = screenGame

	case "register":
		// Teams are fixed for the life of a session; new_teams discards them.
		if h.game != nil || h.screen != screenRegistration {
			return
		}

		if msg.Teams == nil {
			h.reject(c, "Takım bilgisi eksik.")
			return
		}

		if err := physics.ValidateTeams(*msg.Teams); err != nil {
			h.reject(c, "Her iki takımın da adı ve en az bir oyuncusu olmalı.")
			return
		}

		game, err := h.newEngine(*msg.Teams)
		if err != nil {
			log.Printf("%s | ERROR: creating session for %s: %v", time.Now().Format(logDate), h.id, err)
			h.reject(c, "Oyun başlatılamadı.")
			return
		}

		h.game = game
		h.screen = screenGame
		logf(h.cfg, "GAMES: Teams %q and %q registered in %s", h.teamName(1), h.teamName(2), h.id)

	case "draw":
		h.handleDraw(c, msg.Stroke)
		return

	default:
		if h.game == nil || h.screen != screenGame {
			return
		}
		if !h.applyGameAction(c, msg) {
			return
		}
	}

	h.syncCanvas()
	h.broadcast(h.stateMessage())
}

// applyGameAction forwards in-game actions to the engine. It reports false
// for messages that changed nothing worth broadcasting.
func (h *Hub) applyGameAction(c *Client, msg ClientMessage) bool {
	g := h.game

	switch msg.Type {
	case "start":
		g.Start()
	case "pause":
		g.Pause()
	case "correct":
		g.Correct()
		if winner, ok := g.Winner(); ok {
			logf(h.cfg, "GAMES: %q won %s", h.teamName(winner), h.id)
		}
	case "wrong":
		g.Wrong()
	case "skip":
		g.Skip()
	case "switch_team":
		g.SwitchTeam()
	case "change_category":
		if err := g.ChangeCategory(msg.Category); err != nil {
			h.reject(c, "Bilinmeyen kategori.")
			return false
		}
		h.category = msg.Category
	case "reset":
		g.Reset()
		logf(h.cfg, "GAMES: Reset %s", h.id)
	case "back":
		g.Back()
		h.screen = screenHome
	case "new_teams":
		g.Reset()
		h.game = nil
		h.screen = screenHome
		h.strokes = nil
		logf(h.cfg, "GAMES: Discarded teams in %s", h.id)
	default:
		return false
	}

	return true
}

// syncCanvas drops stored strokes once the session has cleared its canvas.
func (h *Hub) syncCanvas() {
	if h.game == nil {
		return
	}

	if epoch := h.game.Snapshot().CanvasEpoch; epoch != h.epoch {
		h.epoch = epoch
		h.strokes = nil
	}
}

func (h *Hub) handleDraw(c *Client, s *Stroke) {
	if s == nil || h.game == nil {
		return
	}

	snap := h.game.Snapshot()
	if snap.Category != physics.Drawing || snap.Phase != physics.PhasePlaying {
		return
	}

	h.syncCanvas()

	if len(h.strokes) >= maxStrokes {
		return
	}

	p := Stroke{
		X:     min(max(s.X, 0), 1),
		Y:     min(max(s.Y, 0), 1),
		Start: s.Start,
	}
	h.strokes = append(h.strokes, p)

	h.broadcastExcept(c, DrawMessage{Type: "draw", Epoch: h.epoch, Strokes: []Stroke{p}})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const playerCookieName = "physicsbox_id"

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// GameManager holds a set of hubs keyed by game ID, so each $path/$gameid
// is its own isolated session.
type GameManager struct {
	cfg         *Config
	mu          sync.Mutex
	hubs        map[string]*Hub
	idleTimeout time.Duration
	tickRate    time.Duration
	storage     storage.KV
	decks       physics.Decks
	done        chan struct{}
	stopOnce    sync.Once
}

func newGameManager(cfg *Config, kv storage.KV, decks physics.Decks) *GameManager {
	gm := &GameManager{
		cfg:         cfg,
		hubs:        make(map[string]*Hub),
		idleTimeout: cfg.sessionTimeout,
		tickRate:    time.Second,
		storage:     kv,
		decks:       decks,
		done:        make(chan struct{}),
	}
	if gm.idleTimeout > 0 {
		go gm.reaperLoop()
	}
	return gm
}

func (gm *GameManager) getHub(gameID string) *Hub {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if hub, ok := gm.hubs[gameID]; ok {
		return hub
	}

	hub := newHub(gm.cfg, gameID, storage.Namespace(gm.storage, "physics:"+gameID+":"), gm.decks, gm.tickRate)
	gm.hubs[gameID] = hub
	go hub.run()
	return hub
}

// newGameID generates a crypto-random game ID and ensures it doesn't
// collide with existing games.
func (gm *GameManager) newGameID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	for {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, 8)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(out)

		gm.mu.Lock()
		_, exists := gm.hubs[id]
		gm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reaperLoop periodically removes hubs that have been idle longer than idleTimeout.
func (gm *GameManager) reaperLoop() {
	ticker := time.NewTicker(gm.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-gm.done:
			return
		case <-ticker.C:
		}

		cutoff := time.Now().Add(-gm.idleTimeout)

		gm.mu.Lock()
		for id, hub := range gm.hubs {
			hub.mu.RLock()
			last := hub.lastActive
			hub.mu.RUnlock()

			if last.Before(cutoff) {
				delete(gm.hubs, id)
				hub.stop()
				logf(gm.cfg, "GAMES: Reaped idle game %s", id)
			}
		}
		gm.mu.Unlock()
	}
}

// stop ends the reaper and every running hub.
func (gm *GameManager) stop() {
	gm.stopOnce.Do(func() { close(gm.done) })

	gm.mu.Lock()
	defer gm.mu.Unlock()

	for id, hub := range gm.hubs {
		delete(gm.hubs, id)
		hub.stop()
	}
}

// WebSocket handler that picks the hub based on :gameid
func serveWSForManager(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")
		if gameID == "" {
			http.Error(w, "missing game id", http.StatusBadRequest)
			return
		}

		playerID := getOrSetPlayerID(w, r)

		hub := gm.getHub(gameID)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: Websocket upgrade for %s failed: %v", realIP(r), err)
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, 64),
			playerID: playerID,
			limiter:  rate.NewLimiter(rate.Limit(cfg.actionRate), max(int(cfg.actionRate), 1)*2),
		}

		select {
		case hub.register <- client:
		case <-hub.quit:
			_ = conn.Close()
			return
		}

		logf(cfg, "GAMES: %s connected to %s", realIP(r), gameID)

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.quit:
		}
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		// Strokes arrive at pointer-move rate; only deliberate actions are limited.
		if msg.Type != "draw" && !c.limiter.Allow() {
			continue
		}

		select {
		case h.actions <- actionRequest{client: c, msg: msg}:
		case <-h.quit:
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for the current game URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID := ps.ByName("gameid")
	if gameID == "" {
		http.Error(w, "missing game id", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:gameid/qr; strip trailing "/qr" to get the game URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func getIndexHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		data, err := assets.ReadFile("assets/physics/index.html")
		if err != nil {
			http.Error(w, "client unavailable", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		securityHeaders(cfg, w)

		_ = getOrSetPlayerID(w, r)

		_, _ = w.Write(data)
	}
}

// redirectNewGame handles GET /path by generating a new random game ID
// (with server-side collision detection) and redirecting to /path/:gameid.
func redirectNewGame(cfg *Config, path string, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gameID := gm.newGameID()
		logf(cfg, "GAMES: Created game %s/%s", path, gameID)
		http.Redirect(w, r, cfg.prefix+path+"/"+gameID, http.StatusTemporaryRedirect)
	}
}

// registerPhysicsGame sets up routes so that:
//   - $path                  → redirects to new random game (8-char ID)
//   - $path/:gameid          → HTML client
//   - $path/:gameid/ws       → WebSocket for that game
//   - $path/:gameid/qr       → PNG QR code for that game URL
func registerPhysicsGame(cfg *Config, path string, mux *httprouter.Router, gm *GameManager) {
	mux.GET(cfg.prefix+path, redirectNewGame(cfg, path, gm))

	mux.GET(cfg.prefix+path+"/:gameid", getIndexHandler(cfg))

	mux.GET(cfg.prefix+path+"/:gameid/ws", serveWSForManager(cfg, gm))

	mux.GET(cfg.prefix+path+"/:gameid/qr", qrHandler)
}
