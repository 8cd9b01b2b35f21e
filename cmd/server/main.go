package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"

	"wordduel/internal/cards"
	"wordduel/internal/config"
	"wordduel/internal/game"
	"wordduel/internal/genai"
	"wordduel/internal/match"
	"wordduel/internal/models"
	"wordduel/internal/stats"
)

// Build metadata injected via -ldflags at build time
var (
	buildVersion = "dev"
	buildTime    = ""
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type server struct {
	cfg   config.Config
	match *match.Matchmaker
}

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	client := genai.NewClient(genai.Config{
		BaseURL: cfg.GenAIBaseURL,
		APIKey:  cfg.GenAIAPIKey,
		Model:   cfg.GenAIModel,
	})
	if !client.Enabled() {
		log.Printf("genai: no api key configured — all cards resolve through fallbacks")
	}
	gen := cards.NewGenerator(client, cfg.GenTimeout)
	s := &server{
		cfg: cfg,
		match: match.New(gen, match.Settings{
			StartingHealth:  cfg.StartingHealth,
			StartingStamina: cfg.StartingStamina,
			StartingMagic:   cfg.StartingMagic,
		}),
	}

	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleWS)
	r.HandleFunc("/lobby", s.handleLobby).Methods(http.MethodGet)
	r.HandleFunc("/leaderboard/daily", handleLeaderboardDaily).Methods(http.MethodGet)
	r.HandleFunc("/debug/rooms", s.handleDebugRooms).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"version": buildVersion,
			"time":    buildTime,
		})
	})

	addr := ":" + cfg.Port
	log.Printf("word duel server listening on %s (genai=%v)", addr, client.Enabled())
	log.Fatal(http.ListenAndServe(addr, r))
}

// ----------------- WebSocket per player -----------------

type clientIn struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		name = "Duelist"
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	player := &game.Player{ID: uuid.NewString(), Name: name}
	var writeMu sync.Mutex
	player.SetSend(func(m models.WsMsg) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(m); err != nil {
			log.Printf("ws: write error to %s: %v", player.ID, err)
		}
	})
	log.Printf("ws: connect id=%s name=%q from=%s", player.ID, name, r.RemoteAddr)
	player.Emit(models.WsMsg{Type: "you", Data: map[string]string{"id": player.ID}})
	go s.wsReader(player, conn)
}

func (s *server) wsReader(p *game.Player, conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
		p.SetSend(nil)
		log.Printf("ws: closed id=%s name=%q", p.ID, p.Name)
		s.match.RemovePlayer(p)
		if r := p.Room(); r != nil {
			r.HandleDisconnect(p)
		}
	}()
	for {
		var in clientIn
		if err := conn.ReadJSON(&in); err != nil {
			log.Printf("ws: read error id=%s: %v", p.ID, err)
			return
		}
		log.Printf("ws: recv id=%s type=%s", p.ID, in.Type)
		switch in.Type {
		case "queue":
			s.match.Enqueue(p)
			p.Emit(models.WsMsg{Type: "log", Data: "Looking for an opponent..."})
		case "create_room":
			var body struct {
				Password string `json:"password"`
			}
			_ = json.Unmarshal(in.Data, &body)
			if _, err := s.match.CreatePasswordRoom(p, body.Password); err != nil {
				sendError(p, err)
				break
			}
			p.Emit(models.WsMsg{Type: "log", Data: "Room created. Waiting for an opponent..."})
		case "join_room":
			var body struct {
				Password string `json:"password"`
			}
			_ = json.Unmarshal(in.Data, &body)
			if _, err := s.match.JoinPasswordRoom(p, body.Password); err != nil {
				sendError(p, err)
			}
		case "action":
			var body struct {
				Kind string `json:"kind"`
				Word string `json:"word"`
			}
			_ = json.Unmarshal(in.Data, &body)
			r := p.Room()
			if r == nil {
				sendError(p, game.ErrRoomNotActive)
				break
			}
			if err := r.SubmitAction(context.Background(), p, body.Kind, strings.TrimSpace(body.Word)); err != nil {
				sendError(p, err)
			}
		default:
			p.Emit(models.WsMsg{Type: "error", Data: map[string]string{
				"kind":    "bad_request",
				"message": fmt.Sprintf("unknown message type %q", in.Type),
			}})
		}
	}
}

// sendError surfaces a matchmaking or turn error to the originating
// connection only.
func sendError(p *game.Player, err error) {
	kind := "bad_request"
	switch {
	case errors.Is(err, match.ErrRoomExists):
		kind = "room_exists"
	case errors.Is(err, match.ErrRoomNotFound):
		kind = "room_not_found"
	case errors.Is(err, match.ErrRoomFull):
		kind = "room_full"
	case errors.Is(err, game.ErrNotYourTurn), errors.Is(err, game.ErrRoomNotActive), errors.Is(err, game.ErrActionPending):
		kind = "turn_error"
	}
	p.Emit(models.WsMsg{Type: "error", Data: map[string]string{
		"kind":    kind,
		"message": err.Error(),
	}})
}

// ----------------- HTTP views -----------------

func (s *server) handleLobby(w http.ResponseWriter, _ *http.Request) {
	type outEntry struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Status   string `json:"status"` // waiting | in-game
		Room     string `json:"room,omitempty"`
		Opponent string `json:"opponent,omitempty"`
		Since    int64  `json:"since,omitempty"`
	}
	out := make([]outEntry, 0, 16)
	for _, p := range s.match.Waiting() {
		out = append(out, outEntry{ID: p.ID, Name: p.Name, Status: "waiting", Since: p.QueuedAt.Unix()})
	}
	for _, r := range s.match.Rooms() {
		for _, seat := range []*game.Player{r.P1, r.P2} {
			if seat == nil {
				continue
			}
			opp := ""
			if o := r.Opponent(seat); o != nil {
				opp = o.Name
			}
			out = append(out, outEntry{ID: seat.ID, Name: seat.Name, Status: "in-game", Room: r.ID, Opponent: opp})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return out[i].Status < out[j].Status
		}
		return out[i].Name < out[j].Name
	})
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"players": out, "count": len(out)})
}

func handleLeaderboardDaily(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats.Today())
}

func (s *server) handleDebugRooms(w http.ResponseWriter, _ *http.Request) {
	rooms := s.match.Rooms()
	list := make([]map[string]interface{}, 0, len(rooms))
	for _, r := range rooms {
		list = append(list, r.Snapshot())
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"queueLen": len(s.match.Waiting()),
		"rooms":    list,
	})
}
