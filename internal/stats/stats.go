package stats

import (
	"sync"
	"time"
)

// In-memory daily duel records, reset whenever the UTC date rolls over.

// TopHit is the strongest single hit landed today.
type TopHit struct {
	Damage   int    `json:"damage"`
	Attacker string `json:"attacker"`
	Word     string `json:"word,omitempty"`
	Card     string `json:"card,omitempty"`
	Time     int64  `json:"time"`
}

// FastestWin is the shortest victory today, in resolved turns.
type FastestWin struct {
	Turns  int    `json:"turns"`
	Winner string `json:"winner"`
	Time   int64  `json:"time"`
}

// Daily is the summary served at /leaderboard/daily.
type Daily struct {
	Date       string     `json:"date"`
	TopHit     TopHit     `json:"top_hit"`
	FastestWin FastestWin `json:"fastest_win"`
}

var (
	statsMu sync.Mutex
	daily   = freshDaily()
)

func freshDaily() Daily {
	return Daily{
		Date:       time.Now().UTC().Format("2006-01-02"),
		TopHit:     TopHit{Damage: 0},
		FastestWin: FastestWin{Turns: 0},
	}
}

func rollover() {
	today := time.Now().UTC().Format("2006-01-02")
	if daily.Date != today {
		daily = freshDaily()
	}
}

// RecordHit updates the daily top hit if this one is stronger.
func RecordHit(damage int, attacker, word, card string) {
	if damage <= 0 {
		return
	}
	statsMu.Lock()
	defer statsMu.Unlock()
	rollover()
	if damage > daily.TopHit.Damage {
		daily.TopHit = TopHit{Damage: damage, Attacker: attacker, Word: word, Card: card, Time: time.Now().Unix()}
	}
}

// RecordWin updates the daily fastest win if this one is shorter.
func RecordWin(turns int, winner string) {
	if turns <= 0 {
		return
	}
	statsMu.Lock()
	defer statsMu.Unlock()
	rollover()
	if daily.FastestWin.Turns == 0 || turns < daily.FastestWin.Turns {
		daily.FastestWin = FastestWin{Turns: turns, Winner: winner, Time: time.Now().Unix()}
	}
}

// Today returns the current daily summary.
func Today() Daily {
	statsMu.Lock()
	defer statsMu.Unlock()
	rollover()
	return daily
}

// ResetDaily clears today's records. Intended for tests and dev convenience.
func ResetDaily() {
	statsMu.Lock()
	defer statsMu.Unlock()
	daily = freshDaily()
}
