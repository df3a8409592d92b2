package protocol

import (
	"bufio"
	"encoding/json"
	"io"
	"log"

	"github.com/tetriscore/core/internal/board"
	"github.com/tetriscore/core/internal/harness"
	"github.com/tetriscore/core/internal/tstate"
)

// pendingStart holds a "start" message's board/combo/back-to-back while
// no piece is known yet to serve as reserve: a Start with an empty queue
// and no hold must wait for the first NewPiece before a bot can exist
// at all.
type pendingStart struct {
	board      board.Board
	backToBack bool
	combo      uint32
	randomizer harness.Randomizer
}

// Run reads one FrontendMessage per line from in and writes one
// BotMessage per line to out, driving h until a "quit" message arrives
// or the input stream ends.
func Run(in io.Reader, out io.Writer, h *harness.Harness) {
	enc := json.NewEncoder(out)
	send := func(msg BotMessage) {
		if err := enc.Encode(msg); err != nil {
			log.Printf("protocol: write failed: %v", err)
		}
	}

	send(BotMessage{Type: "info", Info: &InfoPayload{
		Name:     "tetriscore",
		Version:  "0.1.0",
		Author:   "tetriscore",
		Features: []string{"lock", "hold", "tspin"},
	}})

	var waiting *pendingStart

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg FrontendMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			log.Printf("protocol: malformed message: %v", err)
			continue
		}

		switch msg.Type {
		case "start":
			waiting = handleStart(h, msg.Start)
		case "stop":
			h.Stop()
			waiting = nil
		case "suggest":
			handleSuggest(h, send)
		case "play":
			if msg.Move != nil {
				h.Advance(msg.Move.ToPlacement())
			}
		case "new_piece":
			if msg.Piece == nil {
				continue
			}
			piece := board.Piece(*msg.Piece)
			if waiting != nil {
				startWith(h, waiting.board, waiting.backToBack, waiting.combo, waiting.randomizer, piece, nil)
				waiting = nil
			} else {
				h.NewPiece(piece)
			}
		case "rules":
			send(BotMessage{Type: "ready"})
		case "quit":
			return
		default:
			// Unrecognized message types are ignored, matching tbp's
			// #[serde(other)] Unknown variant.
		}
	}
}

func handleStart(h *harness.Harness, p *StartPayload) *pendingStart {
	if p == nil {
		return nil
	}
	combo := p.Combo
	if combo > 20 {
		combo = 20
	}

	queue := make([]board.Piece, len(p.Queue))
	for i, wp := range p.Queue {
		queue[i] = board.Piece(wp)
	}

	var reserve board.Piece
	haveReserve := false
	if p.Hold != nil {
		reserve = board.Piece(*p.Hold)
		haveReserve = true
	} else if len(queue) > 0 {
		reserve = queue[0]
		queue = queue[1:]
		haveReserve = true
	}

	randomizer := randomizerFromWire(p.Randomizer)

	if !haveReserve {
		return &pendingStart{
			board:      p.Board.ToBoard(),
			backToBack: p.BackToBack,
			combo:      combo,
			randomizer: randomizer,
		}
	}

	startWith(h, p.Board.ToBoard(), p.BackToBack, combo, randomizer, reserve, queue)
	return nil
}

// randomizerFromWire maps the wire Randomizer tag onto the harness's
// speculate-or-not distinction: only a declared seven-bag randomizer
// makes speculative search sound.
func randomizerFromWire(w WireRandomizer) harness.Randomizer {
	if w.Type == "seven_bag" {
		return harness.SevenBagRandomizer
	}
	return harness.UnknownRandomizer
}

func startWith(h *harness.Harness, b board.Board, backToBack bool, combo uint32, randomizer harness.Randomizer, reserve board.Piece, queue []board.Piece) {
	root := tstate.GameState{
		Board:      b,
		Bag:        board.FullBag.Remove(reserve),
		Reserve:    reserve,
		BackToBack: backToBack,
		Combo:      uint8(combo),
	}
	h.Start(root, queue, randomizer)
}

func handleSuggest(h *harness.Harness, send func(BotMessage)) {
	moves, info, ok := h.Suggest()
	if !ok {
		return
	}
	wireMoves := make([]WirePlacement, len(moves))
	for i, mv := range moves {
		wireMoves[i] = placementToWire(mv)
	}
	send(BotMessage{Type: "suggestion", Suggestion: &SuggestionPayload{
		Moves: wireMoves,
		MoveInfo: WireMoveInfo{
			Nodes: info.Nodes,
			NPS:   info.NPS,
			Extra: info.Extra,
		},
	}})
}
