// Package protocol is the line-oriented JSON wire format the bot speaks
// to its frontend: one JSON object per line in each direction, each
// tagged by a "type" field naming its payload shape.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/tetriscore/core/internal/board"
)

// FrontendMessage is one inbound line, decoded in two passes: first the
// discriminator, then the matching payload shape.
type FrontendMessage struct {
	Type string `json:"type"`

	// Populated only for Type == "start".
	Start *StartPayload `json:"-"`
	// Populated only for Type == "play".
	Move *WirePlacement `json:"-"`
	// Populated only for Type == "new_piece".
	Piece *WirePiece `json:"-"`
}

// StartPayload is the "start" message's body.
type StartPayload struct {
	Board      WireBoard       `json:"board"`
	Queue      []WirePiece     `json:"queue"`
	Hold       *WirePiece      `json:"hold"`
	Combo      uint32          `json:"combo"`
	BackToBack bool            `json:"back_to_back"`
	Randomizer WireRandomizer  `json:"randomizer"`
}

// WireRandomizer is either a seven-bag randomizer (with its remaining
// bag, which this bot does not read: it starts from a full bag minus
// the reserve piece) or Unknown.
type WireRandomizer struct {
	Type     string      `json:"type"`
	BagState []WirePiece `json:"bag_state,omitempty"`
}

// UnmarshalJSON splits the "type" discriminator from the payload and
// decodes only the matching half, the Go equivalent of serde's
// internally-tagged enum.
func (m *FrontendMessage) UnmarshalJSON(data []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	m.Type = head.Type

	switch head.Type {
	case "start":
		var p StartPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		m.Start = &p
	case "play":
		var p struct {
			Move WirePlacement `json:"move"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		m.Move = &p.Move
	case "new_piece":
		var p struct {
			Piece WirePiece `json:"piece"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		m.Piece = &p.Piece
	case "rules", "suggest", "stop", "quit":
		// No payload.
	default:
		m.Type = "unknown"
	}
	return nil
}

// WirePiece is a tetromino encoded as its single-letter name.
type WirePiece board.Piece

func (p WirePiece) MarshalJSON() ([]byte, error) {
	return json.Marshal(board.Piece(p).String())
}

func (p *WirePiece) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, candidate := range board.Pieces {
		if candidate.String() == s {
			*p = WirePiece(candidate)
			return nil
		}
	}
	return fmt.Errorf("protocol: unknown piece %q", s)
}

// WireBoard is the frontend's 40-row x 10-column filled/empty grid,
// row 0 at the bottom.
type WireBoard [board.Height][board.Width]bool

// ToBoard converts the wire representation into the engine's bitboard.
func (w WireBoard) ToBoard() board.Board {
	var b board.Board
	for y := 0; y < board.Height; y++ {
		for x := 0; x < board.Width; x++ {
			if w[y][x] {
				b.Cols[x] |= 1 << uint(y)
			}
		}
	}
	return b
}

// WirePlacement is a placement as the frontend names it: a piece,
// rotation, origin cell, and spin classification.
type WirePlacement struct {
	Piece    WirePiece `json:"piece"`
	Rotation string    `json:"rotation"`
	X        int8      `json:"x"`
	Y        int8      `json:"y"`
	Spin     string    `json:"spin"`
}

func (w WirePlacement) ToPlacement() board.Placement {
	return board.Placement{
		Location: board.PieceLocation{
			Piece:    board.Piece(w.Piece),
			Rotation: rotationFromWire(w.Rotation),
			X:        w.X,
			Y:        w.Y,
		},
		Spin: spinFromWire(w.Spin),
	}
}

func placementToWire(p board.Placement) WirePlacement {
	return WirePlacement{
		Piece:    WirePiece(p.Location.Piece),
		Rotation: rotationToWire(p.Location.Rotation),
		X:        p.Location.X,
		Y:        p.Location.Y,
		Spin:     spinToWire(p.Spin),
	}
}

func rotationFromWire(s string) board.Rotation {
	switch s {
	case "cw":
		return board.East
	case "180":
		return board.South
	case "ccw":
		return board.West
	default:
		return board.North
	}
}

func rotationToWire(r board.Rotation) string {
	switch r {
	case board.East:
		return "cw"
	case board.South:
		return "180"
	case board.West:
		return "ccw"
	default:
		return "north"
	}
}

func spinFromWire(s string) board.Spin {
	switch s {
	case "mini":
		return board.MiniSpin
	case "full":
		return board.FullSpin
	default:
		return board.NoSpin
	}
}

func spinToWire(s board.Spin) string {
	switch s {
	case board.MiniSpin:
		return "mini"
	case board.FullSpin:
		return "full"
	default:
		return "none"
	}
}

// BotMessage is one outbound line.
type BotMessage struct {
	Type string `json:"type"`

	Info       *InfoPayload       `json:"-"`
	Suggestion *SuggestionPayload `json:"-"`
}

// InfoPayload identifies the bot, sent once at startup.
type InfoPayload struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Author   string   `json:"author"`
	Features []string `json:"features"`
}

// SuggestionPayload answers a "suggest" request.
type SuggestionPayload struct {
	Moves    []WirePlacement `json:"moves"`
	MoveInfo WireMoveInfo    `json:"move_info"`
}

// WireMoveInfo carries search statistics alongside a suggestion.
type WireMoveInfo struct {
	Nodes uint64  `json:"nodes"`
	NPS   float64 `json:"nps"`
	Extra string  `json:"extra"`
}

// MarshalJSON flattens the tagged payload back into the single-object
// wire shape, the reverse of FrontendMessage.UnmarshalJSON.
func (m BotMessage) MarshalJSON() ([]byte, error) {
	switch m.Type {
	case "info":
		return json.Marshal(struct {
			Type string `json:"type"`
			InfoPayload
		}{m.Type, *m.Info})
	case "suggestion":
		return json.Marshal(struct {
			Type string `json:"type"`
			SuggestionPayload
		}{m.Type, *m.Suggestion})
	default:
		return json.Marshal(struct {
			Type string `json:"type"`
		}{m.Type})
	}
}
