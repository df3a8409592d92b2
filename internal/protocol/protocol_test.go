package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/tetriscore/core/internal/harness"
	"github.com/tetriscore/core/internal/heuristic"
)

func readMessages(t *testing.T, out *bytes.Buffer) []map[string]any {
	t.Helper()
	var msgs []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(out.Bytes()))
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal(line, &m); err != nil {
			t.Fatalf("non-JSON output line %q: %v", line, err)
		}
		msgs = append(msgs, m)
	}
	return msgs
}

func TestRunSendsInfoThenReadyForRules(t *testing.T) {
	scorer := heuristic.New()
	h := harness.New(scorer, scorer, 1)
	defer h.Close()

	in := strings.NewReader("{\"type\":\"rules\"}\n{\"type\":\"quit\"}\n")
	var out bytes.Buffer

	Run(in, &out, h)

	msgs := readMessages(t, &out)
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2: %+v", len(msgs), msgs)
	}
	if msgs[0]["type"] != "info" {
		t.Fatalf("first message type = %v, want info", msgs[0]["type"])
	}
	if msgs[1]["type"] != "ready" {
		t.Fatalf("second message type = %v, want ready", msgs[1]["type"])
	}
}

func TestRunIgnoresPlayBeforeStartWithoutPanicking(t *testing.T) {
	scorer := heuristic.New()
	h := harness.New(scorer, scorer, 1)
	defer h.Close()

	in := strings.NewReader(`{"type":"play","move":{"piece":"T","rotation":"north","x":0,"y":0,"spin":"none"}}
{"type":"quit"}
`)
	var out bytes.Buffer
	Run(in, &out, h)

	msgs := readMessages(t, &out)
	if len(msgs) != 1 || msgs[0]["type"] != "info" {
		t.Fatalf("expected only the startup info message, got %+v", msgs)
	}
}

func TestRunStartsAndStopsWithoutPanicking(t *testing.T) {
	scorer := heuristic.New()
	h := harness.New(scorer, scorer, 1)
	defer h.Close()

	start := `{"type":"start","board":[],"queue":["T","O","I","S","Z","L","J"],"hold":null,"combo":0,"back_to_back":false,"randomizer":{"type":"unknown"}}`
	in := strings.NewReader(start + "\n{\"type\":\"stop\"}\n{\"type\":\"quit\"}\n")
	var out bytes.Buffer
	Run(in, &out, h)

	msgs := readMessages(t, &out)
	if len(msgs) != 1 || msgs[0]["type"] != "info" {
		t.Fatalf("expected only the startup info message, got %+v", msgs)
	}
}
