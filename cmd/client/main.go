// Command client is a terminal player for the share tracker. Identity is
// persisted on disk so the same player id survives restarts, the way the
// browser client kept it in local storage.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/coder/websocket"

	"github.com/railgames/shareboard/internal/game"
	"github.com/railgames/shareboard/internal/identity"
	"github.com/railgames/shareboard/internal/ledger"
	"github.com/railgames/shareboard/pkg/types"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "server address")
	name := flag.String("name", "", "display name (persisted)")
	code := flag.String("code", "", "game code to join")
	create := flag.Bool("create", false, "create a game instead of joining")
	flag.Parse()

	ident := identity.NewFile(identityDir())
	if *name != "" {
		if err := ident.SetName(*name); err != nil {
			log.Fatal(err)
		}
	}
	displayName, err := ident.Name()
	if err != nil {
		log.Fatal(err)
	}
	if displayName == "" {
		log.Fatal("no name on file; run once with -name")
	}
	playerID, err := ident.PlayerID()
	if err != nil {
		log.Fatal(err)
	}

	gameCode := *code
	if *create {
		gameCode, err = createGame(*addr, displayName, playerID)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("created game %s\n", gameCode)
	}
	if gameCode == "" {
		log.Fatal("pass -code or -create")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wsURL := strings.Replace(*addr, "http", "ws", 1) +
		"/ws?code=" + gameCode + "&player=" + playerID + "&name=" + displayName
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	go func() {
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var msg types.ServerMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			switch msg.Type {
			case "Joined", "Snapshot":
				render(msg.Game, playerID)
			case "Error":
				fmt.Printf("! %s\n", msg.Error)
			}
		}
	}()

	fmt.Println("commands: claim <share> [player], unclaim <share> [player], leave, quit")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var msg types.ClientMessage
		switch fields[0] {
		case "claim", "unclaim":
			if len(fields) < 2 {
				fmt.Println("! share id required")
				continue
			}
			shareID, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("! bad share id")
				continue
			}
			msg = types.ClientMessage{Type: "AddShare", ShareID: shareID}
			if fields[0] == "unclaim" {
				msg.Type = "RemoveShare"
			}
			if len(fields) > 2 {
				msg.PlayerID = fields[2]
			}
		case "leave":
			msg = types.ClientMessage{Type: "Leave"}
		case "quit":
			return
		default:
			fmt.Println("! unknown command")
			continue
		}

		payload, _ := json.Marshal(msg)
		if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
			log.Fatal(err)
		}
		if msg.Type == "Leave" {
			return
		}
	}
}

func createGame(addr, name, playerID string) (string, error) {
	body, _ := json.Marshal(map[string]string{"name": name, "player_id": playerID})
	resp, err := http.Post(addr+"/games", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("create failed: %s", resp.Status)
	}
	var created struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", err
	}
	return created.Code, nil
}

func render(doc *game.Document, playerID string) {
	if doc == nil {
		fmt.Println("-- game gone --")
		return
	}
	fmt.Printf("== game %s ==\n", doc.GameID)
	for _, c := range ledger.Availability(doc.Shares, doc.Claims) {
		fmt.Printf("  [%d] %-28s %d/%d remaining\n", c.Share.ID, c.Share.Label, c.Remaining, c.Share.Max)
	}
	for _, s := range ledger.Stats(doc.Players, doc.Claims, doc.Shares) {
		you := ""
		if s.Player.ID == playerID {
			you = " (you)"
		}
		fmt.Printf("  %s%s: %d shares", s.Player.Name, you, s.Total)
		for _, h := range s.Holdings {
			fmt.Printf("  %s x%d", h.Share.Label, h.Count)
		}
		fmt.Println()
	}
}

func identityDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "shareboard")
}
