// Command player is an interactive terminal client for the chamber engine.
// It loads a chamber from the content directory, runs the maze session loop,
// and hands off to the narrative engine when a room's character has a
// dialogue graph.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/soulbios/chamber-engine/internal/api"
	"github.com/soulbios/chamber-engine/internal/chamber"
	"github.com/soulbios/chamber-engine/internal/config"
	"github.com/soulbios/chamber-engine/internal/content"
	"github.com/soulbios/chamber-engine/internal/events"
	"github.com/soulbios/chamber-engine/internal/mqtt"
	"github.com/soulbios/chamber-engine/internal/narrative"
	"github.com/soulbios/chamber-engine/internal/relevance"
	"github.com/soulbios/chamber-engine/internal/storage/postgres"
	"github.com/soulbios/chamber-engine/internal/version"
)

func main() {
	configPath := flag.String("config", "engine.yaml", "path to engine.yaml")
	contentDir := flag.String("content", "", "content directory (overrides config)")
	chamberType := flag.String("chamber", "fortress", "chamber type to play")
	archetype := flag.String("archetype", "guardian", "character archetype for dialogue")
	userID := flag.String("user", "local", "user id for progress persistence")
	flag.Parse()

	cfg, err := config.LoadEngineConfig(*configPath)
	if err != nil {
		// Missing config is fine for local play; everything has defaults.
		cfg = &config.EngineConfig{Version: 1}
	}

	dir := cfg.ContentDir()
	if *contentDir != "" {
		dir = *contentDir
	}

	events.Emit("info", "system.startup", "", map[string]interface{}{
		"service": "player",
		"version": version.Version,
		"pid":     os.Getpid(),
	})
	defer events.Emit("info", "system.shutdown", "", nil)

	// Optional collaborators. Failures degrade to offline play.
	var pg *postgres.Client
	if cfg.Persistence.Enabled {
		pg, err = postgres.New()
		if err != nil {
			log.Printf("postgres unavailable, playing without persistence: %v", err)
		} else {
			events.SetPostgresClient(pg)
			defer pg.Close()
		}
	}

	if cfg.Network.MQTTURL != "" {
		client := mqtt.NewClient(cfg.Network.MQTTURL, "chamber-player")
		if err := client.Connect(); err != nil {
			log.Printf("mqtt unavailable, playing without telemetry: %v", err)
		} else {
			pub := mqtt.NewPublisher(client)
			if err := pub.Start(); err == nil {
				defer pub.Stop()
			}
			defer client.Disconnect()
		}
	}

	loader := content.NewLoader(dir)
	graph, err := loader.RoomsForChamber(*chamberType)
	if err != nil {
		log.Fatalf("failed to load chamber %q: %v", *chamberType, err)
	}

	sess := chamber.NewSession(graph)
	api.PublishSnapshot(sess.Snapshot())
	api.Start(cfg.APIPort())

	fmt.Printf("Entering chamber %q. Type 'help' for commands.\n", graph.ChamberID())
	progressTotal := runSession(sess, graph, loader, *archetype)

	if pg != nil {
		if err := pg.UpsertProgress(*userID, graph.ChamberID(), sess.CorrectAnswers(), progressTotal); err != nil {
			log.Printf("failed to persist progress: %v", err)
		}
	}
}

func runSession(sess *chamber.Session, graph *chamber.Graph, loader *content.Loader, archetype string) int {
	scanner := bufio.NewScanner(os.Stdin)
	progressTotal := 0
	patterns := make(map[string]*relevance.Pattern)

	describeRoom(sess, graph)
	for sess.Phase() != chamber.PhaseEnded {
		// The session itself is single-goroutine; /state only ever sees
		// published copies.
		api.PublishSnapshot(sess.Snapshot())
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "help":
			fmt.Println("commands: look, map, go <room>, choose <A-D>, answer, talk, quit")

		case "look":
			describeRoom(sess, graph)

		case "map":
			printMap(sess, graph)

		case "go":
			if len(fields) < 2 {
				fmt.Println("go where?")
				continue
			}
			if err := sess.EnterRoom(fields[1]); err != nil {
				fmt.Printf("cannot: %v\n", err)
				continue
			}
			if sess.Phase() == chamber.PhaseEnded {
				fmt.Printf("You step through the exit. %d correct answers.\n", sess.CorrectAnswers())
				continue
			}
			describeRoom(sess, graph)

		case "choose":
			if len(fields) < 2 || len(fields[1]) != 1 {
				fmt.Println("choose A, B, C or D")
				continue
			}
			index := int(strings.ToUpper(fields[1])[0] - 'A')
			if err := sess.SelectChoice(index); err != nil {
				fmt.Printf("cannot: %v\n", err)
			}

		case "answer":
			room, roomErr := graph.Room(sess.CurrentRoomID())
			result, err := sess.SubmitAnswer()
			if err != nil {
				fmt.Printf("cannot: %v\n", err)
				continue
			}
			if roomErr == nil {
				observePattern(patterns, room.Name, result.Correct)
			}
			if result.Correct {
				fmt.Println("Correct. New paths shimmer into view on the map.")
			} else {
				fmt.Printf("Not quite. The answer was %s.\n%s\n", result.CorrectChoice, result.Explanation)
			}

		case "talk":
			progressTotal += runDialogue(scanner, loader, graph.ChamberID(), archetype)

		case "quit":
			printRecall(patterns)
			return progressTotal

		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}

	api.PublishSnapshot(sess.Snapshot())
	printRecall(patterns)
	return progressTotal
}

// observePattern records one answer attempt against the room's theme. A
// correct answer on few attempts marks a strong grasp; repeated misses weaken
// it.
func observePattern(patterns map[string]*relevance.Pattern, name string, correct bool) {
	p, ok := patterns[name]
	if !ok {
		p = &relevance.Pattern{Name: name}
		patterns[name] = p
	}
	p.ObservedCount++
	if correct {
		p.Strength = 1 / float64(p.ObservedCount)
	}
}

func printRecall(patterns map[string]*relevance.Pattern) {
	if len(patterns) == 0 {
		return
	}
	flat := make([]relevance.Pattern, 0, len(patterns))
	for _, p := range patterns {
		flat = append(flat, *p)
	}
	fmt.Println("Patterns surfaced this run:")
	for _, p := range relevance.Rank(flat) {
		fmt.Printf("  %-24s relevance %.2f\n", p.Name, relevance.Score(p))
	}
}

func describeRoom(sess *chamber.Session, graph *chamber.Graph) {
	room, err := graph.Room(sess.CurrentRoomID())
	if err != nil {
		return
	}
	fmt.Printf("-- %s --\n", room.Name)
	if len(room.Objects) > 0 {
		fmt.Printf("You notice: %s\n", strings.Join(room.Objects, ", "))
	}
	if doors := graph.Neighbors(room.ID); len(doors) > 0 {
		fmt.Printf("Doors lead to: %s\n", strings.Join(doors, ", "))
	}
	if sess.Phase() == chamber.PhaseCompletable {
		fmt.Printf("The exit %q hums, unsealed.\n", graph.ExitRoomID())
	}
	if sess.QuestionActive() && room.Question != nil {
		q := room.Question
		fmt.Println(q.Text)
		for i, choice := range q.Choices {
			fmt.Printf("  %s) %s\n", chamber.ChoiceLabel(i), choice)
		}
	}
}

func printMap(sess *chamber.Session, graph *chamber.Graph) {
	width, height := graph.GridSize()
	current, _ := graph.Room(sess.CurrentRoomID())
	for y := 0; y < height; y++ {
		var row strings.Builder
		for x := 0; x < width; x++ {
			pos := chamber.Position{X: x, Y: y}
			switch {
			case current != nil && current.GridPosition == pos:
				row.WriteString("@")
			case sess.Revealed(pos):
				row.WriteString(".")
			default:
				row.WriteString("#")
			}
		}
		fmt.Println(row.String())
	}
}

func runDialogue(scanner *bufio.Scanner, loader *content.Loader, chamberID, archetype string) int {
	g, err := loader.NarrativeGraph(chamberID, archetype)
	if err != nil {
		if errors.Is(err, narrative.ErrUnsupported) {
			events.Emit("info", "narrative.unsupported", chamberID, map[string]interface{}{
				"archetype": archetype,
			})
			fmt.Println("The character regards you in silence. Nothing more to say here.")
			return 0
		}
		// Malformed content must not corrupt the maze session.
		log.Printf("narrative failed to load, continuing without it: %v", err)
		return 0
	}

	d := narrative.NewDialogue(g)
	for !d.Complete() {
		node := d.CurrentNode()
		if node == nil {
			break
		}
		fmt.Println(node.Content)

		if len(node.Choices) == 0 {
			before := d.State().CurrentNodeID
			d.Advance()
			if d.State().CurrentNodeID == before {
				break
			}
			continue
		}

		for i, choice := range node.Choices {
			fmt.Printf("  %d) %s\n", i+1, choice.Text)
		}
		fmt.Print("choice> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		picked := ""
		for i, choice := range node.Choices {
			if input == fmt.Sprintf("%d", i+1) || input == choice.ID {
				picked = choice.ID
				break
			}
		}
		if picked == "" {
			fmt.Println("pick a listed choice")
			continue
		}
		if err := d.Choose(picked); err != nil {
			fmt.Printf("cannot: %v\n", err)
		}
	}

	if d.Complete() {
		if node := d.CurrentNode(); node != nil && node.Content != "" {
			fmt.Println(node.Content)
		}
	}
	return d.State().ProgressScore
}
