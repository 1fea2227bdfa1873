// Command validate runs the content pipeline checks: every chamber and
// narrative file under the content directory is loaded and put through the
// load-time integrity validation, including the completion-reachability walk
// over dialogue graphs. Exits non-zero on any violation.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/soulbios/chamber-engine/internal/content"
)

func main() {
	contentDir := flag.String("content", "content", "content directory to validate")
	flag.Parse()

	loader := content.NewLoader(*contentDir)
	failures := 0

	chambers, err := loader.Chambers()
	if err != nil {
		log.Fatalf("failed to list chambers: %v", err)
	}
	if len(chambers) == 0 {
		log.Fatalf("no chamber files under %s/chambers", *contentDir)
	}

	for _, chamberType := range chambers {
		graph, err := loader.RoomsForChamber(chamberType)
		if err != nil {
			fmt.Printf("FAIL chamber %s: %v\n", chamberType, err)
			failures++
			continue
		}
		fmt.Printf("ok   chamber %s (%d rooms, start %s, exit %s)\n",
			chamberType, graph.RoomCount(), graph.StartRoomID(), graph.ExitRoomID())
	}

	narratives, err := loader.Narratives()
	if err != nil {
		log.Fatalf("failed to list narratives: %v", err)
	}

	for _, stem := range narratives {
		chamberID, archetype, ok := splitStem(stem)
		if !ok {
			fmt.Printf("FAIL narrative %s: file name must be <chamber>_<archetype>.yaml\n", stem)
			failures++
			continue
		}
		graph, err := loader.NarrativeGraph(chamberID, archetype)
		if err != nil {
			fmt.Printf("FAIL narrative %s: %v\n", stem, err)
			failures++
			continue
		}
		fmt.Printf("ok   narrative %s (%d nodes, %d completion)\n",
			stem, len(graph.Nodes), len(graph.CompletionNodeIDs))
	}

	if failures > 0 {
		fmt.Printf("%d content failure(s)\n", failures)
		os.Exit(1)
	}
}

func splitStem(stem string) (chamberID, archetype string, ok bool) {
	i := strings.Index(stem, "_")
	if i <= 0 || i == len(stem)-1 {
		return "", "", false
	}
	return stem[:i], stem[i+1:], true
}
