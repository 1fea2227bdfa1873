// Package content loads chamber and narrative definitions from YAML files
// and runs the load-time integrity checks before anything reaches a player.
package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/soulbios/chamber-engine/internal/chamber"
	"github.com/soulbios/chamber-engine/internal/narrative"
)

// Loader reads content from a directory tree:
//
//	<dir>/chambers/<type>.yaml
//	<dir>/narratives/<chamberID>_<archetype>.yaml
type Loader struct {
	dir string
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

type positionEntry struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

type questionEntry struct {
	ID           string   `yaml:"id"`
	Text         string   `yaml:"text"`
	Choices      []string `yaml:"choices"`
	CorrectIndex int      `yaml:"correct_index"`
	Hint         string   `yaml:"hint"`
	Explanation  string   `yaml:"explanation"`
}

type roomEntry struct {
	ID       string         `yaml:"id"`
	Name     string         `yaml:"name"`
	Position positionEntry  `yaml:"position"`
	Connects []string       `yaml:"connects"`
	Objects  []string       `yaml:"objects"`
	Question *questionEntry `yaml:"question"`
}

type chamberFile struct {
	Version int `yaml:"version"`
	Chamber struct {
		ID         string `yaml:"id"`
		Name       string `yaml:"name"`
		StartRoom  string `yaml:"start_room"`
		GridWidth  int    `yaml:"grid_width"`
		GridHeight int    `yaml:"grid_height"`
	} `yaml:"chamber"`
	Rooms []roomEntry `yaml:"rooms"`
}

// RoomsForChamber loads and validates the room graph for a chamber type.
// Malformed content fails with *chamber.IntegrityError and the chamber must
// not start.
func (l *Loader) RoomsForChamber(chamberType string) (*chamber.Graph, error) {
	path := filepath.Join(l.dir, "chambers", chamberType+".yaml")
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chamber file: %w", err)
	}

	var cf chamberFile
	if err := yaml.Unmarshal(b, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse chamber YAML %s: %w", path, err)
	}
	if cf.Version != 1 {
		return nil, fmt.Errorf("unsupported chamber file version: %d", cf.Version)
	}

	rooms := make([]*chamber.Room, 0, len(cf.Rooms))
	for _, entry := range cf.Rooms {
		room := &chamber.Room{
			ID:               entry.ID,
			Name:             entry.Name,
			GridPosition:     chamber.Position{X: entry.Position.X, Y: entry.Position.Y},
			Objects:          entry.Objects,
			ConnectedRoomIDs: entry.Connects,
		}
		if entry.Question != nil {
			q, err := buildQuestion(cf.Chamber.ID, entry.ID, entry.Question)
			if err != nil {
				return nil, err
			}
			room.Question = q
		}
		rooms = append(rooms, room)
	}

	return chamber.NewGraph(cf.Chamber.ID, rooms, cf.Chamber.StartRoom, cf.Chamber.GridWidth, cf.Chamber.GridHeight)
}

func buildQuestion(chamberID, roomID string, entry *questionEntry) (*chamber.Question, error) {
	if len(entry.Choices) != chamber.QuestionChoices {
		return nil, &chamber.IntegrityError{
			ChamberID: chamberID,
			Detail:    fmt.Sprintf("room %q question %q: expected %d choices, got %d", roomID, entry.ID, chamber.QuestionChoices, len(entry.Choices)),
		}
	}
	q := &chamber.Question{
		ID:           entry.ID,
		Text:         entry.Text,
		CorrectIndex: entry.CorrectIndex,
		Hint:         entry.Hint,
		Explanation:  entry.Explanation,
	}
	copy(q.Choices[:], entry.Choices)
	return q, nil
}

type choiceEntry struct {
	ID      string         `yaml:"id"`
	Text    string         `yaml:"text"`
	Target  string         `yaml:"target"`
	Effects map[string]int `yaml:"effects"`
}

type nodeEntry struct {
	ID       string                 `yaml:"id"`
	Type     string                 `yaml:"type"`
	Content  string                 `yaml:"content"`
	Choices  []choiceEntry          `yaml:"choices"`
	Next     string                 `yaml:"next"`
	Metadata map[string]interface{} `yaml:"metadata"`
}

type narrativeFile struct {
	Version   int `yaml:"version"`
	Narrative struct {
		ChamberID string `yaml:"chamber_id"`
		Archetype string `yaml:"archetype"`
		StartNode string `yaml:"start_node"`
	} `yaml:"narrative"`
	Nodes           []nodeEntry `yaml:"nodes"`
	CompletionNodes []string    `yaml:"completion_nodes"`
}

// NarrativeGraph loads and validates the dialogue graph for a
// (chamber, archetype) pair. A missing file is not an error in the content,
// merely an absence: it is reported as narrative.ErrUnsupported and the
// caller falls back to a static message.
func (l *Loader) NarrativeGraph(chamberID, archetype string) (*narrative.Graph, error) {
	path := filepath.Join(l.dir, "narratives", chamberID+"_"+archetype+".yaml")
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s/%s: %w", chamberID, archetype, narrative.ErrUnsupported)
		}
		return nil, fmt.Errorf("failed to read narrative file: %w", err)
	}

	var nf narrativeFile
	if err := yaml.Unmarshal(b, &nf); err != nil {
		return nil, fmt.Errorf("failed to parse narrative YAML %s: %w", path, err)
	}
	if nf.Version != 1 {
		return nil, fmt.Errorf("unsupported narrative file version: %d", nf.Version)
	}

	g := &narrative.Graph{
		ChamberID:         nf.Narrative.ChamberID,
		Archetype:         nf.Narrative.Archetype,
		StartNodeID:       nf.Narrative.StartNode,
		Nodes:             make(map[string]*narrative.Node, len(nf.Nodes)),
		CompletionNodeIDs: make(map[string]struct{}, len(nf.CompletionNodes)),
	}

	for _, entry := range nf.Nodes {
		nodeType, err := parseNodeType(entry.Type)
		if err != nil {
			return nil, &narrative.IntegrityError{
				ChamberID: g.ChamberID,
				Archetype: g.Archetype,
				Detail:    fmt.Sprintf("node %q: %v", entry.ID, err),
			}
		}
		node := &narrative.Node{
			ID:         entry.ID,
			Type:       nodeType,
			Content:    entry.Content,
			NextNodeID: entry.Next,
			Metadata:   entry.Metadata,
		}
		for _, c := range entry.Choices {
			node.Choices = append(node.Choices, narrative.Choice{
				ID:           c.ID,
				Text:         c.Text,
				TargetNodeID: c.Target,
				Effects:      c.Effects,
			})
		}
		if _, dup := g.Nodes[node.ID]; dup {
			return nil, &narrative.IntegrityError{
				ChamberID: g.ChamberID,
				Archetype: g.Archetype,
				Detail:    fmt.Sprintf("duplicate node id %q", node.ID),
			}
		}
		g.Nodes[node.ID] = node
	}

	for _, id := range nf.CompletionNodes {
		g.CompletionNodeIDs[id] = struct{}{}
	}

	if err := narrative.Validate(g); err != nil {
		return nil, err
	}

	return g, nil
}

func parseNodeType(s string) (narrative.NodeType, error) {
	switch narrative.NodeType(s) {
	case narrative.NodeDialogue, narrative.NodeInsight, narrative.NodeCompletion:
		return narrative.NodeType(s), nil
	}
	return "", fmt.Errorf("unknown node type %q", s)
}

// Chambers lists the chamber types available under the content dir.
func (l *Loader) Chambers() ([]string, error) {
	return listYAML(filepath.Join(l.dir, "chambers"))
}

// Narratives lists the (chamberID, archetype) pairs available under the
// content dir, as file stems of the form <chamberID>_<archetype>.
func (l *Loader) Narratives() ([]string, error) {
	return listYAML(filepath.Join(l.dir, "narratives"))
}

func listYAML(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		out = append(out, strings.TrimSuffix(entry.Name(), ".yaml"))
	}
	return out, nil
}
