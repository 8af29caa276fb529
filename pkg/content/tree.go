// Package content loads the tree of folders and files a webdesk session
// browses. Nodes are read-only once a Tree is built.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultTree []byte

var (
	// ErrDuplicateID is returned when two nodes resolve to the same id.
	ErrDuplicateID = errors.New("content: duplicate node id")
	// ErrNoLocations is returned for a tree without top-level locations.
	ErrNoLocations = errors.New("content: tree has no locations")
	// ErrUnknownHome is returned when the home id names no top-level folder.
	ErrUnknownHome = errors.New("content: home location not found")
)

// NodeKind distinguishes folders from files.
type NodeKind string

const (
	KindFolder NodeKind = "folder"
	KindFile   NodeKind = "file"
)

// FileType says how a file opens.
type FileType string

const (
	FileText   FileType = "txt"
	FileImage  FileType = "img"
	FileURL    FileType = "url"
	FileGitHub FileType = "github"
)

// Node is a folder or a file of the content tree.
type Node struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Kind        NodeKind `yaml:"kind" json:"kind"`
	FileType    FileType `yaml:"fileType,omitempty" json:"fileType,omitempty"`
	Icon        string   `yaml:"icon,omitempty" json:"icon,omitempty"`
	Href        string   `yaml:"href,omitempty" json:"href,omitempty"`
	ImageURL    string   `yaml:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Image       string   `yaml:"image,omitempty" json:"image,omitempty"`
	Subtitle    string   `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	Description []string `yaml:"description,omitempty" json:"description,omitempty"`
	Children    []*Node  `yaml:"children,omitempty" json:"children,omitempty"`
}

// LocationID returns the node's stable id. It makes *Node usable as a
// history location.
func (n *Node) LocationID() string {
	if n == nil {
		return ""
	}
	return n.ID
}

// IsFolder reports whether the node is a folder.
func (n *Node) IsFolder() bool {
	return n.Kind == KindFolder
}

// Tree is an indexed content tree.
type Tree struct {
	Home      string  `yaml:"home" json:"home"`
	Locations []*Node `yaml:"locations" json:"locations"`

	byID   map[string]*Node
	parent map[string]string
}

// Default returns the embedded sample tree.
func Default() *Tree {
	t, err := Parse(defaultTree)
	if err != nil {
		panic(fmt.Sprintf("content: embedded tree is invalid: %v", err))
	}
	return t
}

// LoadFile parses the YAML tree at path.
func LoadFile(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading content tree: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse decodes a YAML tree and indexes it. Nodes without an id get one
// derived from their name, qualified by their parent's id. Nodes without a
// kind are folders when they have children or no file type, files otherwise.
func Parse(data []byte) (*Tree, error) {
	var t Tree
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decoding content tree: %w", err)
	}
	if len(t.Locations) == 0 {
		return nil, ErrNoLocations
	}

	t.byID = make(map[string]*Node)
	t.parent = make(map[string]string)
	for _, n := range t.Locations {
		if err := t.index(n, ""); err != nil {
			return nil, err
		}
	}

	if t.Home == "" {
		t.Home = t.Locations[0].ID
	}
	if !t.isTopLevel(t.Home) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHome, t.Home)
	}
	return &t, nil
}

var slugSanitizer = regexp.MustCompile(`[^a-z0-9._]+`)

func slug(name string) string {
	return strings.Trim(slugSanitizer.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

func (t *Tree) index(n *Node, parentID string) error {
	if n.ID == "" {
		n.ID = slug(n.Name)
		if parentID != "" {
			n.ID = parentID + "/" + n.ID
		}
	}
	if n.Kind == "" {
		if len(n.Children) > 0 || n.FileType == "" {
			n.Kind = KindFolder
		} else {
			n.Kind = KindFile
		}
	}
	if _, dup := t.byID[n.ID]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateID, n.ID)
	}

	t.byID[n.ID] = n
	if parentID != "" {
		t.parent[n.ID] = parentID
	}
	for _, c := range n.Children {
		if err := t.index(c, n.ID); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) isTopLevel(id string) bool {
	for _, n := range t.Locations {
		if n.ID == id {
			return true
		}
	}
	return false
}

// HomeNode returns the location a Finder starts at.
func (t *Tree) HomeNode() *Node {
	return t.byID[t.Home]
}

// Lookup returns the node with the given id.
func (t *Tree) Lookup(id string) (*Node, bool) {
	n, ok := t.byID[id]
	return n, ok
}

// Parent returns the folder holding id. Top-level locations have no parent.
func (t *Tree) Parent(id string) (*Node, bool) {
	pid, ok := t.parent[id]
	if !ok {
		return nil, false
	}
	return t.byID[pid], true
}

// Path returns the breadcrumb from the top-level location down to id,
// inclusive. It is nil for unknown ids.
func (t *Tree) Path(id string) []*Node {
	n, ok := t.byID[id]
	if !ok {
		return nil
	}

	path := []*Node{n}
	for {
		p, ok := t.Parent(n.ID)
		if !ok {
			break
		}
		path = append(path, p)
		n = p
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Walk calls fn for every node in depth-first order with its depth. Walking
// stops early when fn returns false.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	var walk func(nodes []*Node, depth int) bool
	walk = func(nodes []*Node, depth int) bool {
		for _, n := range nodes {
			if !fn(n, depth) {
				return false
			}
			if !walk(n.Children, depth+1) {
				return false
			}
		}
		return true
	}
	walk(t.Locations, 0)
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.byID)
}
