// Package document implements the persisted hierarchical key/value store
// attachment state is saved into: named nodes holding ordered values and
// child nodes, encoded as YAML on disk.
package document

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Value struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type Node struct {
	Name   string  `yaml:"name"`
	Values []Value `yaml:"values,omitempty"`
	Nodes  []*Node `yaml:"nodes,omitempty"`
}

func New(name string) *Node {
	return &Node{Name: name}
}

// AddNode appends and returns a new child called name.
func (n *Node) AddNode(name string) *Node {
	child := New(name)
	n.Nodes = append(n.Nodes, child)
	return child
}

// GetNode returns the index-th child called name, or nil.
func (n *Node) GetNode(name string, index int) *Node {
	if n == nil || index < 0 {
		return nil
	}
	seen := 0
	for _, c := range n.Nodes {
		if c.Name != name {
			continue
		}
		if seen == index {
			return c
		}
		seen++
	}
	return nil
}

func (n *Node) HasNode(name string) bool {
	return n.GetNode(name, 0) != nil
}

// CountNodes returns how many children are called name.
func (n *Node) CountNodes(name string) int {
	if n == nil {
		return 0
	}
	count := 0
	for _, c := range n.Nodes {
		if c.Name == name {
			count++
		}
	}
	return count
}

func (n *Node) AddValue(name, value string) {
	n.Values = append(n.Values, Value{Name: name, Value: value})
}

// GetValue returns the first value called name.
func (n *Node) GetValue(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, v := range n.Values {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

func Marshal(n *Node) ([]byte, error) {
	return yaml.Marshal(n)
}

func Unmarshal(data []byte) (*Node, error) {
	n := &Node{}
	if err := yaml.Unmarshal(data, n); err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	return n, nil
}

func Save(path string, n *Node) error {
	data, err := Marshal(n)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func Load(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}
