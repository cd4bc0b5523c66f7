package vcdtext

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
)

// Node is one line of the text. A braced block following the line is
// stored in Children; combo flex tracks carry a second block in More.
type Node struct {
	Key      string    `yaml:"key" json:"key"`
	Args     []string  `yaml:"args,omitempty" json:"args,omitempty"`
	Children []*Node   `yaml:"children,omitempty" json:"children,omitempty"`
	More     [][]*Node `yaml:"more,omitempty" json:"more,omitempty"`
}

type Document struct {
	Comment string  `yaml:"comment,omitempty" json:"comment,omitempty"`
	Nodes   []*Node `yaml:"nodes" json:"nodes"`
}

type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("[vcdtext] line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	ErrUnbalanced = errors.New("unbalanced braces")
	ErrNoOwner    = errors.New("block has no owning line")
)

func unquote(lexeme string) string {
	if len(lexeme) >= 2 && lexeme[0] == '"' {
		return lexeme[1 : len(lexeme)-1]
	}
	return lexeme
}

type parser struct {
	doc   *Document
	stack [][]*Node
	cur   *Node
	last  *Node
}

func (p *parser) top() *[]*Node { return &p.stack[len(p.stack)-1] }

func (p *parser) finishLine() {
	if p.cur == nil {
		return
	}
	level := p.top()
	*level = append(*level, p.cur)
	p.last = p.cur
	p.cur = nil
}

// Parse builds the line tree of a scene text. Only brace balance and
// token shape are checked, keywords are not interpreted.
func Parse(text []byte) (*Document, error) {
	scanner, err := lexer.Scanner(text)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create lexer scanner")
	}

	p := &parser{doc: &Document{}}
	p.stack = [][]*Node{nil}
	// owners of the open blocks
	owners := make([]*Node, 0, 8)
	line := 1

	for itok, err, eos := scanner.Next(); !eos; itok, err, eos = scanner.Next() {
		if err != nil {
			return nil, &ParseError{Line: line, Err: errors.Wrapf(err, "Failed to parse token")}
		}
		tok := itok.(*lexmachine.Token)
		line = tok.StartLine
		lexeme := string(tok.Lexeme)

		switch tok.Type {
		case TOKEN_WORD, TOKEN_NUMBER, TOKEN_STRING:
			if p.cur == nil {
				p.cur = &Node{Key: unquote(lexeme)}
			} else {
				p.cur.Args = append(p.cur.Args, unquote(lexeme))
			}
		case TOKEN_NEWLINE:
			p.finishLine()
		case TOKEN_COMMENT:
			if p.doc.Comment == "" && len(p.doc.Nodes) == 0 && len(p.stack) == 1 && len(*p.top()) == 0 {
				p.doc.Comment = strings.TrimSpace(lexeme[2:])
			}
		case TOKEN_OPEN:
			p.finishLine()
			if p.last == nil {
				return nil, &ParseError{Line: line, Err: ErrNoOwner}
			}
			owners = append(owners, p.last)
			p.stack = append(p.stack, nil)
			p.last = nil
		case TOKEN_CLOSE:
			p.finishLine()
			if len(owners) == 0 {
				return nil, &ParseError{Line: line, Err: errors.Wrapf(ErrUnbalanced, "unexpected '}'")}
			}
			owner := owners[len(owners)-1]
			owners = owners[:len(owners)-1]
			block := *p.top()
			if block == nil {
				block = []*Node{}
			}
			if owner.Children == nil {
				owner.Children = block
			} else {
				owner.More = append(owner.More, block)
			}
			p.stack = p.stack[:len(p.stack)-1]
			p.last = owner
		}
	}
	p.finishLine()

	if len(owners) != 0 {
		return nil, &ParseError{Line: line, Err: errors.Wrapf(ErrUnbalanced, "%d blocks left open", len(owners))}
	}
	p.doc.Nodes = *p.top()
	return p.doc, nil
}

// Walk visits every node depth first. Nodes of extra blocks are visited
// after the first block, at the same depth.
func (d *Document) Walk(fn func(depth int, n *Node)) {
	var walk func(depth int, nodes []*Node)
	walk = func(depth int, nodes []*Node) {
		for _, n := range nodes {
			fn(depth, n)
			walk(depth+1, n.Children)
			for _, more := range n.More {
				walk(depth+1, more)
			}
		}
	}
	walk(0, d.Nodes)
}

// Count returns how many nodes at any depth have the given key.
func (d *Document) Count(key string) int {
	count := 0
	d.Walk(func(_ int, n *Node) {
		if n.Key == key {
			count++
		}
	})
	return count
}

// Find returns the top level nodes with the given key.
func (d *Document) Find(key string) []*Node {
	result := make([]*Node, 0)
	for _, n := range d.Nodes {
		if n.Key == key {
			result = append(result, n)
		}
	}
	return result
}
