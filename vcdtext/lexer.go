package vcdtext

import (
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

const (
	TOKEN_WORD = iota
	TOKEN_NUMBER
	TOKEN_STRING
	TOKEN_OPEN
	TOKEN_CLOSE
	TOKEN_NEWLINE
	TOKEN_COMMENT
)

var lexer *lexmachine.Lexer

func init() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte(`[a-zA-Z_][a-zA-Z0-9_]*`), getToken(TOKEN_WORD))
	// non-finite values are written inf, -inf and nan
	lexer.Add([]byte(`-?([0-9]+(\.[0-9]+)?|inf|nan)`), getToken(TOKEN_NUMBER))
	lexer.Add([]byte(`"[^"]*"`), getToken(TOKEN_STRING))
	lexer.Add([]byte(`{`), getToken(TOKEN_OPEN))
	lexer.Add([]byte(`}`), getToken(TOKEN_CLOSE))
	lexer.Add([]byte(`(\r\n|\n|\r)+`), getToken(TOKEN_NEWLINE))
	lexer.Add([]byte(`//[^\r\n]*`), getToken(TOKEN_COMMENT))
	lexer.Add([]byte(`( |\t)+`), skip)

	// scanners are created from worker goroutines
	if err := lexer.Compile(); err != nil {
		panic(err)
	}
}

func getToken(tokenType int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(tokenType, string(m.Bytes), m), nil
	}
}

func skip(scan *lexmachine.Scanner, match *machines.Match) (interface{}, error) {
	return nil, nil
}
