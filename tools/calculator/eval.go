package calculator

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

const allowedChars = "0123456789+-*/.() "

// Evaluate parses and evaluates a restricted arithmetic expression.
// Only numbers, + - * /, decimal points, parentheses and spaces are
// accepted; anything else is rejected before parsing.
func Evaluate(expression string) (float64, error) {
	for _, c := range expression {
		if !strings.ContainsRune(allowedChars, c) {
			return 0, errors.Errorf("invalid character in expression: %q", c)
		}
	}

	p := &parser{input: expression}
	val, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return 0, errors.Errorf("unexpected character at position %d", p.pos)
	}
	return val, nil
}

// parser is a recursive-descent parser with the usual precedence:
// expr = term (('+'|'-') term)* ; term = factor (('*'|'/') factor)* ;
// factor = number | '(' expr ')' | ('-'|'+') factor
type parser struct {
	input string
	pos   int
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) peek() (byte, bool) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, false
	}
	return p.input[p.pos], true
}

func (p *parser) parseExpr() (float64, error) {
	val, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		c, ok := p.peek()
		if !ok || (c != '+' && c != '-') {
			return val, nil
		}
		p.pos++
		rhs, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if c == '+' {
			val += rhs
		} else {
			val -= rhs
		}
	}
}

func (p *parser) parseTerm() (float64, error) {
	val, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		c, ok := p.peek()
		if !ok || (c != '*' && c != '/') {
			return val, nil
		}
		p.pos++
		rhs, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		if c == '*' {
			val *= rhs
		} else {
			if rhs == 0 {
				return 0, errors.New("division by zero")
			}
			val /= rhs
		}
	}
}

func (p *parser) parseFactor() (float64, error) {
	c, ok := p.peek()
	if !ok {
		return 0, errors.New("unexpected end of expression")
	}

	switch {
	case c == '(':
		p.pos++
		val, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		c, ok := p.peek()
		if !ok || c != ')' {
			return 0, errors.New("missing closing parenthesis")
		}
		p.pos++
		return val, nil
	case c == '-':
		p.pos++
		val, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		return -val, nil
	case c == '+':
		p.pos++
		return p.parseFactor()
	default:
		return p.parseNumber()
	}
}

func (p *parser) parseNumber() (float64, error) {
	p.skipSpaces()
	start := p.pos
	for p.pos < len(p.input) && (p.input[p.pos] >= '0' && p.input[p.pos] <= '9' || p.input[p.pos] == '.') {
		p.pos++
	}
	if start == p.pos {
		return 0, errors.Errorf("expected number at position %d", start)
	}
	val, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, errors.Errorf("invalid number %q", p.input[start:p.pos])
	}
	return val, nil
}
