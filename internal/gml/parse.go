package gml

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"
)

type valueKind int

const (
	intValue valueKind = iota
	floatValue
	stringValue
	listValue
)

// pair is one key/value entry of a GML list.
type pair struct {
	key  string
	kind valueKind
	i    int64
	f    float64
	s    string
	list []pair
}

// number returns the value of a numeric pair.
func (p pair) number() (float64, bool) {
	switch p.kind {
	case intValue:
		return float64(p.i), true
	case floatValue:
		return p.f, true
	}
	return 0, false
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokKey
	tokInt
	tokFloat
	tokString
	tokOpen
	tokClose
)

type token struct {
	kind tokenKind
	text string
	line int
}

type scanner struct {
	r    *bufio.Reader
	line int
}

func newScanner(r io.Reader) *scanner {
	return &scanner{r: bufio.NewReader(r), line: 1}
}

func (s *scanner) read() (rune, bool) {
	c, _, err := s.r.ReadRune()
	if err != nil {
		return 0, false
	}
	if c == '\n' {
		s.line++
	}
	return c, true
}

func (s *scanner) unread(c rune) {
	if c == '\n' {
		s.line--
	}
	_ = s.r.UnreadRune()
}

func (s *scanner) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformed, s.line, fmt.Sprintf(format, args...))
}

func (s *scanner) next() (token, error) {
	for {
		c, ok := s.read()
		if !ok {
			return token{kind: tokEOF, line: s.line}, nil
		}
		switch {
		case unicode.IsSpace(c):
			continue
		case c == '#':
			for c != '\n' {
				if c, ok = s.read(); !ok {
					return token{kind: tokEOF, line: s.line}, nil
				}
			}
			continue
		case c == '[':
			return token{kind: tokOpen, line: s.line}, nil
		case c == ']':
			return token{kind: tokClose, line: s.line}, nil
		case c == '"':
			return s.str()
		case unicode.IsDigit(c) || c == '.' || c == '+' || c == '-':
			return s.number(c)
		case unicode.IsLetter(c) || c == '_':
			return s.key(c)
		default:
			return token{}, s.errorf("unexpected character %q", c)
		}
	}
}

func (s *scanner) str() (token, error) {
	line := s.line
	var b strings.Builder
	for {
		c, ok := s.read()
		if !ok {
			return token{}, s.errorf("unterminated string")
		}
		if c == '"' {
			return token{kind: tokString, text: unescape(b.String()), line: line}, nil
		}
		b.WriteRune(c)
	}
}

func (s *scanner) number(first rune) (token, error) {
	var b strings.Builder
	b.WriteRune(first)
	isFloat := first == '.'
	for {
		c, ok := s.read()
		if !ok {
			break
		}
		if unicode.IsSpace(c) || c == ']' || c == '[' {
			s.unread(c)
			break
		}
		if c == '.' || unicode.IsLetter(c) {
			isFloat = true
		}
		b.WriteRune(c)
	}
	text := b.String()
	if isFloat {
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			return token{}, s.errorf("bad number %q", text)
		}
		return token{kind: tokFloat, text: text, line: s.line}, nil
	}
	if _, err := strconv.ParseInt(text, 10, 64); err != nil {
		return token{}, s.errorf("bad integer %q", text)
	}
	return token{kind: tokInt, text: text, line: s.line}, nil
}

func nonFinite(word string) (float64, bool) {
	switch word {
	case "NaN":
		return math.NaN(), true
	case "Inf":
		return math.Inf(1), true
	}
	return 0, false
}

func (s *scanner) key(first rune) (token, error) {
	var b strings.Builder
	b.WriteRune(first)
	for {
		c, ok := s.read()
		if !ok {
			break
		}
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' {
			s.unread(c)
			break
		}
		b.WriteRune(c)
	}
	return token{kind: tokKey, text: b.String(), line: s.line}, nil
}

// parse reads a whole document. nested is true inside brackets, where a
// closing bracket ends the list.
func parse(s *scanner, nested bool) ([]pair, error) {
	var out []pair
	for {
		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokEOF:
			if nested {
				return nil, s.errorf("missing ]")
			}
			return out, nil
		case tokClose:
			if !nested {
				return nil, s.errorf("unexpected ]")
			}
			return out, nil
		case tokKey:
		default:
			return nil, s.errorf("expected key, got %q", tok.text)
		}

		p := pair{key: tok.text}
		val, err := s.next()
		if err != nil {
			return nil, err
		}
		switch val.kind {
		case tokInt:
			p.kind = intValue
			p.i, _ = strconv.ParseInt(val.text, 10, 64)
		case tokFloat:
			p.kind = floatValue
			p.f, _ = strconv.ParseFloat(val.text, 64)
		case tokString:
			p.kind = stringValue
			p.s = val.text
		case tokKey:
			// bare NaN and Inf are the only words allowed as values
			f, ok := nonFinite(val.text)
			if !ok {
				return nil, s.errorf("missing value for %q", p.key)
			}
			p.kind = floatValue
			p.f = f
		case tokOpen:
			p.kind = listValue
			if p.list, err = parse(s, true); err != nil {
				return nil, err
			}
		default:
			return nil, s.errorf("missing value for %q", p.key)
		}
		out = append(out, p)
	}
}

var entities = strings.NewReplacer("&quot;", `"`, "&amp;", "&", "&lt;", "<", "&gt;", ">")

var escapes = strings.NewReplacer("&", "&amp;", `"`, "&quot;")

func unescape(s string) string { return entities.Replace(s) }

func escape(s string) string { return escapes.Replace(s) }
