package mathexpr

import (
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPercent
	tokPower
	tokLParen
	tokRParen
	tokComma
	tokEOF
)

type token struct {
	kind  tokenKind
	value float64
	text  string
	pos   int
}

// allowedNames is the complete set of identifiers an expression may use.
// Everything else is rejected before evaluation.
var allowedNames = map[string]struct{}{
	"sqrt": {}, "abs": {}, "round": {}, "pow": {},
	"min": {}, "max": {},
	"sin": {}, "cos": {}, "tan": {}, "log": {},
	"floor": {}, "ceil": {},
	"pi": {}, "e": {},
}

func lex(input string) ([]token, error) {
	var tokens []token
	runes := []rune(input)
	i := 0

	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || r == '.':
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			// optional exponent suffix
			if i < len(runes) && (runes[i] == 'e' || runes[i] == 'E') {
				j := i + 1
				if j < len(runes) && (runes[j] == '+' || runes[j] == '-') {
					j++
				}
				if j < len(runes) && unicode.IsDigit(runes[j]) {
					i = j
					for i < len(runes) && unicode.IsDigit(runes[i]) {
						i++
					}
				}
			}
			text := string(runes[start:i])
			value, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, &SyntaxError{Pos: start, Msg: "bad number " + strconv.Quote(text)}
			}
			tokens = append(tokens, token{kind: tokNumber, value: value, text: text, pos: start})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			word := string(runes[start:i])
			if _, ok := allowedNames[strings.ToLower(word)]; !ok {
				return nil, &NotAllowedError{Word: word}
			}
			tokens = append(tokens, token{kind: tokIdent, text: strings.ToLower(word), pos: start})
		case r == '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				tokens = append(tokens, token{kind: tokPower, text: "**", pos: i})
				i += 2
			} else {
				tokens = append(tokens, token{kind: tokStar, text: "*", pos: i})
				i++
			}
		case r == '^':
			tokens = append(tokens, token{kind: tokPower, text: "^", pos: i})
			i++
		case r == '+':
			tokens = append(tokens, token{kind: tokPlus, text: "+", pos: i})
			i++
		case r == '-':
			tokens = append(tokens, token{kind: tokMinus, text: "-", pos: i})
			i++
		case r == '/':
			tokens = append(tokens, token{kind: tokSlash, text: "/", pos: i})
			i++
		case r == '%':
			tokens = append(tokens, token{kind: tokPercent, text: "%", pos: i})
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == ',':
			tokens = append(tokens, token{kind: tokComma, text: ",", pos: i})
			i++
		default:
			return nil, &SyntaxError{Pos: i, Msg: "unexpected character " + strconv.QuoteRune(r)}
		}
	}

	tokens = append(tokens, token{kind: tokEOF, pos: len(runes)})
	return tokens, nil
}
