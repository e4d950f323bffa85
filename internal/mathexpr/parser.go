package mathexpr

import (
	"errors"
	"math"
	"strconv"
)

// Grammar (power is right-associative and binds tighter than unary minus):
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/" | "%") unary }
//	unary   = ("+" | "-") unary | power
//	power   = primary [ ("**" | "^") unary ]
//	primary = number | const | func "(" expr { "," expr } ")" | "(" expr ")"

type node interface {
	eval() (float64, error)
}

type numberNode struct {
	value float64
}

func (n numberNode) eval() (float64, error) { return n.value, nil }

type constNode struct {
	name string
}

func (n constNode) eval() (float64, error) {
	switch n.name {
	case "pi":
		return math.Pi, nil
	case "e":
		return math.E, nil
	}
	return 0, errors.New("unknown constant " + n.name)
}

type unaryNode struct {
	negative bool
	operand  node
}

func (n unaryNode) eval() (float64, error) {
	v, err := n.operand.eval()
	if err != nil {
		return 0, err
	}
	if n.negative {
		return -v, nil
	}
	return v, nil
}

type binaryNode struct {
	op          tokenKind
	left, right node
}

func (n binaryNode) eval() (float64, error) {
	left, err := n.left.eval()
	if err != nil {
		return 0, err
	}
	right, err := n.right.eval()
	if err != nil {
		return 0, err
	}
	switch n.op {
	case tokPlus:
		return left + right, nil
	case tokMinus:
		return left - right, nil
	case tokStar:
		return left * right, nil
	case tokSlash:
		if right == 0 {
			return 0, ErrDivisionByZero
		}
		return left / right, nil
	case tokPercent:
		if right == 0 {
			return 0, ErrDivisionByZero
		}
		return math.Mod(left, right), nil
	case tokPower:
		return math.Pow(left, right), nil
	}
	return 0, errors.New("unknown operator")
}

type callNode struct {
	name string
	args []node
}

func (n callNode) eval() (float64, error) {
	args := make([]float64, len(n.args))
	for i, a := range n.args {
		v, err := a.eval()
		if err != nil {
			return 0, err
		}
		args[i] = v
	}
	return applyFunc(n.name, args)
}

func applyFunc(name string, args []float64) (float64, error) {
	switch name {
	case "sqrt":
		if err := checkArity(name, args, 1, 1); err != nil {
			return 0, err
		}
		if args[0] < 0 {
			return 0, errors.New("math domain error")
		}
		return math.Sqrt(args[0]), nil
	case "abs":
		if err := checkArity(name, args, 1, 1); err != nil {
			return 0, err
		}
		return math.Abs(args[0]), nil
	case "round":
		if err := checkArity(name, args, 1, 2); err != nil {
			return 0, err
		}
		if len(args) == 2 {
			return roundTo(args[0], int(args[1])), nil
		}
		return math.Round(args[0]), nil
	case "pow":
		if err := checkArity(name, args, 2, 2); err != nil {
			return 0, err
		}
		return math.Pow(args[0], args[1]), nil
	case "min":
		if err := checkArity(name, args, 2, -1); err != nil {
			return 0, err
		}
		v := args[0]
		for _, a := range args[1:] {
			v = math.Min(v, a)
		}
		return v, nil
	case "max":
		if err := checkArity(name, args, 2, -1); err != nil {
			return 0, err
		}
		v := args[0]
		for _, a := range args[1:] {
			v = math.Max(v, a)
		}
		return v, nil
	case "sin":
		if err := checkArity(name, args, 1, 1); err != nil {
			return 0, err
		}
		return math.Sin(args[0]), nil
	case "cos":
		if err := checkArity(name, args, 1, 1); err != nil {
			return 0, err
		}
		return math.Cos(args[0]), nil
	case "tan":
		if err := checkArity(name, args, 1, 1); err != nil {
			return 0, err
		}
		return math.Tan(args[0]), nil
	case "log":
		if err := checkArity(name, args, 1, 2); err != nil {
			return 0, err
		}
		if args[0] <= 0 {
			return 0, errors.New("math domain error")
		}
		if len(args) == 2 {
			if args[1] <= 0 || args[1] == 1 {
				return 0, errors.New("math domain error")
			}
			return math.Log(args[0]) / math.Log(args[1]), nil
		}
		return math.Log(args[0]), nil
	case "floor":
		if err := checkArity(name, args, 1, 1); err != nil {
			return 0, err
		}
		return math.Floor(args[0]), nil
	case "ceil":
		if err := checkArity(name, args, 1, 1); err != nil {
			return 0, err
		}
		return math.Ceil(args[0]), nil
	}
	return 0, errors.New(name + " is not callable")
}

// checkArity validates len(args) in [min, max]; max < 0 means unbounded.
func checkArity(name string, args []float64, min, max int) error {
	if len(args) < min || (max >= 0 && len(args) > max) {
		return errors.New(name + " called with " + strconv.Itoa(len(args)) + " arguments")
	}
	return nil
}

type parser struct {
	tokens []token
	pos    int
}

func parse(tokens []token) (node, error) {
	p := &parser{tokens: tokens}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, &SyntaxError{Pos: p.peek().pos, Msg: "unexpected " + strconv.Quote(p.peek().text)}
	}
	return n, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokPlus || p.peek().kind == tokMinus {
		op := p.next().kind
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokStar || p.peek().kind == tokSlash || p.peek().kind == tokPercent {
		op := p.next().kind
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	switch p.peek().kind {
	case tokMinus:
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{negative: true, operand: operand}, nil
	case tokPlus:
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind == tokPower {
		p.next()
		// right-associative: the exponent may itself be signed or a power
		exponent, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return binaryNode{op: tokPower, left: base, right: exponent}, nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (node, error) {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.next()
		return numberNode{value: t.value}, nil
	case tokIdent:
		p.next()
		if t.text == "pi" || t.text == "e" {
			return constNode{name: t.text}, nil
		}
		if p.peek().kind != tokLParen {
			return nil, &SyntaxError{Pos: p.peek().pos, Msg: t.text + " requires arguments"}
		}
		p.next()
		var args []node
		if p.peek().kind != tokRParen {
			for {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.peek().kind != tokComma {
					break
				}
				p.next()
			}
		}
		if p.peek().kind != tokRParen {
			return nil, &SyntaxError{Pos: p.peek().pos, Msg: "expected closing parenthesis"}
		}
		p.next()
		return callNode{name: t.text, args: args}, nil
	case tokLParen:
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, &SyntaxError{Pos: p.peek().pos, Msg: "expected closing parenthesis"}
		}
		p.next()
		return inner, nil
	}
	return nil, &SyntaxError{Pos: t.pos, Msg: "unexpected " + strconv.Quote(t.text)}
}
