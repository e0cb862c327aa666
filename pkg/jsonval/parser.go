package jsonval

import (
	"bufio"
	"io"
	"math"

	"github.com/rtlgraph/rtlgraph/pkg/errors"
)

// Options controls how strictly the parser treats malformed-but-parseable
// input. The zero value matches the historical tolerant behavior.
type Options struct {
	// StrictSeparators rejects repeated, leading, and trailing commas in
	// arrays and objects, and requires exactly one colon between an object
	// key and its value. When false, separators are skipped like whitespace.
	StrictSeparators bool

	// RejectDuplicateKeys fails parsing when an object contains the same
	// key twice. When false, the last occurrence wins.
	RejectDuplicateKeys bool
}

// Parse reads exactly one value from the front of r with default options.
// Leading whitespace is consumed; content after the value is not read
// beyond one byte of lookahead.
func Parse(r io.Reader) (*Value, error) {
	return ParseWith(r, Options{})
}

// ParseWith reads exactly one value from the front of r using opts.
func ParseWith(r io.Reader, opts Options) (*Value, error) {
	return NewParser(r, opts).Parse()
}

// Parser reads a sequence of values from a stream. Each call to [Parser.Parse]
// consumes one value; the stream cursor is left immediately after it, so
// concatenated documents can be read back to back.
type Parser struct {
	r    *bufio.Reader
	opts Options
	pos  int // byte offset of the next unread byte
}

// NewParser returns a parser reading from r with the given options.
func NewParser(r io.Reader, opts Options) *Parser {
	return &Parser{r: bufio.NewReader(r), opts: opts}
}

// Parse consumes one value from the stream. On failure the stream position
// is undefined and the parser must not be reused.
func (p *Parser) Parse() (*Value, error) {
	return p.parseValue()
}

// next returns the next byte of the stream. io.EOF is returned as-is so
// callers can decide whether end-of-input is fatal at their position.
func (p *Parser) next() (byte, error) {
	b, err := p.r.ReadByte()
	if err == io.EOF {
		return 0, io.EOF
	}
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeStream, err, "read input at offset %d", p.pos)
	}
	p.pos++
	return b, nil
}

// unread pushes the last byte back. Only valid directly after next.
func (p *Parser) unread() {
	_ = p.r.UnreadByte()
	p.pos--
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// parseValue dispatches on the first significant character. Once the type
// is determined there is no backtracking.
func (p *Parser) parseValue() (*Value, error) {
	for {
		ch, err := p.next()
		if err == io.EOF {
			return nil, errors.New(errors.ErrCodeStream, "unexpected end of input at offset %d", p.pos)
		}
		if err != nil {
			return nil, err
		}

		switch {
		case isSpace(ch):
			continue
		case ch == '"':
			return p.parseString()
		case ch >= '0' && ch <= '9':
			return p.parseInt(ch)
		case ch == '[':
			return p.parseArray()
		case ch == '{':
			return p.parseObject()
		default:
			return nil, errors.New(errors.ErrCodeSyntax, "unexpected character %q at offset %d", ch, p.pos-1)
		}
	}
}

// parseString reads the remainder of a string after the opening quote.
// A backslash escapes the following byte: the byte is copied verbatim and
// the backslash dropped. No semantic decoding (\n, \uXXXX) is performed.
func (p *Parser) parseString() (*Value, error) {
	var buf []byte
	for {
		ch, err := p.next()
		if err == io.EOF {
			return nil, errors.New(errors.ErrCodeStream, "unterminated string at offset %d", p.pos)
		}
		if err != nil {
			return nil, err
		}

		switch ch {
		case '"':
			return &Value{kind: KindString, str: string(buf)}, nil
		case '\\':
			esc, err := p.next()
			if err == io.EOF {
				return nil, errors.New(errors.ErrCodeStream, "unterminated string escape at offset %d", p.pos)
			}
			if err != nil {
				return nil, err
			}
			buf = append(buf, esc)
		default:
			buf = append(buf, ch)
		}
	}
}

// parseInt reads the remainder of an unsigned integer whose first digit has
// already been consumed. Values that do not fit a 32-bit signed integer are
// rejected rather than silently wrapped.
func (p *Parser) parseInt(first byte) (*Value, error) {
	n := int64(first - '0')
	for {
		ch, err := p.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if ch < '0' || ch > '9' {
			p.unread()
			break
		}
		n = n*10 + int64(ch-'0')
		if n > math.MaxInt32 {
			return nil, errors.New(errors.ErrCodeSyntax, "integer overflows 32 bits at offset %d", p.pos)
		}
	}
	return &Value{kind: KindInt, num: int(n)}, nil
}

func (p *Parser) parseArray() (*Value, error) {
	v := &Value{kind: KindArray}
	sawValue := false
	sawComma := false

	for {
		ch, err := p.next()
		if err == io.EOF {
			return nil, errors.New(errors.ErrCodeStream, "unterminated array at offset %d", p.pos)
		}
		if err != nil {
			return nil, err
		}

		switch {
		case isSpace(ch):
			continue
		case ch == ',':
			if p.opts.StrictSeparators && (!sawValue || sawComma) {
				return nil, errors.New(errors.ErrCodeSyntax, "unexpected ',' at offset %d", p.pos-1)
			}
			sawComma = true
			continue
		case ch == ']':
			if p.opts.StrictSeparators && sawComma {
				return nil, errors.New(errors.ErrCodeSyntax, "trailing ',' before ']' at offset %d", p.pos-1)
			}
			return v, nil
		}

		if p.opts.StrictSeparators && sawValue && !sawComma {
			return nil, errors.New(errors.ErrCodeSyntax, "expected ',' or ']' at offset %d", p.pos-1)
		}
		p.unread()
		elem, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		v.arr = append(v.arr, elem)
		sawValue = true
		sawComma = false
	}
}

func (p *Parser) parseObject() (*Value, error) {
	v := &Value{kind: KindObject, obj: make(map[string]*Value)}
	sawValue := false
	sawComma := false

	for {
		ch, err := p.next()
		if err == io.EOF {
			return nil, errors.New(errors.ErrCodeStream, "unterminated object at offset %d", p.pos)
		}
		if err != nil {
			return nil, err
		}

		switch {
		case isSpace(ch):
			continue
		case ch == ',':
			if p.opts.StrictSeparators && (!sawValue || sawComma) {
				return nil, errors.New(errors.ErrCodeSyntax, "unexpected ',' at offset %d", p.pos-1)
			}
			sawComma = true
			continue
		case ch == '}':
			if p.opts.StrictSeparators && sawComma {
				return nil, errors.New(errors.ErrCodeSyntax, "trailing ',' before '}' at offset %d", p.pos-1)
			}
			return v, nil
		}

		if p.opts.StrictSeparators && sawValue && !sawComma {
			return nil, errors.New(errors.ErrCodeSyntax, "expected ',' or '}' at offset %d", p.pos-1)
		}
		p.unread()

		key, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if key.kind != KindString {
			return nil, errors.New(errors.ErrCodeSyntax, "object key is not a string (got %s)", key.kind)
		}

		if err := p.skipColon(); err != nil {
			return nil, err
		}

		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}

		if _, dup := v.obj[key.str]; dup {
			if p.opts.RejectDuplicateKeys {
				return nil, errors.New(errors.ErrCodeSyntax, "duplicate object key %q", key.str)
			}
			// Last wins; the key keeps its original position.
		} else {
			v.keys = append(v.keys, key.str)
		}
		v.obj[key.str] = val

		sawValue = true
		sawComma = false
	}
}

// skipColon consumes the separator between an object key and its value.
// In tolerant mode any run of whitespace and colons is skipped, including
// none at all. In strict mode exactly one colon is required.
func (p *Parser) skipColon() error {
	if p.opts.StrictSeparators {
		for {
			ch, err := p.next()
			if err == io.EOF {
				return errors.New(errors.ErrCodeStream, "unterminated object at offset %d", p.pos)
			}
			if err != nil {
				return err
			}
			if isSpace(ch) {
				continue
			}
			if ch != ':' {
				return errors.New(errors.ErrCodeSyntax, "expected ':' at offset %d", p.pos-1)
			}
			return nil
		}
	}

	for {
		ch, err := p.next()
		if err == io.EOF {
			return errors.New(errors.ErrCodeStream, "unterminated object at offset %d", p.pos)
		}
		if err != nil {
			return err
		}
		if isSpace(ch) || ch == ':' {
			continue
		}
		p.unread()
		return nil
	}
}
