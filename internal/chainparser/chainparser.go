// Package chainparser implements the compact chain-text DSL of spec.md
// §4.7: one input string parses into a chain.System of one or more
// chains, each an ordered sequence or a named mapping of elements.
package chainparser

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"shortcircuitcalc/internal/chain"
	"shortcircuitcalc/internal/config"
	"shortcircuitcalc/internal/elements"
	"shortcircuitcalc/internal/errs"
	"shortcircuitcalc/internal/numeric"
)

// iterableElem matches one unlabeled element: type(args). Arguments
// never contain parentheses, so a lazy match up to the next ')' is
// unambiguous — the same simplifying assumption the original regex
// grammar relies on.
var iterableElem = regexp.MustCompile(`(\w+)\(([^()]*)\)`)

// mappingElem matches one labeled element: name: type(args).
var mappingElem = regexp.MustCompile(`(\w+)\s*:\s*(\w+)\(([^()]*)\)`)

// Parse parses text into a System per the grammar of spec.md §4.7,
// resolving each element against cat (and settings, for T's system
// voltage).
func Parse(ctx context.Context, cat elements.Catalog, settings *config.Settings, text string) (*chain.System, error) {
	chainTexts := splitChains(text)
	if len(chainTexts) == 0 {
		return nil, errs.New(errs.BadInput, "empty chain expression")
	}

	chains := make([]*chain.Chain, 0, len(chainTexts))
	for _, ct := range chainTexts {
		c, err := parseChain(ctx, cat, settings, ct)
		if err != nil {
			return nil, err
		}
		chains = append(chains, c)
	}
	return chain.NewSystem(chains), nil
}

// splitChains splits system text on ';' that appears outside any
// parentheses (the chain delimiter of spec.md §4.7).
func splitChains(text string) []string {
	var out []string
	depth := 0
	start := 0
	for i, r := range text {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ';':
			if depth == 0 {
				if s := strings.TrimSpace(text[start:i]); s != "" {
					out = append(out, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

func parseChain(ctx context.Context, cat elements.Catalog, settings *config.Settings, text string) (*chain.Chain, error) {
	mappingMatches := mappingElem.FindAllStringSubmatch(text, -1)
	iterableMatches := iterableElem.FindAllStringSubmatch(text, -1)

	switch {
	case len(mappingMatches) == 0:
		elems := make([]elements.Element, 0, len(iterableMatches))
		for _, m := range iterableMatches {
			e, err := build(ctx, cat, settings, m[1], m[2])
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		return chain.NewSequence(elems), nil

	case len(mappingMatches) == len(iterableMatches):
		names := make([]string, 0, len(mappingMatches))
		elems := make([]elements.Element, 0, len(mappingMatches))
		for _, m := range mappingMatches {
			e, err := build(ctx, cat, settings, m[2], m[3])
			if err != nil {
				return nil, err
			}
			names = append(names, m[1])
			elems = append(elems, e)
		}
		return chain.NewNamed(names, elems)

	default:
		return nil, errs.New(errs.BadInput, "chain mixes named and unnamed elements: %q", text)
	}
}

// splitArgs splits a comma-separated argument list, respecting single-
// and double-quoted tokens so a comma inside a quoted string does not
// split it.
func splitArgs(args string) []string {
	args = strings.TrimSpace(args)
	if args == "" {
		return nil
	}
	var out []string
	var quote rune
	start := 0
	for i, r := range args {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ',':
			out = append(out, strings.TrimSpace(args[start:i]))
			start = i + 1
		}
	}
	out = append(out, strings.TrimSpace(args[start:]))
	return out
}

func unquote(tok string) string {
	if len(tok) >= 2 {
		if (tok[0] == '\'' && tok[len(tok)-1] == '\'') || (tok[0] == '"' && tok[len(tok)-1] == '"') {
			return tok[1 : len(tok)-1]
		}
	}
	return tok
}

func parseInt(tok string) (int64, error) {
	i, err := strconv.ParseInt(strings.TrimSpace(tok), 10, 64)
	if err != nil {
		return 0, errs.Wrap(errs.BadInput, err, "expected integer argument, got %q", tok)
	}
	return i, nil
}

func parseDecimal(tok string) (numeric.Decimal, error) {
	d, err := numeric.NewFromString(strings.TrimSpace(tok))
	if err != nil {
		return numeric.Zero, errs.Wrap(errs.BadInput, err, "expected decimal argument, got %q", tok)
	}
	return d, nil
}

func build(ctx context.Context, cat elements.Catalog, settings *config.Settings, typeName, rawArgs string) (elements.Element, error) {
	args := splitArgs(rawArgs)

	arity := func(n int) error {
		if len(args) != n {
			return errs.New(errs.BadInput, "%s expects %d argument(s), got %d", typeName, n, len(args))
		}
		return nil
	}

	switch typeName {
	case "T":
		if err := arity(2); err != nil {
			return nil, err
		}
		power, err := parseInt(args[0])
		if err != nil {
			return nil, err
		}
		return elements.NewT(cat, settings, power, unquote(args[1]))

	case "W":
		if err := arity(4); err != nil {
			return nil, err
		}
		amount, err := parseInt(args[1])
		if err != nil {
			return nil, err
		}
		rangeVal, err := parseDecimal(args[2])
		if err != nil {
			return nil, err
		}
		length, err := parseDecimal(args[3])
		if err != nil {
			return nil, err
		}
		return elements.NewW(cat, unquote(args[0]), amount, rangeVal, length)

	case "Q":
		if err := arity(2); err != nil {
			return nil, err
		}
		current, err := parseInt(args[0])
		if err != nil {
			return nil, err
		}
		return elements.NewQ(cat, current, unquote(args[1]))

	case "QF":
		if err := arity(1); err != nil {
			return nil, err
		}
		current, err := parseInt(args[0])
		if err != nil {
			return nil, err
		}
		return elements.NewQF(cat, current)

	case "QS":
		if err := arity(1); err != nil {
			return nil, err
		}
		current, err := parseInt(args[0])
		if err != nil {
			return nil, err
		}
		return elements.NewQS(cat, current)

	case "R":
		if err := arity(1); err != nil {
			return nil, err
		}
		return elements.NewR(cat, unquote(args[0]))

	case "Line":
		if err := arity(0); err != nil {
			return nil, err
		}
		return elements.NewLine(cat), nil

	case "Arc":
		if err := arity(0); err != nil {
			return nil, err
		}
		return elements.NewArc(cat), nil

	default:
		return nil, errs.New(errs.BadInput, "unknown element type %q", typeName)
	}
}
