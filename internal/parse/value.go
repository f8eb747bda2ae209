package parse

import (
	"math/big"
	"strings"

	"statcalc/domain/core"
)

// unknownTokens mark a value the caller wants solved.
var unknownTokens = map[string]bool{
	"-":    true,
	"?":    true,
	"none": true,
	"":     true,
}

// ParseValue reads one token into an exact value. Integers, decimals
// (with optional exponent) and a/b fractions are accepted; "-" and "?"
// denote an unknown. key is only used to name the parameter on failure.
func ParseValue(key, token string) (core.Value, error) {
	t := strings.TrimSpace(token)
	if unknownTokens[strings.ToLower(t)] {
		return core.Unknown(), nil
	}

	r, err := parseRat(key, t)
	if err != nil {
		return core.Value{}, err
	}
	return core.Known(core.NewRat(r)), nil
}

// ParseNumber is ParseValue that rejects the unknown placeholder.
func ParseNumber(key, token string) (core.Number, error) {
	v, err := ParseValue(key, token)
	if err != nil {
		return core.Number{}, err
	}
	n, ok := v.Number()
	if !ok {
		return core.Number{}, core.NewParseError(key, token)
	}
	return n, nil
}

func parseRat(key, t string) (*big.Rat, error) {
	if num, den, isFraction := strings.Cut(t, "/"); isFraction {
		if strings.Contains(den, "/") {
			return nil, core.NewParseError(key, t)
		}
		a, err := parseDecimal(key, num)
		if err != nil {
			return nil, err
		}
		b, err := parseDecimal(key, den)
		if err != nil {
			return nil, err
		}
		if b.Sign() == 0 {
			return nil, &core.ParamError{Kind: core.ErrParse, Param: key, Reason: "division by zero in " + t}
		}
		return a.Quo(a, b), nil
	}
	return parseDecimal(key, t)
}

func parseDecimal(key, t string) (*big.Rat, error) {
	t = strings.TrimSpace(t)
	if t == "" || strings.ContainsAny(t, "/ ") {
		return nil, core.NewParseError(key, t)
	}
	r, ok := new(big.Rat).SetString(t)
	if !ok {
		return nil, core.NewParseError(key, t)
	}
	return r, nil
}
