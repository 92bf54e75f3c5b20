package payoff

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnsupported is returned for option configurations outside the catalog.
var ErrUnsupported = errors.New("payoff: unsupported option configuration")

// Style determines on which periods the option may be exercised.
type Style int

const (
	European Style = iota
	American
	Bermuda
)

// Kind is the shape of the payoff.
type Kind int

const (
	Vanilla Kind = iota
	Binary
	AssetOrNothing
)

type Side int

const (
	Call Side = iota
	Put
)

var (
	styleNames = map[Style]string{European: "European", American: "American", Bermuda: "Bermuda"}
	kindNames  = map[Kind]string{Vanilla: "Vanilla", Binary: "Binary", AssetOrNothing: "AssetOrNothing"}
	sideNames  = map[Side]string{Call: "Call", Put: "Put"}
)

func (s Style) String() string { return name(styleNames, s) }
func (k Kind) String() string  { return name(kindNames, k) }
func (s Side) String() string  { return name(sideNames, s) }

func name[T comparable](names map[T]string, v T) string {
	if n, ok := names[v]; ok {
		return n
	}
	return fmt.Sprintf("unknown(%d)", any(v))
}

func parse[T comparable](names map[T]string, s string) (T, error) {
	for v, n := range names {
		if strings.EqualFold(n, s) {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: %q", ErrUnsupported, s)
}

func ParseStyle(s string) (Style, error) { return parse(styleNames, s) }
func ParseSide(s string) (Side, error)   { return parse(sideNames, s) }

// ParseKind accepts the catalog names plus "" and "cash-or-nothing" aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "":
		return Vanilla, nil
	case "cash-or-nothing", "cashornothing", "digital":
		return Binary, nil
	case "asset-or-nothing":
		return AssetOrNothing, nil
	}
	return parse(kindNames, s)
}

// Contract describes a single-asset option.
type Contract struct {
	Style  Style
	Kind   Kind
	Side   Side
	Strike float64
	// Frequency is the exercise period spacing of a Bermuda option.
	Frequency int
}

// Parse builds a validated contract from front-end style/kind/side names.
func Parse(style, kind, side string, strike float64, freq int) (Contract, error) {
	st, err := ParseStyle(style)
	if err != nil {
		return Contract{}, err
	}
	k, err := ParseKind(kind)
	if err != nil {
		return Contract{}, err
	}
	sd, err := ParseSide(side)
	if err != nil {
		return Contract{}, err
	}
	c := Contract{Style: st, Kind: k, Side: sd, Strike: strike, Frequency: freq}
	return c, c.Validate()
}

func (c Contract) Validate() error {
	if _, ok := styleNames[c.Style]; !ok {
		return fmt.Errorf("%w: style %d", ErrUnsupported, c.Style)
	}
	if _, ok := kindNames[c.Kind]; !ok {
		return fmt.Errorf("%w: kind %d", ErrUnsupported, c.Kind)
	}
	if _, ok := sideNames[c.Side]; !ok {
		return fmt.Errorf("%w: side %d", ErrUnsupported, c.Side)
	}
	if c.Style == Bermuda && c.Frequency < 1 {
		return fmt.Errorf("%w: bermuda frequency %d", ErrUnsupported, c.Frequency)
	}
	return nil
}

func (c Contract) String() string {
	return fmt.Sprintf("%s %s %s K=%g", c.Style, c.Kind, c.Side, c.Strike)
}

// Intrinsic is the elementwise payoff of a price against a strike.
func Intrinsic(k Kind, s Side, price, strike float64) float64 {
	switch k {
	case Binary:
		if (s == Call && price >= strike) || (s == Put && price <= strike) {
			return 1
		}
		return 0
	case AssetOrNothing:
		if (s == Call && price >= strike) || (s == Put && price <= strike) {
			return price
		}
		return 0
	default:
		if s == Call {
			return math.Max(price-strike, 0)
		}
		return math.Max(strike-price, 0)
	}
}
