package models

import (
	"fmt"
	"strings"
)

type ProviderKind int

const (
	UnknownProvider ProviderKind = iota
	YellowPagesUS
	YellowPagesCA
	Yelp
	Manta
	Canada411
)

func (k ProviderKind) String() string {
	switch k {
	case YellowPagesUS:
		return "yellowpages-us"
	case YellowPagesCA:
		return "yellowpages-ca"
	case Yelp:
		return "yelp"
	case Manta:
		return "manta"
	case Canada411:
		return "canada411"
	default:
		return "unknown"
	}
}

// ParseProviderKind maps a configuration token back to its kind.
func ParseProviderKind(s string) (ProviderKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yellowpages-us":
		return YellowPagesUS, nil
	case "yellowpages-ca":
		return YellowPagesCA, nil
	case "yelp":
		return Yelp, nil
	case "manta":
		return Manta, nil
	case "canada411":
		return Canada411, nil
	default:
		return UnknownProvider, fmt.Errorf("unknown provider kind %q", s)
	}
}
