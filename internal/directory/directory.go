// Package directory maintains the list of servers available to connect to:
// fetching it from the provider API, caching it on disk, and the predicate,
// sort and selection helpers used to pick a server from it.
package directory

import (
	"math/rand"
	"sort"

	"tunneld/internal/config"
	"tunneld/internal/domain"
)

type Directory []domain.LogicalServer

// AsMap returns an id→record lookup table.
func (d Directory) AsMap() map[string]domain.LogicalServer {
	m := make(map[string]domain.LogicalServer, len(d))
	for _, s := range d {
		m[s.ID] = s
	}
	return m
}

func (d Directory) Filter(f config.Filters) Directory {
	mask := f.FeatureMask()
	out := make(Directory, 0, len(d))
	for _, s := range d {
		if s.Load > f.MaxLoad {
			continue
		}
		switch f.Tier {
		case "premium":
			if s.Tier != 2 {
				continue
			}
		case "free":
			if s.Tier != 0 {
				continue
			}
		}
		if f.Country != "" && s.ExitCountry != f.Country {
			continue
		}
		if !s.Features.Contains(mask) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// SortByScore orders servers fastest first. Lower score is better.
func (d Directory) SortByScore() Directory {
	sort.SliceStable(d, func(i, j int) bool { return d[i].Score < d[j].Score })
	return d
}

func (d Directory) SortByLoad() Directory {
	sort.SliceStable(d, func(i, j int) bool { return d[i].Load < d[j].Load })
	return d
}

// Select picks one server according to the configured strategy, or nil when
// the directory is empty.
func (d Directory) Select(mode config.Select) *domain.LogicalServer {
	if len(d) == 0 {
		return nil
	}
	switch mode {
	case config.SelectRandom:
		s := d[rand.Intn(len(d))]
		return &s
	case config.SelectLeastLoad:
		s := d.SortByLoad()[0]
		return &s
	default:
		s := d.SortByScore()[0]
		return &s
	}
}
