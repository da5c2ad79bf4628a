// Package view holds the pure projections a client applies to the last
// fetched kata list: completion filters, header counts and the difficulty
// choices offered by the entry form.
package view

import (
	"fmt"

	"github.com/jaekwang-park/kata-api/internal/model"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter maps a query value to a Filter. The empty string means all.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	default:
		return "", fmt.Errorf("unknown filter %q", s)
	}
}

// Apply returns the katas visible under f, preserving order. The input slice
// is not modified.
func Apply(katas []model.Kata, f Filter) []model.Kata {
	out := make([]model.Kata, 0, len(katas))
	for _, k := range katas {
		switch f {
		case FilterActive:
			if k.Completed {
				continue
			}
		case FilterCompleted:
			if !k.Completed {
				continue
			}
		}
		out = append(out, k)
	}
	return out
}

func Count(katas []model.Kata) model.KataStats {
	stats := model.KataStats{Total: len(katas)}
	for _, k := range katas {
		if k.Completed {
			stats.Completed++
		}
	}
	stats.Active = stats.Total - stats.Completed
	return stats
}

// Difficulties are the kyu ranks offered by the entry form, easiest first.
// The service itself accepts any difficulty string.
var Difficulties = []string{"8kyu", "7kyu", "6kyu", "5kyu", "4kyu", "3kyu", "2kyu", "1kyu"}
