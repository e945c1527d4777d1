package snapshot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wonny/snapboard/internal/contracts"
)

// LayoutPattern derives column names from placeholders:
// {n} = 1-based entity number, {i} = 0-based index, {tf} = timeframe.
// Set Flag for boolean columns, or Fast and Slow for a derived comparison.
type LayoutPattern struct {
	Name string `yaml:"name" json:"name"`
	Flag string `yaml:"flag" json:"flag,omitempty"`
	Fast string `yaml:"fast" json:"fast,omitempty"`
	Slow string `yaml:"slow" json:"slow,omitempty"`
}

// DefaultPattern matches the EMAs table convention (ticker1, ticker1_ema5_ema12 ...)
var DefaultPattern = LayoutPattern{
	Name: "ticker{n}",
	Fast: "ticker{n}_ema{tf}_ema12",
	Slow: "ticker{n}_ema{tf}_ema21",
}

// ExpandLayout resolves a pattern into an explicit layout once, then validates it
func ExpandLayout(entityCount int, timeframes []string, p LayoutPattern) (contracts.MatrixLayout, error) {
	layout := ExpandPattern(entityCount, timeframes, p)
	if err := ValidateLayout(layout); err != nil {
		return contracts.MatrixLayout{}, err
	}
	return layout, nil
}

// ExpandPattern resolves a pattern without validating, for callers that apply overrides first
func ExpandPattern(entityCount int, timeframes []string, p LayoutPattern) contracts.MatrixLayout {
	layout := contracts.MatrixLayout{
		Timeframes: append([]string(nil), timeframes...),
		Entities:   make([]contracts.EntityLayout, 0, max(entityCount, 0)),
	}

	for i := 0; i < entityCount; i++ {
		entity := contracts.EntityLayout{
			Index:     i,
			NameField: expand(p.Name, i, ""),
			Cells:     make([]contracts.CellSource, 0, len(timeframes)),
		}
		for _, tf := range timeframes {
			entity.Cells = append(entity.Cells, contracts.CellSource{
				Timeframe: tf,
				Flag:      expand(p.Flag, i, tf),
				Fast:      expand(p.Fast, i, tf),
				Slow:      expand(p.Slow, i, tf),
			})
		}
		layout.Entities = append(layout.Entities, entity)
	}

	return layout
}

func expand(pattern string, index int, tf string) string {
	if pattern == "" {
		return ""
	}
	return strings.NewReplacer(
		"{n}", strconv.Itoa(index+1),
		"{i}", strconv.Itoa(index),
		"{tf}", tf,
	).Replace(pattern)
}

// ValidateLayout checks that every (entity, timeframe) pair has exactly one usable source
func ValidateLayout(l contracts.MatrixLayout) error {
	if len(l.Entities) == 0 {
		return fmt.Errorf("layout has no entities")
	}
	if len(l.Timeframes) == 0 {
		return fmt.Errorf("layout has no timeframes")
	}

	seenTf := make(map[string]bool, len(l.Timeframes))
	for _, tf := range l.Timeframes {
		if tf == "" {
			return fmt.Errorf("empty timeframe")
		}
		if seenTf[tf] {
			return fmt.Errorf("duplicate timeframe %q", tf)
		}
		seenTf[tf] = true
	}

	seenSource := make(map[string]string)
	for pos, entity := range l.Entities {
		if entity.Index != pos {
			return fmt.Errorf("entity at position %d has index %d", pos, entity.Index)
		}
		if entity.NameField == "" {
			return fmt.Errorf("entity %d: empty name field", pos)
		}
		if len(entity.Cells) != len(l.Timeframes) {
			return fmt.Errorf("entity %d: %d cells for %d timeframes", pos, len(entity.Cells), len(l.Timeframes))
		}

		for j, cell := range entity.Cells {
			where := fmt.Sprintf("entity %d timeframe %s", pos, l.Timeframes[j])
			if cell.Timeframe != l.Timeframes[j] {
				return fmt.Errorf("%s: cell declares timeframe %q", where, cell.Timeframe)
			}

			var key string
			switch {
			case cell.Flag != "" && (cell.Fast != "" || cell.Slow != ""):
				return fmt.Errorf("%s: set either flag or fast/slow, not both", where)
			case cell.Flag != "":
				key = cell.Flag
			case cell.Fast != "" && cell.Slow != "":
				if cell.Fast == cell.Slow {
					return fmt.Errorf("%s: fast and slow are the same column %q", where, cell.Fast)
				}
				key = cell.Fast + ">" + cell.Slow
			default:
				return fmt.Errorf("%s: no source column", where)
			}

			if other, dup := seenSource[key]; dup {
				return fmt.Errorf("%s: source %q already used by %s", where, key, other)
			}
			seenSource[key] = where
		}
	}

	return nil
}
