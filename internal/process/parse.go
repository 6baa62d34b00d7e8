package process

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the user-facing date format, YYYY/MM/DD HH:MM:SS.
const DateLayout = "2006/01/02 15:04:05"

// ParseDuration converts HH:MM:SS into seconds. Hours are unbounded; minutes
// and seconds must be below 60.
func ParseDuration(value string) (uint64, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 3 {
		return 0, newError(ErrInvalidInput, "invalid duration %q, expected HH:MM:SS", value)
	}

	var fields [3]uint64
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return 0, newError(ErrInvalidInput, "invalid duration %q, expected HH:MM:SS", value)
		}
		fields[i] = n
	}

	hours, minutes, seconds := fields[0], fields[1], fields[2]
	if minutes >= 60 || seconds >= 60 {
		return 0, newError(ErrInvalidInput, "invalid duration %q, minutes and seconds must be below 60", value)
	}
	rest := minutes*60 + seconds
	if hours > (^uint64(0)-rest)/3600 {
		return 0, newError(ErrInvalidInput, "invalid duration %q, value too large", value)
	}
	return hours*3600 + rest, nil
}

// FormatDuration renders seconds as zero-padded HH:MM:SS.
func FormatDuration(seconds uint64) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	var b strings.Builder
	b.Grow(8)
	pad2(&b, hours)
	b.WriteByte(':')
	pad2(&b, minutes)
	b.WriteByte(':')
	pad2(&b, secs)
	return b.String()
}

func pad2(b *strings.Builder, v uint64) {
	if v < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatUint(v, 10))
}

// ParseDate parses a YYYY/MM/DD HH:MM:SS date in local time.
func ParseDate(value string) (Timestamp, error) {
	parsed, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.Local)
	if err != nil {
		return Timestamp{}, newError(ErrInvalidInput, "invalid date %q, expected YYYY/MM/DD HH:MM:SS", value)
	}
	return Timestamp{Time: parsed}, nil
}

// FormatDate renders a timestamp as YYYY/MM/DD HH:MM:SS.
func FormatDate(t Timestamp) string {
	return t.Time.Format(DateLayout)
}

type idRange struct {
	lo, hi int
}

// IDSet is a parsed ID-set expression such as "0-3,5,7".
type IDSet struct {
	ranges []idRange
}

// ParseIDSet parses comma-separated IDs and inclusive a-b ranges.
func ParseIDSet(expr string) (IDSet, error) {
	var set IDSet
	tokens := strings.Split(expr, ",")
	for _, raw := range tokens {
		token := strings.TrimSpace(raw)
		if token == "" {
			return IDSet{}, newError(ErrInvalidInput, "empty ID in %q", expr)
		}
		loText, hiText, isRange := strings.Cut(token, "-")
		lo, err := parseID(loText)
		if err != nil {
			return IDSet{}, newError(ErrInvalidInput, "invalid ID %q", token)
		}
		hi := lo
		if isRange {
			hi, err = parseID(hiText)
			if err != nil {
				return IDSet{}, newError(ErrInvalidInput, "invalid range %q", token)
			}
			if hi < lo {
				return IDSet{}, newError(ErrInvalidInput, "invalid range %q, start exceeds end", token)
			}
		}
		set.ranges = append(set.ranges, idRange{lo: lo, hi: hi})
	}
	return set, nil
}

func parseID(value string) (int, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(value), 10, 31)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Contains reports whether id is matched by any token.
func (s IDSet) Contains(id int) bool {
	for _, r := range s.ranges {
		if id >= r.lo && id <= r.hi {
			return true
		}
	}
	return false
}

// IDs expands the set in ascending order without duplicates.
func (s IDSet) IDs() []int {
	seen := make(map[int]struct{})
	var out []int
	for _, r := range s.ranges {
		for id := r.lo; id <= r.hi; id++ {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}

// QuoteNames renders names as a bracketed list of quoted strings:
// ["a", "b"].
func QuoteNames(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = strconv.Quote(name)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
