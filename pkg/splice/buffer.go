// Package splice expands hook markers in the generated document.
package splice

import (
	"container/list"
	"regexp"
	"strings"

	"github.com/tamasfe/mosaic/pkg/common"
)

// Kind is the kind of a buffer segment.
type Kind int

// Segment kinds.
const (
	Text Kind = iota
	Global
	Instance
)

var markerRe = regexp.MustCompile(
	`(?:` + regexp.QuoteMeta(common.InstanceSigil) + `|` + regexp.QuoteMeta(common.GlobalSigil) + `)\w+`,
)

// Segment is a piece of the document, either plain text or a single marker.
type Segment struct {
	Kind Kind

	// Text is the literal text, for markers the sigil and the name.
	Text string
}

// Name returns the marker name without the sigil.
func (s Segment) Name() string {
	switch s.Kind {
	case Global:
		return strings.TrimPrefix(s.Text, common.GlobalSigil)
	case Instance:
		return strings.TrimPrefix(s.Text, common.InstanceSigil)
	default:
		return ""
	}
}

// Parse splits text into text and marker segments.
func Parse(text string) []Segment {
	var segs []Segment

	last := 0
	for _, loc := range markerRe.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			segs = append(segs, Segment{Kind: Text, Text: text[last:loc[0]]})
		}

		marker := text[loc[0]:loc[1]]
		kind := Global
		if strings.HasPrefix(marker, common.InstanceSigil) {
			kind = Instance
		}
		segs = append(segs, Segment{Kind: kind, Text: marker})

		last = loc[1]
	}

	if last < len(text) {
		segs = append(segs, Segment{Kind: Text, Text: text[last:]})
	}

	return segs
}

// Keywords returns the distinct markers in text in order of appearance.
func Keywords(text string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, m := range markerRe.FindAllString(text, -1) {
		if !seen[m] {
			seen[m] = true
			keywords = append(keywords, m)
		}
	}
	return keywords
}

// Buffer is a document under construction.
//
// Markers are indexed by their literal text, so inserting at a marker
// doesn't need to scan the document.
type Buffer struct {
	segments *list.List
	index    map[string][]*list.Element
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{
		segments: list.New(),
		index:    make(map[string][]*list.Element),
	}
}

// Append adds text to the end of the buffer.
func (b *Buffer) Append(text string) {
	for _, s := range Parse(text) {
		b.track(b.segments.PushBack(s))
	}
}

// InsertBefore inserts text before every occurrence of the marker and
// returns the number of occurrences.
func (b *Buffer) InsertBefore(marker, text string) int {
	return b.InsertSegments(Parse(text), marker)
}

// InsertSegments inserts the segments before every occurrence of each
// marker and returns the number of insertions.
//
// Occurrences are collected before anything is inserted, markers
// that come with the segments are not targets of the same call.
func (b *Buffer) InsertSegments(segs []Segment, markers ...string) int {
	var targets []*list.Element

	seen := make(map[string]bool, len(markers))
	for _, m := range markers {
		if seen[m] {
			continue
		}
		seen[m] = true
		targets = append(targets, b.index[m]...)
	}

	for _, target := range targets {
		for _, s := range segs {
			b.track(b.segments.InsertBefore(s, target))
		}
	}

	return len(targets)
}

// Contains reports whether the marker is in the buffer.
func (b *Buffer) Contains(marker string) bool {
	return len(b.index[marker]) > 0
}

// Count returns the number of occurrences of the marker.
func (b *Buffer) Count(marker string) int {
	return len(b.index[marker])
}

// RemoveMarkers removes every marker of the given kind.
func (b *Buffer) RemoveMarkers(kind Kind) int {
	removed := 0
	for marker, elems := range b.index {
		if len(elems) == 0 || elems[0].Value.(Segment).Kind != kind {
			continue
		}
		for _, e := range elems {
			b.segments.Remove(e)
			removed++
		}
		delete(b.index, marker)
	}
	return removed
}

// Markers returns the distinct markers in document order.
func (b *Buffer) Markers() []Segment {
	seen := make(map[string]bool)
	var markers []Segment
	for e := b.segments.Front(); e != nil; e = e.Next() {
		s := e.Value.(Segment)
		if s.Kind == Text || seen[s.Text] {
			continue
		}
		seen[s.Text] = true
		markers = append(markers, s)
	}
	return markers
}

func (b *Buffer) String() string {
	var sb strings.Builder
	for e := b.segments.Front(); e != nil; e = e.Next() {
		sb.WriteString(e.Value.(Segment).Text)
	}
	return sb.String()
}

func (b *Buffer) track(e *list.Element) {
	s := e.Value.(Segment)
	if s.Kind != Text {
		b.index[s.Text] = append(b.index[s.Text], e)
	}
}
