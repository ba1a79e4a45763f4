package generator

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
)

const endKeepMarker = "mosaic:endkeep"

var keepStart = regexp.MustCompile(`mosaic:keep\s([a-zA-Z0-9_]+)\s?\b`)

// KeepAction tells what happens to a kept block whose tag is no longer
// in the generated document.
type KeepAction int

// Keep actions.
const (
	// KeepIgnore drops the block.
	KeepIgnore KeepAction = iota

	// KeepBackup writes the block into a separate file.
	KeepBackup

	// KeepRetag moves the block to another tag of the generated document.
	KeepRetag
)

// KeepDecision is the answer of a KeepResolver.
type KeepDecision struct {
	Action KeepAction

	// Tag is the new tag for KeepRetag.
	Tag string
}

// KeepResolver decides about obsolete kept blocks. newTags are the tags of
// the generated document that have no existing block.
type KeepResolver func(file, tag string, newTags []string) (KeepDecision, error)

type keepBlock struct {
	tag  string
	code *bytes.Buffer
}

// mergeKeep replaces the keep blocks of generated with the blocks of the
// same tag in existing, and returns the obsolete blocks to back up.
func mergeKeep(file string, existing, generated []byte, resolve KeepResolver) (out, obsolete []byte, err error) {
	exKeep, err := keepBlocks(bytes.NewReader(existing))
	if err != nil {
		return nil, nil, err
	}

	genKeep, err := keepBlocks(bytes.NewReader(generated))
	if err != nil {
		return nil, nil, err
	}

	obsoleteKeep, err := diffKeepBlocks(file, genKeep, exKeep, resolve)
	if err != nil {
		return nil, nil, err
	}

	outBuf := &bytes.Buffer{}

	scn := bufio.NewScanner(bytes.NewReader(generated))

	keep := false
	for scn.Scan() {
		if !keep {
			foundTags := keepStart.FindStringSubmatch(scn.Text())

			if len(foundTags) != 0 {
				outBuf.Write(genKeep[foundTags[1]].code.Bytes())
				keep = true
				if bytes.Contains(scn.Bytes(), []byte(endKeepMarker)) {
					keep = false
				}
				continue
			}

			outBuf.Write(scn.Bytes())
			outBuf.WriteByte('\n')
			continue
		}

		if bytes.Contains(scn.Bytes(), []byte(endKeepMarker)) {
			keep = false
			continue
		}
	}
	if err := scn.Err(); err != nil {
		return nil, nil, err
	}

	oldBuf := &bytes.Buffer{}
	for _, b := range obsoleteKeep {
		oldBuf.Write(b.code.Bytes())
	}

	return outBuf.Bytes(), oldBuf.Bytes(), nil
}

func diffKeepBlocks(file string, targetKeep, oldKeep map[string]keepBlock, resolve KeepResolver) ([]keepBlock, error) {
	var obsolete []keepBlock

	newTags := make([]string, 0, len(targetKeep))

	for _, tag := range sortedTags(targetKeep) {
		if oldBlock, ok := oldKeep[tag]; ok {
			targetKeep[tag] = oldBlock
			delete(oldKeep, tag)
			continue
		}

		newTags = append(newTags, tag)
	}

	for _, tag := range sortedTags(oldKeep) {
		block := oldKeep[tag]

		decision := KeepDecision{Action: KeepIgnore}
		if resolve != nil {
			var err error
			decision, err = resolve(file, tag, newTags)
			if err != nil {
				return nil, err
			}
		}

		switch decision.Action {
		case KeepBackup:
			obsolete = append(obsolete, block)
		case KeepRetag:
			found := false
			for i := range newTags {
				if newTags[i] == decision.Tag {
					newTags = append(newTags[:i], newTags[i+1:]...)
					found = true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf(`keep tag "%v" is not available for "%v"`, decision.Tag, tag)
			}

			oldBytes := block.code.Bytes()

			newLineIdx := bytes.IndexByte(oldBytes, '\n')
			if newLineIdx < 0 {
				newLineIdx = len(oldBytes)
			}

			firstLine := bytes.Replace(oldBytes[:newLineIdx], []byte(tag), []byte(decision.Tag), 1)

			retagged := &bytes.Buffer{}
			retagged.Write(firstLine)
			retagged.Write(oldBytes[newLineIdx:])

			targetKeep[decision.Tag] = keepBlock{tag: decision.Tag, code: retagged}
		}
	}

	return obsolete, nil
}

func keepBlocks(r io.Reader) (map[string]keepBlock, error) {
	keep := make(map[string]keepBlock)

	scn := bufio.NewScanner(r)

	var currentKeep *keepBlock
	for scn.Scan() {
		foundTags := keepStart.FindAllStringSubmatch(scn.Text(), -1)
		if currentKeep == nil {
			if len(foundTags) == 0 {
				continue
			} else if len(foundTags) > 1 {
				return nil, fmt.Errorf("multiple keep tags on one line: \"%v\"", scn.Text())
			}

			currentKeep = &keepBlock{
				tag:  foundTags[0][1],
				code: new(bytes.Buffer),
			}

			currentKeep.code.Write(scn.Bytes())
			currentKeep.code.WriteByte('\n')

			if bytes.Contains(scn.Bytes(), []byte(endKeepMarker)) {
				keep[currentKeep.tag] = *currentKeep
				currentKeep = nil
			}
			continue
		}

		if len(foundTags) != 0 {
			return nil, fmt.Errorf("mosaic:keep %v has missing associated %v", currentKeep.tag, endKeepMarker)
		}

		currentKeep.code.Write(scn.Bytes())
		currentKeep.code.WriteByte('\n')

		if bytes.Contains(scn.Bytes(), []byte(endKeepMarker)) {
			keep[currentKeep.tag] = *currentKeep
			currentKeep = nil
			continue
		}
	}
	if err := scn.Err(); err != nil {
		return nil, err
	}

	if currentKeep != nil {
		return nil, fmt.Errorf("mosaic:keep %v has missing associated %v", currentKeep.tag, endKeepMarker)
	}

	return keep, nil
}

func sortedTags(blocks map[string]keepBlock) []string {
	tags := make([]string, 0, len(blocks))
	for t := range blocks {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
