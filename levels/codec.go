package levels

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// legacyRecord carries the old child-list encoding alongside the current
// parent field. Old documents list each child id followed by the owner's
// own id.
type legacyRecord struct {
	ShapeRecord
	Children []int `json:"children,omitempty"`
}

type legacyDocument struct {
	Name               string         `json:"name,omitempty"`
	Palette            []string       `json:"palette"`
	StartingBackground int            `json:"starting_background"`
	GoalBackground     int            `json:"goal_background"`
	PlayArea           Size           `json:"play_area"`
	Shapes             []legacyRecord `json:"shapes"`
}

// Decode parses and validates a level document. Documents that use child
// lists are upgraded to parent ids first.
func Decode(data []byte) (*Document, error) {
	var raw legacyDocument
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("levels: decode: %w: %v", ErrMalformed, err)
	}

	doc := &Document{
		Name:               raw.Name,
		Palette:            raw.Palette,
		StartingBackground: raw.StartingBackground,
		GoalBackground:     raw.GoalBackground,
		PlayArea:           raw.PlayArea,
		Shapes:             make([]ShapeRecord, len(raw.Shapes)),
	}
	for i, rec := range raw.Shapes {
		doc.Shapes[i] = rec.ShapeRecord
	}
	if err := upgradeChildren(doc, raw.Shapes); err != nil {
		return nil, err
	}
	if err := Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Encode validates doc and writes it as indented JSON.
func Encode(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("levels: encode: nil document")
	}
	if err := Validate(doc); err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("levels: encode: %w", err)
	}
	return append(out, '\n'), nil
}

// Upgrade converts a legacy child-list document into the parent encoding
// without validating palette or colors. It is used by tooling that rewrites
// old files.
func Upgrade(data []byte) (*Document, error) {
	var raw legacyDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("levels: upgrade: %w: %v", ErrMalformed, err)
	}
	doc := &Document{
		Name:               raw.Name,
		Palette:            raw.Palette,
		StartingBackground: raw.StartingBackground,
		GoalBackground:     raw.GoalBackground,
		PlayArea:           raw.PlayArea,
		Shapes:             make([]ShapeRecord, len(raw.Shapes)),
	}
	for i, rec := range raw.Shapes {
		doc.Shapes[i] = rec.ShapeRecord
	}
	if err := upgradeChildren(doc, raw.Shapes); err != nil {
		return nil, err
	}
	return doc, nil
}

func upgradeChildren(doc *Document, raw []legacyRecord) error {
	for i, rec := range raw {
		children := rec.Children
		if n := len(children); n > 0 && children[n-1] == i {
			children = children[:n-1]
		}
		for _, c := range children {
			if c < 0 || c >= len(doc.Shapes) {
				return fmt.Errorf("levels: shape %d: %w: dangling child id %d", i, ErrMalformed, c)
			}
			if c == i {
				return fmt.Errorf("levels: shape %d: %w: lists itself as a child", i, ErrMalformed)
			}
			if p := doc.Shapes[c].Parent; p != nil && *p != i {
				return fmt.Errorf("levels: shape %d: %w: claimed by shapes %d and %d", c, ErrMalformed, *p, i)
			}
			doc.Shapes[c].Parent = intPtr(i)
		}
	}
	return nil
}
