// Package form loads pre-assembled multi-stage test forms: the calibrated
// item bank and the blocks available at each stage.
package form

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/abhisek/bandwise/internal/irt"
	"github.com/abhisek/bandwise/internal/stage"
)

// Error describes why a form document was rejected.
type Error struct {
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Field == "" {
		return "form: " + e.Message
	}
	return fmt.Sprintf("form: %s: %s", e.Field, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Block is a routable block together with the items it administers.
type Block struct {
	stage.Block
	ItemIDs []string `json:"item_ids"`
}

// Stage is one step of the test. The first stage has a single routing block;
// later stages offer one block per difficulty tier.
type Stage struct {
	Blocks []Block `json:"blocks"`
}

// Form is a complete, validated test form.
type Form struct {
	ID     string     `json:"id"`
	Items  []irt.Item `json:"items"`
	Stages []Stage    `json:"stages"`

	items  map[string]irt.Item
	blocks map[string]Block
}

// Load reads and validates a form from a JSON file.
func Load(path string) (*Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form: %w", err)
	}
	return Parse(data)
}

// Parse validates data against the form schema, decodes it, and checks
// item parameters, block pools and item references.
func Parse(data []byte) (*Form, error) {
	if err := validateDocument(data); err != nil {
		return nil, err
	}

	var f Form
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, &Error{Message: fmt.Sprintf("decode: %v", err)}
	}
	if err := f.index(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Form) index() error {
	f.items = make(map[string]irt.Item, len(f.Items))
	for i, it := range f.Items {
		if _, dup := f.items[it.ID]; dup {
			return &Error{Field: fmt.Sprintf("items[%d]", i), Message: fmt.Sprintf("duplicate item id %q", it.ID)}
		}
		if err := it.Validate(); err != nil {
			return &Error{Field: fmt.Sprintf("items[%d]", i), Message: err.Error(), Err: err}
		}
		f.items[it.ID] = it
	}

	f.blocks = make(map[string]Block)
	for si, st := range f.Stages {
		field := fmt.Sprintf("stages[%d]", si)
		if si == 0 && len(st.Blocks) != 1 {
			return &Error{Field: field, Message: "routing stage must have exactly one block"}
		}
		if si > 0 {
			if err := stage.ValidatePool(st.Pool()); err != nil {
				return &Error{Field: field, Message: err.Error(), Err: err}
			}
		}
		for bi, b := range st.Blocks {
			if _, dup := f.blocks[b.ID]; dup {
				return &Error{Field: fmt.Sprintf("%s.blocks[%d]", field, bi), Message: fmt.Sprintf("duplicate block id %q", b.ID)}
			}
			for _, id := range b.ItemIDs {
				if _, ok := f.items[id]; !ok {
					return &Error{Field: fmt.Sprintf("%s.blocks[%d]", field, bi), Message: fmt.Sprintf("unknown item %q", id)}
				}
			}
			f.blocks[b.ID] = b
		}
	}
	return nil
}

// Pool returns the stage's blocks as a routing pool, in document order.
func (s Stage) Pool() []stage.Block {
	pool := make([]stage.Block, len(s.Blocks))
	for i, b := range s.Blocks {
		pool[i] = b.Block
	}
	return pool
}

// Item looks up an item by id.
func (f *Form) Item(id string) (irt.Item, bool) {
	it, ok := f.items[id]
	return it, ok
}

// Block looks up a block by id across all stages.
func (f *Form) Block(id string) (Block, bool) {
	b, ok := f.blocks[id]
	return b, ok
}

// BlockItems returns the items a block administers, in order.
func (f *Form) BlockItems(id string) []irt.Item {
	b, ok := f.blocks[id]
	if !ok {
		return nil
	}
	items := make([]irt.Item, 0, len(b.ItemIDs))
	for _, iid := range b.ItemIDs {
		items = append(items, f.items[iid])
	}
	return items
}
