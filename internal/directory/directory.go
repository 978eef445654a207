// Package directory resolves free-text assignee names to WhatsApp numbers
// using a static, configuration-provided table.
package directory

import (
	"fmt"
	"strings"
)

// Entry maps a lowercase name fragment to a phone number.
type Entry struct {
	Name  string
	Phone string
}

// Directory is an ordered assignee lookup table. Order matters: the
// substring fallback walks entries in declaration order, first match wins.
type Directory struct {
	entries []Entry
	exact   map[string]string
}

// New builds a directory from ordered entries. Names are lowercased; later
// duplicates of the same name are rejected.
func New(entries []Entry) (*Directory, error) {
	d := &Directory{
		entries: make([]Entry, 0, len(entries)),
		exact:   make(map[string]string, len(entries)),
	}

	for _, e := range entries {
		name := strings.ToLower(strings.TrimSpace(e.Name))
		phone := strings.TrimSpace(e.Phone)
		if name == "" || phone == "" {
			return nil, fmt.Errorf("directory entry %q -> %q has an empty side", e.Name, e.Phone)
		}
		if _, dup := d.exact[name]; dup {
			return nil, fmt.Errorf("duplicate directory entry %q", name)
		}
		d.entries = append(d.entries, Entry{Name: name, Phone: phone})
		d.exact[name] = phone
	}

	return d, nil
}

// Parse builds a directory from a "name:number,name:number" string, as it
// arrives from configuration. Entries keep the order they were written in.
func Parse(raw string) (*Directory, error) {
	var entries []Entry

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, phone, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("malformed directory entry %q, expected name:number", pair)
		}
		entries = append(entries, Entry{Name: name, Phone: phone})
	}

	return New(entries)
}

// Lookup resolves an assignee display name to a phone number. The name is
// lowercased and trimmed; an exact key match is tried first, then substring
// containment (directory key contained in the name) in declaration order.
// A miss returns ok=false and is not an error: names without a number are a
// legitimate outcome and the caller skips them.
func (d *Directory) Lookup(name string) (phone string, ok bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return "", false
	}

	if phone, ok := d.exact[normalized]; ok {
		return phone, true
	}

	for _, e := range d.entries {
		if strings.Contains(normalized, e.Name) {
			return e.Phone, true
		}
	}

	return "", false
}

// Entries returns a copy of the table in declaration order, for display.
func (d *Directory) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Len reports the number of entries.
func (d *Directory) Len() int {
	return len(d.entries)
}
