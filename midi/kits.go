package midi

import (
	"sort"
	"strings"
)

// Kit maps the three voices to the notes a drum machine expects
type Kit struct {
	Name  string
	Notes [3]uint8 // anchor, shimmer, aux
}

// Kits are the known note layouts. Anchor is the kick, shimmer the snare
// or clap, aux the closed hat.
var Kits = map[string]Kit{
	"gm":   {Name: "General MIDI", Notes: [3]uint8{36, 38, 42}},
	"rd8":  {Name: "Behringer RD-8", Notes: [3]uint8{36, 40, 42}}, // RD-8 snare is 40, not 38
	"tr8s": {Name: "Roland TR-8S", Notes: [3]uint8{36, 38, 42}},
	"er1":  {Name: "Korg ER-1", Notes: [3]uint8{36, 38, 42}},
	"clap": {Name: "General MIDI, clap on shimmer", Notes: [3]uint8{36, 39, 42}},
}

// FindKit looks a kit up by key, case-insensitive
func FindKit(key string) (Kit, bool) {
	k, ok := Kits[strings.ToLower(strings.TrimSpace(key))]
	return k, ok
}

// KitNames lists the kit keys in order
func KitNames() []string {
	names := make([]string, 0, len(Kits))
	for k := range Kits {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
