// Package world holds the static world catalogs the Navigator loads once per
// session: locations, objects, the verb catalog, and the localized message
// catalog.
package world

// Object capability flags. An object with no flags at all is treated as
// visible on the ground.
const (
	// FlagArticleAn marks an object whose display name takes the article "an".
	FlagArticleAn = "an"
	// FlagOnGround marks an object as visible when lying on the ground.
	FlagOnGround = "on_ground"
)

// Location is a discrete place in the game world.
type Location struct {
	// ID is the location identifier.
	ID string `json:"id"`
	// Brief is the one-line description shown in the room panel.
	Brief string `json:"brief"`
	// Objects lists the ids of objects currently on the ground.
	Objects []string `json:"objects,omitempty"`
	// Exits maps compass directions to destination location ids.
	Exits map[string]string `json:"exits,omitempty"`
	// DescriptionKey references the full description in the message catalog.
	DescriptionKey string `json:"description_key,omitempty"`
}

// Object is a game object that can appear on the ground or in an inventory.
type Object struct {
	// ID is the object identifier.
	ID string `json:"id"`
	// Name is the display name, without an article.
	Name string `json:"name"`
	// Flags holds capability flags (see FlagArticleAn, FlagOnGround).
	Flags []string `json:"flags,omitempty"`
}

// hasFlag reports whether the object carries the given flag.
func (o Object) hasFlag(flag string) bool {
	for _, f := range o.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// RequiresAn reports whether the object's display name takes the article "an".
// The choice is driven by the catalog flag, not by English heuristics.
func (o Object) RequiresAn() bool {
	return o.hasFlag(FlagArticleAn)
}

// VisibleOnGround reports whether the object should appear in ground-object
// sentences. Objects with no flags at all default to visible.
func (o Object) VisibleOnGround() bool {
	if len(o.Flags) == 0 {
		return true
	}
	return o.hasFlag(FlagOnGround)
}

// Command describes a verb the server accepts.
type Command struct {
	// Verb is the command word.
	Verb string `json:"verb"`
	// Help is the short description shown by the help command.
	Help string `json:"help,omitempty"`
}

// MessageCatalog maps short message keys to localized text.
type MessageCatalog map[string]string

// Data is the assembled static world catalog. It is immutable after loading
// except for targeted ground-object patches applied through Store.
type Data struct {
	Locations map[string]Location
	Objects   map[string]Object
	Commands  []Command
	Messages  MessageCatalog
}

// Location returns the location with the given id.
func (d *Data) Location(id string) (Location, bool) {
	loc, ok := d.Locations[id]
	return loc, ok
}

// Object returns the object with the given id.
func (d *Data) Object(id string) (Object, bool) {
	obj, ok := d.Objects[id]
	return obj, ok
}

// Message resolves a message key against the localized catalog.
func (d *Data) Message(key string) (string, bool) {
	if d == nil || d.Messages == nil {
		return "", false
	}
	text, ok := d.Messages[key]
	return text, ok
}
