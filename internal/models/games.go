package models

type GamesPage struct {
	Data *[]Game `json:"data"`
}

type Game struct {
	GameId    string `json:"id"`
	Name      string `json:"name"`
	BoxArtUrl string `json:"box_art_url"`
}

// CategoryMap is the category name<->id mapping resolved during one poll
// cycle. It is built once per cycle, read by every chat, and never mutated
// after buildup.
type CategoryMap struct {
	nameToID map[string]string
	idToName map[string]string
}

func NewCategoryMap(nameToID map[string]string) *CategoryMap {
	cm := &CategoryMap{
		nameToID: map[string]string{},
		idToName: map[string]string{},
	}
	for name, id := range nameToID {
		cm.nameToID[name] = id
		cm.idToName[id] = name
	}
	return cm
}

// Backfill registers id->name pairs discovered by the secondary id lookup
// pass, for category ids seen in stream payloads but absent from the
// name-keyed resolution.
func (cm *CategoryMap) Backfill(idToName map[string]string) {
	for id, name := range idToName {
		cm.idToName[id] = name
	}
}

func (cm *CategoryMap) NameByID(id string) (string, bool) {
	name, ok := cm.idToName[id]
	return name, ok
}

func (cm *CategoryMap) IDByName(name string) (string, bool) {
	id, ok := cm.nameToID[name]
	return id, ok
}

func (cm *CategoryMap) HasID(id string) bool {
	_, ok := cm.idToName[id]
	return ok
}
