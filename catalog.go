package modbus

import "sort"

// TagCatalog is an ordered sequence of tags plus a key-to-index map, kept
// sorted by (register_type, register_number), along with a per-register-type
// exclusion set honored by the read-request planner (§3, §4.5).
type TagCatalog struct {
	tags        []Tag
	keyToIndex  map[string]int
	excluded    [4]map[uint16]struct{}
}

// NewTagCatalog returns an empty catalog.
func NewTagCatalog() *TagCatalog {
	c := &TagCatalog{}
	c.ClearTags()
	return c
}

func tagLess(a, b Tag) bool {
	if a.RegisterType != b.RegisterType {
		return a.RegisterType < b.RegisterType
	}
	return a.RegisterNumber < b.RegisterNumber
}

// RegisterTags replaces the catalog's contents with tags, sorted ascending
// by (register_type, register_number), and rebuilds the key-to-index map.
func (c *TagCatalog) RegisterTags(tags []Tag) {
	c.tags = make([]Tag, len(tags))
	copy(c.tags, tags)
	sort.SliceStable(c.tags, func(i, j int) bool { return tagLess(c.tags[i], c.tags[j]) })

	c.keyToIndex = make(map[string]int, len(c.tags))
	for i, tag := range c.tags {
		c.keyToIndex[tag.Key] = i
	}
}

// ClearTags empties the catalog and its exclusion sets.
func (c *TagCatalog) ClearTags() {
	c.tags = nil
	c.keyToIndex = make(map[string]int)
	for i := range c.excluded {
		c.excluded[i] = make(map[uint16]struct{})
	}
}

// Tags returns the catalog's sorted tag list.
func (c *TagCatalog) Tags() []Tag { return c.tags }

// TagByKey looks up a tag by its Key.
func (c *TagCatalog) TagByKey(key string) (Tag, bool) {
	idx, ok := c.keyToIndex[key]
	if !ok {
		return Tag{}, false
	}
	return c.tags[idx], true
}

// ExcludeRegister marks registerNumber of registerType as excluded from
// planner coalescing.
func (c *TagCatalog) ExcludeRegister(registerType RegisterType, registerNumber uint16) {
	c.excluded[registerType][registerNumber] = struct{}{}
}

// IncludeRegister undoes a prior ExcludeRegister call.
func (c *TagCatalog) IncludeRegister(registerType RegisterType, registerNumber uint16) {
	delete(c.excluded[registerType], registerNumber)
}

// IsExcluded reports whether registerNumber of registerType is excluded.
func (c *TagCatalog) IsExcluded(registerType RegisterType, registerNumber uint16) bool {
	_, excluded := c.excluded[registerType][registerNumber]
	return excluded
}

