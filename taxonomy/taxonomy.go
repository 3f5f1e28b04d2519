package taxonomy

import (
	"fmt"
	"sort"
	"strings"
)

// TagGroup classifies tags in the sidebar.
type TagGroup string

const (
	TagGroupLanguage  TagGroup = "LANGUAGE"
	TagGroupFramework TagGroup = "FRAMEWORK"
	TagGroupDatabase  TagGroup = "DATABASE"
	TagGroupInfra     TagGroup = "INFRA"
	TagGroupTool      TagGroup = "TOOL"
	TagGroupConcept   TagGroup = "CONCEPT"
	TagGroupEtc       TagGroup = "ETC"
)

// TagGroupOrder is the canonical display order.
var TagGroupOrder = []TagGroup{
	TagGroupLanguage, TagGroupFramework, TagGroupDatabase, TagGroupInfra,
	TagGroupTool, TagGroupConcept, TagGroupEtc,
}

var tagGroupLabels = map[TagGroup]string{
	TagGroupLanguage:  "Language",
	TagGroupFramework: "Framework",
	TagGroupDatabase:  "Database",
	TagGroupInfra:     "Infra",
	TagGroupTool:      "Tool",
	TagGroupConcept:   "Concept",
	TagGroupEtc:       "Etc",
}

func (g TagGroup) Label() string {
	if l, ok := tagGroupLabels[g]; ok {
		return l
	}
	return string(g)
}

func (g TagGroup) Valid() bool {
	_, ok := tagGroupLabels[g]
	return ok
}

func ParseTagGroup(s string) (TagGroup, error) {
	g := TagGroup(strings.ToUpper(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", fmt.Errorf("unknown tag group %q", s)
	}
	return g, nil
}

// StackGroup classifies technology stacks. Its lower-case form is the first
// segment of a stack filter URL.
type StackGroup string

const (
	StackGroupLanguage StackGroup = "LANGUAGE"
	StackGroupFrontend StackGroup = "FRONTEND"
	StackGroupBackend  StackGroup = "BACKEND"
	StackGroupDatabase StackGroup = "DATABASE"
	StackGroupDevOps   StackGroup = "DEVOPS"
	StackGroupTool     StackGroup = "TOOL"
)

var StackGroupOrder = []StackGroup{
	StackGroupLanguage, StackGroupFrontend, StackGroupBackend,
	StackGroupDatabase, StackGroupDevOps, StackGroupTool,
}

var stackGroupLabels = map[StackGroup]string{
	StackGroupLanguage: "Language",
	StackGroupFrontend: "Frontend",
	StackGroupBackend:  "Backend",
	StackGroupDatabase: "Database",
	StackGroupDevOps:   "DevOps",
	StackGroupTool:     "Tool",
}

func (g StackGroup) Label() string {
	if l, ok := stackGroupLabels[g]; ok {
		return l
	}
	return string(g)
}

func (g StackGroup) Valid() bool {
	_, ok := stackGroupLabels[g]
	return ok
}

// PathSegment is the group as it appears in a URL path.
func (g StackGroup) PathSegment() string {
	return strings.ToLower(string(g))
}

func ParseStackGroup(s string) (StackGroup, error) {
	g := StackGroup(strings.ToUpper(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", fmt.Errorf("unknown stack group %q", s)
	}
	return g, nil
}

type Tag struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Group TagGroup `json:"tagGroup"`
}

type TagWithCount struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Group     TagGroup `json:"tagGroup"`
	PostCount int64    `json:"postCount"`
}

type GroupedTags struct {
	Groups map[TagGroup][]TagWithCount `json:"groupedTags"`
}

type PopularTag struct {
	Rank      int    `json:"rank"`
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	PostCount int64  `json:"postCount"`
}

// TagRequest is the body of tag create and update. Group is optional.
type TagRequest struct {
	Name  string    `json:"name"`
	Group *TagGroup `json:"tagGroup,omitempty"`
}

type Stack struct {
	ID    int64      `json:"id"`
	Name  string     `json:"name"`
	Group StackGroup `json:"stackGroup"`
}

type StackWithCount struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Group     StackGroup `json:"stackGroup"`
	PostCount int64      `json:"postCount"`
}

type GroupedStacks map[StackGroup][]StackWithCount

type PopularStack struct {
	Rank      int    `json:"rank"`
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	PostCount int64  `json:"postCount"`
}

func tagGroupRank(g TagGroup) int {
	for i, o := range TagGroupOrder {
		if o == g {
			return i
		}
	}
	return len(TagGroupOrder)
}

// SortTags orders tags by group display order, then case-insensitively by
// name. Unknown groups sort last.
func SortTags(tags []Tag) {
	sort.SliceStable(tags, func(i, j int) bool {
		ri, rj := tagGroupRank(tags[i].Group), tagGroupRank(tags[j].Group)
		if ri != rj {
			return ri < rj
		}
		return strings.ToLower(tags[i].Name) < strings.ToLower(tags[j].Name)
	})
}

// FindStackGroup looks a stack up by name, walking groups in display order.
// Popular stacks come without a group and are resolved this way.
func FindStackGroup(grouped GroupedStacks, name string) (StackGroup, bool) {
	for _, g := range StackGroupOrder {
		for _, s := range grouped[g] {
			if s.Name == name {
				return g, true
			}
		}
	}
	return "", false
}
