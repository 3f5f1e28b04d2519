package posts

import (
	"fmt"
	"strings"
)

// PostType is the section of the blog a post belongs to.
type PostType string

const (
	TypeCore            PostType = "CORE"
	TypeArchitecture    PostType = "ARCHITECTURE"
	TypeTroubleshooting PostType = "TROUBLESHOOTING"
	TypeEssay           PostType = "ESSAY"
)

// PostTypes is the display order of the post types.
var PostTypes = []PostType{TypeCore, TypeArchitecture, TypeTroubleshooting, TypeEssay}

var postTypeLabels = map[PostType]string{
	TypeCore:            "Core",
	TypeArchitecture:    "Architecture",
	TypeTroubleshooting: "Troubleshooting",
	TypeEssay:           "Essay",
}

func (t PostType) Valid() bool {
	_, ok := postTypeLabels[t]
	return ok
}

func (t PostType) Label() string {
	if l, ok := postTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

// ParsePostType accepts any letter case, e.g. "essay" from a URL path.
func ParsePostType(s string) (PostType, error) {
	t := PostType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown post type %q", s)
	}
	return t, nil
}

type Status string

const (
	StatusPublic  Status = "PUBLIC"
	StatusPrivate Status = "PRIVATE"
)

func (s Status) Valid() bool {
	return s == StatusPublic || s == StatusPrivate
}

// Toggled flips between public and private.
func (s Status) Toggled() Status {
	if s == StatusPublic {
		return StatusPrivate
	}
	return StatusPublic
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

// ListItem is a post as it appears in a list.
type ListItem struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Excerpt   string   `json:"excerpt"`
	PostType  PostType `json:"postType"`
	Status    Status   `json:"status"`
	Stacks    []string `json:"stacks"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"createdAt"`
}

// Adjacent points at the previous or next post.
type Adjacent struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	PostType PostType `json:"postType"`
}

type Detail struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Excerpt   string    `json:"excerpt"`
	PostType  PostType  `json:"postType"`
	Content   string    `json:"content"`
	Status    Status    `json:"status"`
	Stacks    []string  `json:"stacks"`
	Tags      []string  `json:"tags"`
	Prev      *Adjacent `json:"prev"`
	Next      *Adjacent `json:"next"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

// Request is the body of create and update.
type Request struct {
	Title    string   `json:"title"`
	Excerpt  string   `json:"excerpt"`
	PostType PostType `json:"postType"`
	Content  string   `json:"content"`
	Status   *Status  `json:"status,omitempty"`
	Stacks   []string `json:"stacks,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}
